// Package signature recovers signer addresses from personal_sign style
// messages (EIP-191 "\x19Ethereum Signed Message:\n" prefix).
package signature // import "github.com/joincivil/civil-content-gate/pkg/signature"

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
)

const (
	signatureLength = crypto.SignatureLength
	recoveryIDIndex = crypto.RecoveryIDOffset

	// wallets emit 27/28 for the recovery id, go-ethereum expects 0/1
	legacyRecoveryOffset = 27
)

// Verify returns the address that produced signature over the plaintext
// message. Any malformed input fails with an invalid_signature error.
func Verify(message string, signature string) (common.Address, error) {
	if message == "" {
		return common.Address{}, gaterr.New(gaterr.KindInvalidSignature, "Empty message")
	}
	sig, err := decodeSignature(signature)
	if err != nil {
		return common.Address{}, err
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, gaterr.Wrap(gaterr.KindInvalidSignature, err,
			"Could not recover signer")
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// Matches returns nil if signature over message recovers to claimed. The
// comparison is case-insensitive since both sides are normalized addresses.
func Matches(message string, signature string, claimed common.Address) error {
	recovered, err := Verify(message, signature)
	if err != nil {
		return err
	}
	if recovered != claimed {
		return gaterr.New(gaterr.KindInvalidSignature, "Invalid signature (address mismatch)")
	}
	return nil
}

func decodeSignature(signature string) ([]byte, error) {
	signature = strings.TrimSpace(signature)
	if !strings.HasPrefix(signature, "0x") && !strings.HasPrefix(signature, "0X") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return nil, gaterr.Wrap(gaterr.KindInvalidSignature, err, "Signature is not valid hex")
	}
	if len(sig) != signatureLength {
		return nil, gaterr.Newf(gaterr.KindInvalidSignature,
			"Signature must be %d bytes, got %d", signatureLength, len(sig))
	}
	// NOTE: copy so the caller's buffer is never mutated
	out := make([]byte, signatureLength)
	copy(out, sig)
	if out[recoveryIDIndex] >= legacyRecoveryOffset {
		out[recoveryIDIndex] -= legacyRecoveryOffset
	}
	if out[recoveryIDIndex] > 1 {
		return nil, gaterr.New(gaterr.KindInvalidSignature, "Invalid signature recovery id")
	}
	return out, nil
}
