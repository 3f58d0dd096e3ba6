package signature_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/signature"
)

const (
	testMessage = "Publish post to campaign 7\nnonce: 1697040000"
)

func signText(t *testing.T, key *ecdsa.PrivateKey, message string) []byte {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatalf("Should have signed message: err: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Should have generated key: err: %v", err)
	}
	return key, crypto.PubkeyToAddress(key.PublicKey)
}

func TestVerifyRecoversSigner(t *testing.T) {
	key, addr := newKey(t)
	sig := signText(t, key, testMessage)

	recovered, err := signature.Verify(testMessage, hexutil.Encode(sig))
	if err != nil {
		t.Fatalf("Should have recovered address: err: %v", err)
	}
	if recovered != addr {
		t.Errorf("Should have recovered %v, got %v", addr.Hex(), recovered.Hex())
	}
}

func TestVerifyAcceptsZeroOneRecoveryID(t *testing.T) {
	key, addr := newKey(t)
	sig := signText(t, key, testMessage)
	sig[crypto.RecoveryIDOffset] -= 27

	recovered, err := signature.Verify(testMessage, hexutil.Encode(sig)[2:])
	if err != nil {
		t.Fatalf("Should have recovered address without prefix: err: %v", err)
	}
	if recovered != addr {
		t.Errorf("Should have recovered %v, got %v", addr.Hex(), recovered.Hex())
	}
}

func TestVerifyBitFlipNeverReturnsSigner(t *testing.T) {
	key, addr := newKey(t)
	sig := signText(t, key, testMessage)

	for i := 0; i < len(sig)*8; i++ {
		mutated := make([]byte, len(sig))
		copy(mutated, sig)
		mutated[i/8] ^= 1 << uint(i%8)

		recovered, err := signature.Verify(testMessage, hexutil.Encode(mutated))
		if err == nil && recovered == addr {
			t.Fatalf("Bit %v flip should not have recovered the signer", i)
		}
		if err != nil && !gaterr.Is(err, gaterr.KindInvalidSignature) {
			t.Fatalf("Bit %v flip should have failed with invalid signature: err: %v", i, err)
		}
	}
}

func TestVerifyDifferentMessage(t *testing.T) {
	key, addr := newKey(t)
	sig := signText(t, key, testMessage)

	recovered, err := signature.Verify(testMessage+" ", hexutil.Encode(sig))
	if err == nil && recovered == addr {
		t.Errorf("Should not have recovered the signer for another message")
	}
}

func TestVerifyMalformed(t *testing.T) {
	key, _ := newKey(t)
	sig := signText(t, key, testMessage)

	cases := map[string][2]string{
		"empty message":   {"", hexutil.Encode(sig)},
		"empty signature": {testMessage, ""},
		"not hex":         {testMessage, "0xzz"},
		"short":           {testMessage, hexutil.Encode(sig[:64])},
		"long":            {testMessage, hexutil.Encode(append(sig, 0x00))},
	}
	for name, c := range cases {
		_, err := signature.Verify(c[0], c[1])
		if !gaterr.Is(err, gaterr.KindInvalidSignature) {
			t.Errorf("%v: should have failed with invalid signature: err: %v", name, err)
		}
	}

	bad := make([]byte, len(sig))
	copy(bad, sig)
	bad[crypto.RecoveryIDOffset] = 30
	_, err := signature.Verify(testMessage, hexutil.Encode(bad))
	if !gaterr.Is(err, gaterr.KindInvalidSignature) {
		t.Errorf("Should have rejected recovery id 30: err: %v", err)
	}
}

func TestMatches(t *testing.T) {
	key, addr := newKey(t)
	_, other := newKey(t)
	sig := hexutil.Encode(signText(t, key, testMessage))

	if err := signature.Matches(testMessage, sig, addr); err != nil {
		t.Errorf("Should have matched the signer: err: %v", err)
	}
	err := signature.Matches(testMessage, sig, other)
	if !gaterr.Is(err, gaterr.KindInvalidSignature) {
		t.Errorf("Should have failed to match another address: err: %v", err)
	}
}
