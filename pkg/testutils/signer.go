package testutils // import "github.com/joincivil/civil-content-gate/pkg/testutils"

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs messages the way a browser wallet's personal_sign does
type Signer struct {
	key     *ecdsa.PrivateKey
	Address common.Address
}

// NewSigner returns a Signer with a fresh key
func NewSigner() *Signer {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &Signer{key: key, Address: crypto.PubkeyToAddress(key.PublicKey)}
}

// Sign returns the 0x-prefixed hex signature of message with a 27/28 recovery id
func (s *Signer) Sign(message string) string {
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), s.key)
	if err != nil {
		panic(err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

// Hex returns the lowercase address
func (s *Signer) Hex() string {
	return strings.ToLower(s.Address.Hex())
}
