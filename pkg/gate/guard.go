// Package gate contains the authorization components that sit between the
// HTTP surface and the content store: the write guard, the access gate and
// the preview projection.
package gate // import "github.com/joincivil/civil-content-gate/pkg/gate"

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/signature"
)

// SignedClaim is the {address, message, signature} triple supplied by the
// presentation layer. The message is opaque; only the exact signed bytes matter.
type SignedClaim struct {
	Address   string
	Message   string
	Signature string
}

// Validate checks that every field of the claim is present and that the
// address is well formed. No I/O is attempted.
func (s SignedClaim) Validate() (common.Address, error) {
	if strings.TrimSpace(s.Address) == "" || s.Message == "" || strings.TrimSpace(s.Signature) == "" {
		return common.Address{}, gaterr.New(gaterr.KindValidation, "Missing fields")
	}
	return ParseAddress(s.Address)
}

// ParseAddress parses a 0x-prefixed hex address in any case
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return common.Address{}, gaterr.Newf(gaterr.KindValidation, "Invalid address: '%v'", address)
	}
	return common.HexToAddress(address), nil
}

// NewWriteGuard is a convenience function to init a WriteGuard
func NewWriteGuard(oracle model.AuthorityOracle) *WriteGuard {
	return &WriteGuard{oracle: oracle}
}

// WriteGuard gates every content mutation. A write is allowed only when the
// claimed address signed the message AND is the campaign's on-chain owner at
// the moment of the check.
type WriteGuard struct {
	oracle model.AuthorityOracle
}

// AuthorizeWrite returns the verified owner address if the claim may mutate
// content of the campaign. The signature is checked before the chain is
// queried so forged requests never cost an RPC round trip.
func (g *WriteGuard) AuthorizeWrite(ctx context.Context, campaignID uint64,
	claimed common.Address, message string, sig string) (common.Address, error) {
	err := signature.Matches(message, sig, claimed)
	if err != nil {
		log.Infof("Rejected write for campaign %v from %v: err: %v", campaignID, claimed.Hex(), err)
		return common.Address{}, err
	}

	owner, err := g.oracle.OwnerOf(ctx, campaignID)
	if err != nil {
		return common.Address{}, err
	}
	if owner != claimed {
		log.Infof("Rejected write for campaign %v: %v is not the owner", campaignID, claimed.Hex())
		return common.Address{}, gaterr.New(gaterr.KindUnauthorized,
			"Only the campaign owner can modify campaign content")
	}
	return owner, nil
}

// AuthorizeClaim validates the claim and runs AuthorizeWrite
func (g *WriteGuard) AuthorizeClaim(ctx context.Context, campaignID uint64, claim SignedClaim) (common.Address, error) {
	claimed, err := claim.Validate()
	if err != nil {
		return common.Address{}, err
	}
	return g.AuthorizeWrite(ctx, campaignID, claimed, claim.Message, claim.Signature)
}
