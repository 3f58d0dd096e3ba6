package model // import "github.com/joincivil/civil-content-gate/pkg/model"

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ChainCampaign is the on-chain campaign record as returned by the contract
type ChainCampaign struct {
	Title        string
	Owner        common.Address
	GoalWei      *big.Int
	Deadline     *big.Int
	CollectedWei *big.Int
	Finalized    bool
}

// AuthorityOracle answers ownership and entitlement questions from the chain.
// Implementations must not cache entitlement answers.
type AuthorityOracle interface {
	// OwnerOf returns the on-chain owner of a campaign
	OwnerOf(ctx context.Context, campaignID uint64) (common.Address, error)
	// IsEntitled returns true if the address has an active entitlement right now
	IsEntitled(ctx context.Context, campaignID uint64, address common.Address) (bool, error)
}

// CampaignOracle extends the AuthorityOracle with the read-only views used by
// the informational endpoints.
type CampaignOracle interface {
	AuthorityOracle
	// Campaign returns the full on-chain campaign record
	Campaign(ctx context.Context, campaignID uint64) (*ChainCampaign, error)
	// ActiveUntil returns the unix timestamp the address's entitlement expires at
	ActiveUntil(ctx context.Context, campaignID uint64, address common.Address) (*big.Int, error)
}
