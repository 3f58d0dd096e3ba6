package testutils // import "github.com/joincivil/civil-content-gate/pkg/testutils"

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

// FakeOracle is a model.CampaignOracle returning canned answers
type FakeOracle struct {
	mu sync.Mutex
	// Owners maps campaign IDs to owners, missing campaigns are unknown
	Owners map[uint64]common.Address
	// Entitled maps campaign IDs to the set of entitled addresses
	Entitled map[uint64]map[common.Address]bool
	// Expiries maps addresses to their subscription expiry
	Expiries map[common.Address]int64
	// Err is returned by every call when set
	Err error

	OwnerCalls       int
	EntitlementCalls int
}

// NewFakeOracle returns an empty FakeOracle
func NewFakeOracle() *FakeOracle {
	return &FakeOracle{
		Owners:   map[uint64]common.Address{},
		Entitled: map[uint64]map[common.Address]bool{},
		Expiries: map[common.Address]int64{},
	}
}

// SetOwner sets the owner of a campaign
func (f *FakeOracle) SetOwner(campaignID uint64, owner common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Owners[campaignID] = owner
}

// SetEntitled sets the entitlement of an address on a campaign
func (f *FakeOracle) SetEntitled(campaignID uint64, address common.Address, entitled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Entitled[campaignID] == nil {
		f.Entitled[campaignID] = map[common.Address]bool{}
	}
	f.Entitled[campaignID][address] = entitled
}

// SetErr makes every call fail with err, nil clears it
func (f *FakeOracle) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

// OwnerOf returns the canned owner
func (f *FakeOracle) OwnerOf(ctx context.Context, campaignID uint64) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OwnerCalls++
	if f.Err != nil {
		return common.Address{}, f.Err
	}
	owner, ok := f.Owners[campaignID]
	if !ok {
		return common.Address{}, gaterr.New(gaterr.KindUnknownCampaign, "Campaign does not exist on chain")
	}
	return owner, nil
}

// IsEntitled returns the canned entitlement
func (f *FakeOracle) IsEntitled(ctx context.Context, campaignID uint64, address common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EntitlementCalls++
	if f.Err != nil {
		return false, f.Err
	}
	return f.Entitled[campaignID][address], nil
}

// Campaign returns a record built from the canned owner
func (f *FakeOracle) Campaign(ctx context.Context, campaignID uint64) (*model.ChainCampaign, error) {
	owner, err := f.OwnerOf(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	return &model.ChainCampaign{
		Title:        "campaign",
		Owner:        owner,
		GoalWei:      big.NewInt(1000000000000000000),
		Deadline:     big.NewInt(1893456000),
		CollectedWei: big.NewInt(0),
	}, nil
}

// ActiveUntil returns the canned expiry
func (f *FakeOracle) ActiveUntil(ctx context.Context, campaignID uint64, address common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	if _, ok := f.Owners[campaignID]; !ok {
		return nil, gaterr.New(gaterr.KindUnknownCampaign, "Campaign does not exist on chain")
	}
	return big.NewInt(f.Expiries[address]), nil
}
