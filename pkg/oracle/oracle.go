// Package oracle answers ownership and entitlement questions by reading the
// hybrid campaign contract over an Ethereum RPC endpoint.
package oracle // import "github.com/joincivil/civil-content-gate/pkg/oracle"

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

const (
	defaultCallTimeout   = 10 * time.Second
	defaultRetryInterval = 250 * time.Millisecond
	maxRetryInterval     = 2 * time.Second

	revertedMessage = "execution reverted"
)

// NewChainOracleParams contains the params needed to init a ChainOracle
type NewChainOracleParams struct {
	Client          bind.ContractCaller
	ContractAddress common.Address
	// CallTimeout bounds every single RPC attempt
	CallTimeout time.Duration
	// MaxRetries is the number of extra attempts after a transient failure
	MaxRetries uint
	// RetryInterval is the first backoff interval, doubled on every retry
	RetryInterval time.Duration
}

// NewChainOracle is a convenience function to init a ChainOracle
func NewChainOracle(params *NewChainOracleParams) (*ChainOracle, error) {
	caller, err := NewHybridCaller(params.ContractAddress, params.Client)
	if err != nil {
		return nil, errors.Wrap(err, "could not bind hybrid contract")
	}
	timeout := params.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	interval := params.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	return &ChainOracle{
		caller:        caller,
		callTimeout:   timeout,
		maxRetries:    params.MaxRetries,
		retryInterval: interval,
	}, nil
}

// ChainOracle is the model.CampaignOracle backed by contract calls. It holds
// no state between calls and never caches answers.
type ChainOracle struct {
	caller        *HybridCaller
	callTimeout   time.Duration
	maxRetries    uint
	retryInterval time.Duration
}

// OwnerOf returns the on-chain owner of the campaign. A reverted call or a
// zero owner is reported as unknown_campaign.
func (o *ChainOracle) OwnerOf(ctx context.Context, campaignID uint64) (common.Address, error) {
	campaign, err := o.Campaign(ctx, campaignID)
	if err != nil {
		return common.Address{}, err
	}
	return campaign.Owner, nil
}

// Campaign returns the on-chain campaign record
func (o *ChainOracle) Campaign(ctx context.Context, campaignID uint64) (*model.ChainCampaign, error) {
	id := new(big.Int).SetUint64(campaignID)
	res, err := call(ctx, o, methodGetCampaign, func(opts *bind.CallOpts) (HybridCampaign, error) {
		return o.caller.GetCampaign(opts, id)
	})
	if err != nil {
		if isRevert(err) {
			return nil, gaterr.Wrap(gaterr.KindUnknownCampaign, err,
				"Campaign does not exist on chain")
		}
		return nil, err
	}
	if res.Owner == (common.Address{}) {
		return nil, gaterr.Newf(gaterr.KindUnknownCampaign,
			"Campaign %v does not exist on chain", campaignID)
	}
	return &model.ChainCampaign{
		Title:        res.Title,
		Owner:        res.Owner,
		GoalWei:      res.GoalWei,
		Deadline:     res.Deadline,
		CollectedWei: res.CollectedWei,
		Finalized:    res.Finalized,
	}, nil
}

// IsEntitled returns true if address has an active subscription on the
// campaign. A reverted call is reported as not entitled.
func (o *ChainOracle) IsEntitled(ctx context.Context, campaignID uint64, address common.Address) (bool, error) {
	id := new(big.Int).SetUint64(campaignID)
	active, err := call(ctx, o, methodIsActive, func(opts *bind.CallOpts) (bool, error) {
		return o.caller.IsActive(opts, id, address)
	})
	if err != nil {
		if isRevert(err) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}

// ActiveUntil returns the unix timestamp the address's subscription expires at
func (o *ChainOracle) ActiveUntil(ctx context.Context, campaignID uint64, address common.Address) (*big.Int, error) {
	id := new(big.Int).SetUint64(campaignID)
	until, err := call(ctx, o, methodActiveUntil, func(opts *bind.CallOpts) (*big.Int, error) {
		return o.caller.ActiveUntil(opts, id, address)
	})
	if err != nil {
		if isRevert(err) {
			return nil, gaterr.Wrap(gaterr.KindUnknownCampaign, err,
				"Campaign does not exist on chain")
		}
		return nil, err
	}
	return until, nil
}

func (o *ChainOracle) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.retryInterval
	b.MaxInterval = maxRetryInterval
	return b
}

// call runs fn with a per-attempt timeout, retrying transient failures with
// exponential backoff. Reverts are returned as is so the caller can decide
// what they mean; every other failure becomes chain_unavailable.
func call[T any](ctx context.Context, o *ChainOracle, method string,
	fn func(opts *bind.CallOpts) (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()

		res, err := fn(&bind.CallOpts{Context: cctx})
		if err == nil {
			return res, nil
		}
		if isRevert(err) || errors.Is(err, bind.ErrNoCode) || ctx.Err() != nil {
			return res, backoff.Permanent(err)
		}
		log.Warningf("Chain call %v failed, attempt %v: err: %v", method, attempt, err)
		return res, err
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(o.backOff()),
		backoff.WithMaxTries(o.maxRetries+1),
	)
	if err == nil {
		return res, nil
	}
	if isRevert(err) {
		return res, err
	}
	log.Errorf("Chain call %v gave up after %v attempts: err: %v", method, attempt, err)
	return res, gaterr.Wrap(gaterr.KindChainUnavailable, err, "Blockchain RPC unavailable")
}

func isRevert(err error) bool {
	return err != nil && strings.Contains(err.Error(), revertedMessage)
}
