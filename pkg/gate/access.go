package gate // import "github.com/joincivil/civil-content-gate/pkg/gate"

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

// NewAccessGate is a convenience function to init an AccessGate
func NewAccessGate(oracle model.AuthorityOracle) *AccessGate {
	return &AccessGate{oracle: oracle}
}

// AccessGate classifies reads as preview or full. It fails closed: no caller,
// no entitlement or an unreachable chain all resolve to preview.
type AccessGate struct {
	oracle model.AuthorityOracle
}

// Classify returns the access decision for the caller. The chain is queried
// on every call.
func (g *AccessGate) Classify(ctx context.Context, campaignID uint64, caller *common.Address) model.Decision {
	decision := model.Decision{
		CampaignID: campaignID,
		Caller:     caller,
		Access:     model.AccessPreview,
	}
	if caller == nil || *caller == (common.Address{}) {
		return decision
	}

	entitled, err := g.oracle.IsEntitled(ctx, campaignID, *caller)
	if err != nil {
		if gaterr.Is(err, gaterr.KindUnknownCampaign) {
			return decision
		}
		log.Warningf("Entitlement check failed for campaign %v, serving preview: err: %v",
			campaignID, err)
		decision.Degraded = true
		return decision
	}
	if entitled {
		decision.Access = model.AccessFull
	}
	return decision
}
