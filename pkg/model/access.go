package model // import "github.com/joincivil/civil-content-gate/pkg/model"

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Access is the level of content a caller is allowed to see
type Access int

const (
	// AccessPreview exposes a truncated body only
	AccessPreview Access = iota
	// AccessFull exposes every field of a post
	AccessFull
)

// String returns the wire name of the access level
func (a Access) String() string {
	if a == AccessFull {
		return "full"
	}
	return "preview"
}

// Decision is the ephemeral result of classifying a read request. It is never
// persisted or cached; entitlement is time-bounded on chain.
type Decision struct {
	CampaignID uint64
	// Caller is nil when the request carried no address
	Caller *common.Address
	Access Access
	// Degraded is set when the chain could not be reached and the decision
	// fell back to preview.
	Degraded bool
}

// ProjectedPost is the view of a post handed to a reader. Exactly one of Body
// or BodyPreview is populated, depending on Access.
type ProjectedPost struct {
	ID          string
	CampaignID  uint64
	Title       string
	Body        string
	BodyPreview string
	Author      string
	CreatedAt   time.Time
	Access      Access
}
