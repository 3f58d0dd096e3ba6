// Package model contains the general data models and interfaces for the content gate.
package model // import "github.com/joincivil/civil-content-gate/pkg/model"

import (
	"errors"
)

var (
	// ErrPersisterNoResults is returned when a lookup matched nothing
	ErrPersisterNoResults = errors.New("No results from persister")
)

// CardPersister is the interface to store campaign cards.
// Writes are all-or-nothing and durable before returning.
type CardPersister interface {
	// CardByCampaignID returns the card for the campaign or ErrPersisterNoResults
	CardByCampaignID(campaignID uint64) (*Card, error)
	// Cards returns every card ordered by campaign ID
	Cards() ([]*Card, error)
	// SaveCard replaces any existing card with the same campaign ID
	SaveCard(card *Card) error
}

// PostPersister is the interface to store gated posts.
// Posts are append-only; there is no update or delete.
type PostPersister interface {
	// PostsByCampaignID returns the posts of a campaign in insertion order
	PostsByCampaignID(campaignID uint64) ([]*Post, error)
	// AppendPost assigns a new unique ID, appends the post and returns the stored copy
	AppendPost(post *Post) (*Post, error)
}

// ContentPersister is a persister serving both collections
type ContentPersister interface {
	CardPersister
	PostPersister
	// Close releases the underlying storage
	Close() error
}
