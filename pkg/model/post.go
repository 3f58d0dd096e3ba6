// Package model contains the general data models and interfaces for the content gate.
package model // import "github.com/joincivil/civil-content-gate/pkg/model"

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NewPost is a convenience function to init a Post. The ID is left empty when
// the post has not yet been persisted; persisters assign it on append.
func NewPost(id string, campaignID uint64, title string, body string, author common.Address,
	createdAt time.Time) *Post {
	return &Post{
		id:         id,
		campaignID: campaignID,
		title:      title,
		body:       body,
		author:     author,
		createdAt:  createdAt,
	}
}

// Post is a gated content unit belonging to a campaign. Posts are append-only.
type Post struct {
	id string

	campaignID uint64

	title string

	body string

	author common.Address

	createdAt time.Time
}

// ID returns the store-assigned unique ID
func (p *Post) ID() string {
	return p.id
}

// CampaignID returns the campaign the post belongs to
func (p *Post) CampaignID() uint64 {
	return p.campaignID
}

// Title returns the post title
func (p *Post) Title() string {
	return p.title
}

// Body returns the full post body
func (p *Post) Body() string {
	return p.body
}

// Author returns the verified owner who published the post
func (p *Post) Author() common.Address {
	return p.author
}

// AuthorHex returns the author address as lowercase hex
func (p *Post) AuthorHex() string {
	return LowerHex(p.author)
}

// CreatedAt returns the creation timestamp
func (p *Post) CreatedAt() time.Time {
	return p.createdAt
}

// WithID returns a copy of the post carrying the given ID. Used by persisters
// when assigning IDs, the original is left untouched.
func (p *Post) WithID(id string) *Post {
	cp := *p
	cp.id = id
	return &cp
}
