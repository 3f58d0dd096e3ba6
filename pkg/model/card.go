// Package model contains the general data models and interfaces for the content gate.
package model // import "github.com/joincivil/civil-content-gate/pkg/model"

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// NewCard is a convenience function to init a Card
func NewCard(campaignID uint64, title string, imageURL string, description string,
	owner common.Address, createdAt time.Time) *Card {
	return &Card{
		campaignID:  campaignID,
		title:       title,
		imageURL:    imageURL,
		description: description,
		owner:       owner,
		createdAt:   createdAt,
	}
}

// Card is the off-chain descriptive metadata for an on-chain campaign.
// There is at most one live card per campaign ID; a new write replaces the old one.
type Card struct {
	campaignID uint64

	title string

	imageURL string

	description string

	owner common.Address // snapshot of the on-chain owner at write time

	createdAt time.Time
}

// CampaignID returns the on-chain campaign ID this card describes
func (c *Card) CampaignID() uint64 {
	return c.campaignID
}

// Title returns the display title
func (c *Card) Title() string {
	return c.title
}

// ImageURL returns the display image URL
func (c *Card) ImageURL() string {
	return c.imageURL
}

// Description returns the display description
func (c *Card) Description() string {
	return c.description
}

// Owner returns the verified owner address at the time of the last write
func (c *Card) Owner() common.Address {
	return c.owner
}

// OwnerHex returns the owner address as lowercase hex
func (c *Card) OwnerHex() string {
	return LowerHex(c.owner)
}

// CreatedAt returns the timestamp of the last write
func (c *Card) CreatedAt() time.Time {
	return c.createdAt
}

// LowerHex returns the lowercase 0x-prefixed hex form of an address, which is
// the canonical form stored and compared throughout the gate.
func LowerHex(address common.Address) string {
	return strings.ToLower(address.Hex())
}
