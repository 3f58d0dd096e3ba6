// Package testutils contains test doubles shared by the package tests
package testutils // import "github.com/joincivil/civil-content-gate/pkg/testutils"

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joincivil/civil-content-gate/pkg/model"
)

// TestPersister is an in-memory model.ContentPersister. The zero value is ready to use.
type TestPersister struct {
	mu     sync.Mutex
	cards  map[uint64]*model.Card
	posts  map[uint64][]*model.Post
	nextID int
	// FailWrites makes every write return an error
	FailWrites bool
	// Closed is set once Close is called
	Closed bool
}

// CardByCampaignID returns the card for the campaign
func (t *TestPersister) CardByCampaignID(campaignID uint64) (*model.Card, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	card, ok := t.cards[campaignID]
	if !ok {
		return nil, model.ErrPersisterNoResults
	}
	return card, nil
}

// Cards returns every card ordered by campaign ID
func (t *TestPersister) Cards() ([]*model.Card, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cards := make([]*model.Card, 0, len(t.cards))
	for _, card := range t.cards {
		cards = append(cards, card)
	}
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].CampaignID() < cards[j].CampaignID()
	})
	return cards, nil
}

// SaveCard replaces the card for the campaign
func (t *TestPersister) SaveCard(card *model.Card) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailWrites {
		return errors.New("disk full")
	}
	if t.cards == nil {
		t.cards = map[uint64]*model.Card{}
	}
	t.cards[card.CampaignID()] = card
	return nil
}

// PostsByCampaignID returns the posts of the campaign in insertion order
func (t *TestPersister) PostsByCampaignID(campaignID uint64) ([]*model.Post, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	posts := t.posts[campaignID]
	out := make([]*model.Post, len(posts))
	copy(out, posts)
	return out, nil
}

// AppendPost assigns an ID and appends the post
func (t *TestPersister) AppendPost(post *model.Post) (*model.Post, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailWrites {
		return nil, errors.New("disk full")
	}
	if t.posts == nil {
		t.posts = map[uint64][]*model.Post{}
	}
	t.nextID++
	stored := post.WithID(fmt.Sprintf("post-%d", t.nextID))
	t.posts[post.CampaignID()] = append(t.posts[post.CampaignID()], stored)
	return stored, nil
}

// Close marks the persister closed
func (t *TestPersister) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Closed = true
	return nil
}
