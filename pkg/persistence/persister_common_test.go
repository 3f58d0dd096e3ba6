package persistence_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-gate/pkg/model"
)

var (
	testOwner  = common.HexToAddress("0x39eeD73fb1D2F5aC6d6F2A8F6a3b3D6E1fA2a1b4")
	testAuthor = common.HexToAddress("0x8aa3bC35e8aB8e5D0B9a3B2C0e1e04e9a5F3f1C2")
	testTime   = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func testCard(campaignID uint64, title string) *model.Card {
	return model.NewCard(campaignID, title, "https://example.com/img.png", "desc", testOwner, testTime)
}

func testPost(campaignID uint64, title string) *model.Post {
	return model.NewPost("", campaignID, title, "body of "+title, testAuthor, testTime)
}

// testContentPersister runs the behavior every content store shares
func testContentPersister(t *testing.T, persister model.ContentPersister) {
	_, err := persister.CardByCampaignID(7)
	if err != model.ErrPersisterNoResults {
		t.Errorf("Should have returned no results for missing card: err: %v", err)
	}
	cards, err := persister.Cards()
	if err != nil || len(cards) != 0 {
		t.Errorf("Should have returned no cards: %v, err: %v", len(cards), err)
	}

	if err = persister.SaveCard(testCard(7, "first")); err != nil {
		t.Fatalf("Should have saved card: err: %v", err)
	}
	if err = persister.SaveCard(testCard(7, "second")); err != nil {
		t.Fatalf("Should have replaced card: err: %v", err)
	}
	if err = persister.SaveCard(testCard(0, "zero")); err != nil {
		t.Fatalf("Should have saved card for campaign 0: err: %v", err)
	}
	if err = persister.SaveCard(testCard(12, "twelve")); err != nil {
		t.Fatalf("Should have saved card: err: %v", err)
	}

	card, err := persister.CardByCampaignID(7)
	if err != nil {
		t.Fatalf("Should have found card: err: %v", err)
	}
	if card.Title() != "second" {
		t.Errorf("Should have replaced the card title: %v", card.Title())
	}
	if card.Owner() != testOwner {
		t.Errorf("Should have kept the owner: %v", card.OwnerHex())
	}
	if !card.CreatedAt().Equal(testTime) {
		t.Errorf("Should have kept the creation time: %v", card.CreatedAt())
	}

	cards, err = persister.Cards()
	if err != nil {
		t.Fatalf("Should have listed cards: err: %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("Should have exactly one card per campaign: %v", len(cards))
	}
	if cards[0].CampaignID() != 0 || cards[1].CampaignID() != 7 || cards[2].CampaignID() != 12 {
		t.Errorf("Should have ordered cards by campaign ID: %v %v %v", cards[0].CampaignID(),
			cards[1].CampaignID(), cards[2].CampaignID())
	}

	posts, err := persister.PostsByCampaignID(7)
	if err != nil || len(posts) != 0 {
		t.Errorf("Should have returned no posts: %v, err: %v", len(posts), err)
	}

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		stored, err := persister.AppendPost(testPost(7, fmt.Sprintf("post %v", i)))
		if err != nil {
			t.Fatalf("Should have appended post: err: %v", err)
		}
		if stored.ID() == "" || ids[stored.ID()] {
			t.Errorf("Should have assigned a new unique ID: %v", stored.ID())
		}
		ids[stored.ID()] = true
	}
	if _, err = persister.AppendPost(testPost(8, "other")); err != nil {
		t.Fatalf("Should have appended post: err: %v", err)
	}

	posts, err = persister.PostsByCampaignID(7)
	if err != nil {
		t.Fatalf("Should have listed posts: err: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("Should have returned only the campaign's posts: %v", len(posts))
	}
	for i, post := range posts {
		if post.Title() != fmt.Sprintf("post %v", i) {
			t.Errorf("Should have returned posts in insertion order: %v", post.Title())
		}
		if post.CampaignID() != 7 || post.Author() != testAuthor {
			t.Errorf("Should have kept post fields: %v %v", post.CampaignID(), post.AuthorHex())
		}
		if !ids[post.ID()] {
			t.Errorf("Should have returned the assigned ID: %v", post.ID())
		}
	}
}

// testConcurrentAppends checks that concurrent appends never lose a post
func testConcurrentAppends(t *testing.T, persister model.ContentPersister) {
	numPosts := 25
	wg := sync.WaitGroup{}
	wg.Add(numPosts)
	for i := 0; i < numPosts; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := persister.AppendPost(testPost(3, fmt.Sprintf("post %v", i)))
			if err != nil {
				t.Errorf("Should have appended post: err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	posts, err := persister.PostsByCampaignID(3)
	if err != nil {
		t.Fatalf("Should have listed posts: err: %v", err)
	}
	if len(posts) != numPosts {
		t.Errorf("Should have kept every concurrent append: %v", len(posts))
	}
}
