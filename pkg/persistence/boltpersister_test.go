package persistence_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joincivil/civil-content-gate/pkg/persistence"
)

func TestBoltPersister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.db")
	persister, err := persistence.NewBoltPersister(path)
	if err != nil {
		t.Fatalf("Should have opened bolt persister: err: %v", err)
	}
	defer persister.Close() // nolint: errcheck
	testContentPersister(t, persister)
}

func TestBoltPersisterConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.db")
	persister, err := persistence.NewBoltPersister(path)
	if err != nil {
		t.Fatalf("Should have opened bolt persister: err: %v", err)
	}
	defer persister.Close() // nolint: errcheck
	testConcurrentAppends(t, persister)
}

func TestBoltPersisterReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.db")
	persister, err := persistence.NewBoltPersister(path)
	if err != nil {
		t.Fatalf("Should have opened bolt persister: err: %v", err)
	}
	if err = persister.SaveCard(testCard(7, "durable")); err != nil {
		t.Fatalf("Should have saved card: err: %v", err)
	}
	stored, err := persister.AppendPost(testPost(7, "durable post"))
	if err != nil {
		t.Fatalf("Should have appended post: err: %v", err)
	}
	if err = persister.Close(); err != nil {
		t.Fatalf("Should have closed persister: err: %v", err)
	}

	persister, err = persistence.NewBoltPersister(path)
	if err != nil {
		t.Fatalf("Should have reopened bolt persister: err: %v", err)
	}
	defer persister.Close() // nolint: errcheck

	card, err := persister.CardByCampaignID(7)
	if err != nil || card.Title() != "durable" {
		t.Errorf("Should have kept the card across reopen: err: %v", err)
	}
	posts, err := persister.PostsByCampaignID(7)
	if err != nil || len(posts) != 1 {
		t.Fatalf("Should have kept the post across reopen: err: %v", err)
	}
	if posts[0].ID() != stored.ID() {
		t.Errorf("Should have kept the post ID: %v != %v", posts[0].ID(), stored.ID())
	}
}

func TestBoltPersisterRefusesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.db")
	err := os.WriteFile(path, []byte("this is not a bolt database, just some text padding it out"), 0600)
	if err != nil {
		t.Fatalf("Should have written file: err: %v", err)
	}
	_, err = persistence.NewBoltPersister(path)
	if err == nil {
		t.Errorf("Should have refused a corrupt database")
	}
	raw, _ := os.ReadFile(path) // nolint: gosec
	if string(raw) != "this is not a bolt database, just some text padding it out" {
		t.Errorf("Should not have overwritten the corrupt file")
	}
}
