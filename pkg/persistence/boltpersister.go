package persistence // import "github.com/joincivil/civil-content-gate/pkg/persistence"

import (
	"fmt"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/joincivil/civil-content-gate/pkg/model"
)

const (
	boltSchemaVersion = 1
	boltMetaBucket    = "content_gate_meta"
	boltSchemaKey     = "schema_version"

	boltOpenTimeout = 2 * time.Second
)

// BoltCodec is the format used to store records in the bolt database.
var BoltCodec = storm.Codec(msgpack.Codec)

// boltCard is the bolt record for a card. Key is the zero padded campaign ID
// so that keys sort numerically.
type boltCard struct {
	Key         string `storm:"id"`
	CampaignID  uint64
	Title       string
	ImageURL    string
	Description string
	Owner       string
	CreatedAt   time.Time
}

// boltPost is the bolt record for a post. Seq is the bolt sequence and gives
// the insertion order.
type boltPost struct {
	Seq        uint64 `storm:"id,increment"`
	ID         string `storm:"unique"`
	CampaignID uint64 `storm:"index"`
	Title      string
	Body       string
	Author     string
	CreatedAt  time.Time
}

func boltCardKey(campaignID uint64) string {
	return fmt.Sprintf("%020d", campaignID)
}

// NewBoltPersister opens (or creates) the bolt database at path and validates
// its content. A database that cannot be decoded is refused.
func NewBoltPersister(path string) (*BoltPersister, error) {
	db, err := storm.Open(path, BoltCodec, storm.BoltOptions(0600, &bolt.Options{Timeout: boltOpenTimeout}))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open bolt database %v", path)
	}
	persister := &BoltPersister{db: db}
	err = persister.init()
	if err != nil {
		_ = db.Close() // nolint: gosec
		return nil, err
	}
	return persister, nil
}

// BoltPersister is a model.ContentPersister backed by an embedded bolt
// database. Bolt serializes writers and fsyncs every commit.
type BoltPersister struct {
	db *storm.DB
}

func (b *BoltPersister) init() error {
	var version int
	err := b.db.Get(boltMetaBucket, boltSchemaKey, &version)
	switch {
	case err == storm.ErrNotFound:
		if err = b.db.Set(boltMetaBucket, boltSchemaKey, boltSchemaVersion); err != nil {
			return errors.Wrap(err, "could not write schema version")
		}
	case err != nil:
		return errors.Wrap(err, "could not read schema version")
	case version != boltSchemaVersion:
		return fmt.Errorf("unsupported bolt schema version %v, expected %v", version, boltSchemaVersion)
	}

	if err = b.db.Init(&boltCard{}); err != nil {
		return errors.Wrap(err, "could not init card bucket")
	}
	if err = b.db.Init(&boltPost{}); err != nil {
		return errors.Wrap(err, "could not init post bucket")
	}
	return b.validate()
}

// validate decodes every record once so corruption fails at open rather than
// on a later read.
func (b *BoltPersister) validate() error {
	cards := []boltCard{}
	if err := b.db.All(&cards); err != nil && err != storm.ErrNotFound {
		return errors.Wrap(err, "could not decode cards")
	}
	for _, card := range cards {
		if card.Key != boltCardKey(card.CampaignID) || !common.IsHexAddress(card.Owner) {
			return fmt.Errorf("invalid card record for key %v", card.Key)
		}
	}

	posts := []boltPost{}
	if err := b.db.All(&posts); err != nil && err != storm.ErrNotFound {
		return errors.Wrap(err, "could not decode posts")
	}
	for _, post := range posts {
		if post.ID == "" || !common.IsHexAddress(post.Author) {
			return fmt.Errorf("invalid post record at sequence %v", post.Seq)
		}
	}
	return nil
}

// CardByCampaignID returns the card for the campaign
func (b *BoltPersister) CardByCampaignID(campaignID uint64) (*model.Card, error) {
	var card boltCard
	err := b.db.One("Key", boltCardKey(campaignID), &card)
	if err == storm.ErrNotFound {
		return nil, model.ErrPersisterNoResults
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not find card")
	}
	return card.toModel(), nil
}

// Cards returns every card ordered by campaign ID
func (b *BoltPersister) Cards() ([]*model.Card, error) {
	records := []boltCard{}
	err := b.db.All(&records)
	if err != nil && err != storm.ErrNotFound {
		return nil, errors.Wrap(err, "could not list cards")
	}
	cards := make([]*model.Card, len(records))
	for i := range records {
		cards[i] = records[i].toModel()
	}
	return cards, nil
}

// SaveCard replaces the card for the campaign in a single transaction
func (b *BoltPersister) SaveCard(card *model.Card) error {
	record := &boltCard{
		Key:         boltCardKey(card.CampaignID()),
		CampaignID:  card.CampaignID(),
		Title:       card.Title(),
		ImageURL:    card.ImageURL(),
		Description: card.Description(),
		Owner:       card.OwnerHex(),
		CreatedAt:   card.CreatedAt(),
	}
	return errors.Wrap(b.db.Save(record), "could not save card")
}

// PostsByCampaignID returns the posts of the campaign in insertion order
func (b *BoltPersister) PostsByCampaignID(campaignID uint64) ([]*model.Post, error) {
	records := []boltPost{}
	err := b.db.Select(q.Eq("CampaignID", campaignID)).OrderBy("Seq").Find(&records)
	if err != nil && err != storm.ErrNotFound {
		return nil, errors.Wrap(err, "could not find posts")
	}
	posts := make([]*model.Post, len(records))
	for i := range records {
		posts[i] = records[i].toModel()
	}
	return posts, nil
}

// AppendPost assigns a UUID and appends the post in a single transaction
func (b *BoltPersister) AppendPost(post *model.Post) (*model.Post, error) {
	stored := post.WithID(uuid.New().String())
	record := &boltPost{
		ID:         stored.ID(),
		CampaignID: stored.CampaignID(),
		Title:      stored.Title(),
		Body:       stored.Body(),
		Author:     stored.AuthorHex(),
		CreatedAt:  stored.CreatedAt(),
	}
	if err := b.db.Save(record); err != nil {
		return nil, errors.Wrap(err, "could not append post")
	}
	return stored, nil
}

// Close the database.
func (b *BoltPersister) Close() error {
	return b.db.Close()
}

func (c *boltCard) toModel() *model.Card {
	return model.NewCard(c.CampaignID, c.Title, c.ImageURL, c.Description,
		common.HexToAddress(c.Owner), c.CreatedAt.UTC())
}

func (p *boltPost) toModel() *model.Post {
	return model.NewPost(p.ID, p.CampaignID, p.Title, p.Body, common.HexToAddress(p.Author),
		p.CreatedAt.UTC())
}
