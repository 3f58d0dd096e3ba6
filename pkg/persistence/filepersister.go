package persistence // import "github.com/joincivil/civil-content-gate/pkg/persistence"

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-gate/pkg/model"
)

const (
	// CardsFileName is the name of the cards collection file
	CardsFileName = "campaigns.json"
	// PostsFileName is the name of the posts collection file
	PostsFileName = "posts.json"

	fileSchemaVersion = 1
)

type fileCard struct {
	CampaignID  string    `json:"campaignId"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"imageUrl"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

type filePost struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
}

// cardsDocument is the on-disk layout of campaigns.json. Version is absent
// from files written before versioning and is read as version 1.
type cardsDocument struct {
	Version   int        `json:"version,omitempty"`
	Campaigns []fileCard `json:"campaigns"`
}

type postsDocument struct {
	Version int        `json:"version,omitempty"`
	Posts   []filePost `json:"posts"`
}

// NewFilePersister opens the JSON collections in dir, creating empty ones if
// missing. Files that fail to decode or validate are refused, never reset.
func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "could not create store dir %v", dir)
	}
	p := &FilePersister{
		cardsPath: filepath.Join(dir, CardsFileName),
		postsPath: filepath.Join(dir, PostsFileName),
	}

	cards := &cardsDocument{Version: fileSchemaVersion, Campaigns: []fileCard{}}
	if err := loadDocument(p.cardsPath, cards); err != nil {
		return nil, err
	}
	if err := cards.validate(); err != nil {
		return nil, errors.Wrapf(err, "corrupt %v", p.cardsPath)
	}
	// Files from before versioning are in push order
	sort.SliceStable(cards.Campaigns, func(i, j int) bool {
		return campaignIDLess(cards.Campaigns[i].CampaignID, cards.Campaigns[j].CampaignID)
	})
	posts := &postsDocument{Version: fileSchemaVersion, Posts: []filePost{}}
	if err := loadDocument(p.postsPath, posts); err != nil {
		return nil, err
	}
	if err := posts.validate(); err != nil {
		return nil, errors.Wrapf(err, "corrupt %v", p.postsPath)
	}

	p.cards = cards
	p.posts = posts
	return p, nil
}

// FilePersister is a model.ContentPersister storing each collection as a
// single JSON document. Each collection has its own lock held for the whole
// read-modify-write; a write becomes visible only after the new document is
// fsynced and renamed into place.
type FilePersister struct {
	cardsPath string
	postsPath string

	cardsMu sync.RWMutex
	cards   *cardsDocument

	postsMu sync.RWMutex
	posts   *postsDocument
}

// CardByCampaignID returns the card for the campaign
func (f *FilePersister) CardByCampaignID(campaignID uint64) (*model.Card, error) {
	key := strconv.FormatUint(campaignID, 10)
	f.cardsMu.RLock()
	defer f.cardsMu.RUnlock()
	for i := range f.cards.Campaigns {
		if f.cards.Campaigns[i].CampaignID == key {
			return f.cards.Campaigns[i].toModel(), nil
		}
	}
	return nil, model.ErrPersisterNoResults
}

// Cards returns every card ordered by campaign ID
func (f *FilePersister) Cards() ([]*model.Card, error) {
	f.cardsMu.RLock()
	defer f.cardsMu.RUnlock()
	cards := make([]*model.Card, len(f.cards.Campaigns))
	for i := range f.cards.Campaigns {
		cards[i] = f.cards.Campaigns[i].toModel()
	}
	return cards, nil
}

// SaveCard replaces the card for the campaign
func (f *FilePersister) SaveCard(card *model.Card) error {
	record := fileCard{
		CampaignID:  strconv.FormatUint(card.CampaignID(), 10),
		Title:       card.Title(),
		ImageURL:    card.ImageURL(),
		Description: card.Description(),
		Owner:       card.OwnerHex(),
		CreatedAt:   card.CreatedAt(),
	}

	f.cardsMu.Lock()
	defer f.cardsMu.Unlock()

	next := &cardsDocument{Version: fileSchemaVersion}
	next.Campaigns = make([]fileCard, 0, len(f.cards.Campaigns)+1)
	inserted := false
	for _, existing := range f.cards.Campaigns {
		if existing.CampaignID == record.CampaignID {
			continue
		}
		if !inserted && campaignIDLess(record.CampaignID, existing.CampaignID) {
			next.Campaigns = append(next.Campaigns, record)
			inserted = true
		}
		next.Campaigns = append(next.Campaigns, existing)
	}
	if !inserted {
		next.Campaigns = append(next.Campaigns, record)
	}

	if err := writeDocument(f.cardsPath, next); err != nil {
		return errors.Wrap(err, "could not save card")
	}
	f.cards = next
	return nil
}

// PostsByCampaignID returns the posts of the campaign in insertion order
func (f *FilePersister) PostsByCampaignID(campaignID uint64) ([]*model.Post, error) {
	key := strconv.FormatUint(campaignID, 10)
	f.postsMu.RLock()
	defer f.postsMu.RUnlock()
	posts := []*model.Post{}
	for i := range f.posts.Posts {
		if f.posts.Posts[i].CampaignID == key {
			posts = append(posts, f.posts.Posts[i].toModel())
		}
	}
	return posts, nil
}

// AppendPost assigns a UUID and appends the post
func (f *FilePersister) AppendPost(post *model.Post) (*model.Post, error) {
	stored := post.WithID(uuid.New().String())
	record := filePost{
		ID:         stored.ID(),
		CampaignID: strconv.FormatUint(stored.CampaignID(), 10),
		Title:      stored.Title(),
		Body:       stored.Body(),
		Author:     stored.AuthorHex(),
		CreatedAt:  stored.CreatedAt(),
	}

	f.postsMu.Lock()
	defer f.postsMu.Unlock()

	next := &postsDocument{Version: fileSchemaVersion}
	next.Posts = make([]filePost, len(f.posts.Posts), len(f.posts.Posts)+1)
	copy(next.Posts, f.posts.Posts)
	next.Posts = append(next.Posts, record)

	if err := writeDocument(f.postsPath, next); err != nil {
		return nil, errors.Wrap(err, "could not append post")
	}
	f.posts = next
	return stored, nil
}

// Close does nothing, every write is already on disk
func (f *FilePersister) Close() error {
	return nil
}

func (d *cardsDocument) validate() error {
	if d.Version != 0 && d.Version != fileSchemaVersion {
		return fmt.Errorf("unsupported version %v", d.Version)
	}
	seen := map[string]bool{}
	for i, card := range d.Campaigns {
		if _, err := strconv.ParseUint(card.CampaignID, 10, 64); err != nil {
			return fmt.Errorf("card %v: invalid campaignId '%v'", i, card.CampaignID)
		}
		if seen[card.CampaignID] {
			return fmt.Errorf("card %v: duplicate campaignId %v", i, card.CampaignID)
		}
		if !common.IsHexAddress(card.Owner) {
			return fmt.Errorf("card %v: invalid owner '%v'", i, card.Owner)
		}
		seen[card.CampaignID] = true
	}
	return nil
}

func (d *postsDocument) validate() error {
	if d.Version != 0 && d.Version != fileSchemaVersion {
		return fmt.Errorf("unsupported version %v", d.Version)
	}
	seen := map[string]bool{}
	for i, post := range d.Posts {
		if post.ID == "" || seen[post.ID] {
			return fmt.Errorf("post %v: missing or duplicate id '%v'", i, post.ID)
		}
		if _, err := strconv.ParseUint(post.CampaignID, 10, 64); err != nil {
			return fmt.Errorf("post %v: invalid campaignId '%v'", i, post.CampaignID)
		}
		if !common.IsHexAddress(post.Author) {
			return fmt.Errorf("post %v: invalid author '%v'", i, post.Author)
		}
		seen[post.ID] = true
	}
	return nil
}

func (c *fileCard) toModel() *model.Card {
	id, _ := strconv.ParseUint(c.CampaignID, 10, 64) // nolint: gosec
	return model.NewCard(id, c.Title, c.ImageURL, c.Description, common.HexToAddress(c.Owner),
		c.CreatedAt.UTC())
}

func (p *filePost) toModel() *model.Post {
	id, _ := strconv.ParseUint(p.CampaignID, 10, 64) // nolint: gosec
	return model.NewPost(p.ID, id, p.Title, p.Body, common.HexToAddress(p.Author), p.CreatedAt.UTC())
}

// campaignIDLess compares two decimal campaign IDs numerically
func campaignIDLess(a string, b string) bool {
	ai, _ := strconv.ParseUint(a, 10, 64) // nolint: gosec
	bi, _ := strconv.ParseUint(b, 10, 64) // nolint: gosec
	return ai < bi
}

// loadDocument decodes path into doc. A missing file is created with doc's
// current (empty) content.
func loadDocument(path string, doc interface{}) error {
	raw, err := os.ReadFile(path) // nolint: gosec
	if os.IsNotExist(err) {
		log.Infof("Creating empty store file %v", path)
		return writeDocument(path, doc)
	}
	if err != nil {
		return errors.Wrapf(err, "could not read %v", path)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return errors.Wrapf(err, "corrupt %v", path)
	}
	if dec.More() {
		return fmt.Errorf("corrupt %v: trailing data", path)
	}
	return nil
}

// writeDocument writes doc to a temp file in the same directory, fsyncs it
// and renames it over path, so readers never see a partial document.
func writeDocument(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint: errcheck

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close() // nolint: gosec
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close() // nolint: gosec
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpName, path); err != nil {
		return err
	}
	return syncDir(dir)
}

func syncDir(dir string) error {
	d, err := os.Open(dir) // nolint: gosec
	if err != nil {
		return err
	}
	defer d.Close() // nolint: errcheck
	return d.Sync()
}
