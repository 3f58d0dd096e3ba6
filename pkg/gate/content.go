package gate // import "github.com/joincivil/civil-content-gate/pkg/gate"

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

// CardRequest is a signed request to create or replace a campaign card
type CardRequest struct {
	CampaignID  uint64
	Title       string
	ImageURL    string
	Description string
	Claim       SignedClaim
}

func (r *CardRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.ImageURL) == "" {
		return gaterr.New(gaterr.KindValidation, "Missing fields")
	}
	return nil
}

// PostRequest is a signed request to publish a post
type PostRequest struct {
	CampaignID uint64
	Title      string
	Body       string
	Claim      SignedClaim
}

func (r *PostRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" || r.Body == "" {
		return gaterr.New(gaterr.KindValidation, "Missing fields")
	}
	return nil
}

// PostsView is the result of a gated read
type PostsView struct {
	Decision model.Decision
	Posts    []model.ProjectedPost
}

// NewContentServiceParams contains the params needed to init a ContentService
type NewContentServiceParams struct {
	Oracle        model.AuthorityOracle
	CardPersister model.CardPersister
	PostPersister model.PostPersister
	PreviewLength int
	// Now is used for record timestamps, defaults to time.Now
	Now func() time.Time
}

// NewContentService is a convenience function to init a ContentService
func NewContentService(params *NewContentServiceParams) *ContentService {
	previewLength := params.PreviewLength
	if previewLength <= 0 {
		previewLength = DefaultPreviewLength
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &ContentService{
		guard:         NewWriteGuard(params.Oracle),
		access:        NewAccessGate(params.Oracle),
		cards:         params.CardPersister,
		posts:         params.PostPersister,
		previewLength: previewLength,
		now:           now,
	}
}

// ContentService runs the write path (guard then store) and the read path
// (gate then store then projection).
type ContentService struct {
	guard         *WriteGuard
	access        *AccessGate
	cards         model.CardPersister
	posts         model.PostPersister
	previewLength int
	now           func() time.Time
}

// SaveCard authorizes the request and replaces the campaign's card. The card
// owner is the verified on-chain owner, not the caller's input.
func (s *ContentService) SaveCard(ctx context.Context, req *CardRequest) (*model.Card, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	owner, err := s.guard.AuthorizeClaim(ctx, req.CampaignID, req.Claim)
	if err != nil {
		return nil, err
	}

	card := model.NewCard(req.CampaignID, req.Title, req.ImageURL, req.Description, owner,
		s.now().UTC())
	err = s.cards.SaveCard(card)
	if err != nil {
		return nil, storeError(err, "Could not save campaign card")
	}
	log.Infof("Saved card for campaign %v, owner %v", req.CampaignID, card.OwnerHex())
	return card, nil
}

// PublishPost authorizes the request and appends a post to the campaign
func (s *ContentService) PublishPost(ctx context.Context, req *PostRequest) (*model.Post, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	author, err := s.guard.AuthorizeClaim(ctx, req.CampaignID, req.Claim)
	if err != nil {
		return nil, err
	}

	post := model.NewPost("", req.CampaignID, req.Title, req.Body, author, s.now().UTC())
	stored, err := s.posts.AppendPost(post)
	if err != nil {
		return nil, storeError(err, "Could not save post")
	}
	log.Infof("Published post %v to campaign %v", stored.ID(), req.CampaignID)
	return stored, nil
}

// Posts returns the campaign's posts projected for the caller. An empty
// caller address is an unauthenticated read.
func (s *ContentService) Posts(ctx context.Context, campaignID uint64, callerAddress string) (*PostsView, error) {
	var caller *common.Address
	if strings.TrimSpace(callerAddress) != "" {
		addr, err := ParseAddress(callerAddress)
		if err != nil {
			return nil, err
		}
		caller = &addr
	}

	decision := s.access.Classify(ctx, campaignID, caller)
	posts, err := s.posts.PostsByCampaignID(campaignID)
	if err != nil && err != model.ErrPersisterNoResults {
		return nil, storeError(err, "Could not read posts")
	}
	return &PostsView{
		Decision: decision,
		Posts:    ProjectAll(decision.Access, posts, s.previewLength),
	}, nil
}

// Card returns the campaign's card, nil if there is none
func (s *ContentService) Card(campaignID uint64) (*model.Card, error) {
	card, err := s.cards.CardByCampaignID(campaignID)
	if err == model.ErrPersisterNoResults {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "Could not read campaign card")
	}
	return card, nil
}

// Cards returns every card
func (s *ContentService) Cards() ([]*model.Card, error) {
	cards, err := s.cards.Cards()
	if err != nil && err != model.ErrPersisterNoResults {
		return nil, storeError(err, "Could not read campaign cards")
	}
	if cards == nil {
		cards = []*model.Card{}
	}
	return cards, nil
}

func storeError(err error, message string) error {
	if gaterr.KindOf(err) != gaterr.KindUnknown {
		return err
	}
	return gaterr.Wrap(gaterr.KindStoreIO, err, message)
}
