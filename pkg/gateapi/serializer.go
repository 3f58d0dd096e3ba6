package gateapi // import "github.com/joincivil/civil-content-gate/pkg/gateapi"

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

// CampaignID is a campaign id read from a JSON body. Clients send it either as
// a number or as a decimal string.
type CampaignID struct {
	Value uint64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler
func (c *CampaignID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			return nil
		}
	}
	id, err := ParseCampaignID(raw)
	if err != nil {
		return err
	}
	c.Value = id
	c.Set = true
	return nil
}

// ParseCampaignID parses a decimal unsigned 64 bit campaign id
func ParseCampaignID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, gaterr.Newf(gaterr.KindValidation, "Invalid campaign id: '%v'", raw)
	}
	return id, nil
}

func formatCampaignID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func serializeCard(card *model.Card) echo.Map {
	if card == nil {
		return nil
	}
	return echo.Map{
		"campaignId":  formatCampaignID(card.CampaignID()),
		"title":       card.Title(),
		"imageUrl":    card.ImageURL(),
		"description": card.Description(),
		"owner":       card.OwnerHex(),
		"createdAt":   formatTime(card.CreatedAt()),
	}
}

func serializeCards(cards []*model.Card) []echo.Map {
	serialized := make([]echo.Map, len(cards))
	for i, card := range cards {
		serialized[i] = serializeCard(card)
	}
	return serialized
}

func serializePost(post *model.Post) echo.Map {
	return echo.Map{
		"id":         post.ID(),
		"campaignId": formatCampaignID(post.CampaignID()),
		"title":      post.Title(),
		"body":       post.Body(),
		"author":     post.AuthorHex(),
		"createdAt":  formatTime(post.CreatedAt()),
	}
}

// serializeProjectedPost renders body for full access and bodyPreview for
// preview access, never both.
func serializeProjectedPost(post model.ProjectedPost) echo.Map {
	serialized := echo.Map{
		"id":         post.ID,
		"campaignId": formatCampaignID(post.CampaignID),
		"title":      post.Title,
		"author":     post.Author,
		"createdAt":  formatTime(post.CreatedAt),
	}
	if post.Access == model.AccessFull {
		serialized["body"] = post.Body
	} else {
		serialized["bodyPreview"] = post.BodyPreview
	}
	return serialized
}

func serializeProjectedPosts(posts []model.ProjectedPost) []echo.Map {
	serialized := make([]echo.Map, len(posts))
	for i, post := range posts {
		serialized[i] = serializeProjectedPost(post)
	}
	return serialized
}

func serializeChainCampaign(campaign *model.ChainCampaign) echo.Map {
	return echo.Map{
		"title":        campaign.Title,
		"owner":        model.LowerHex(campaign.Owner),
		"goalWei":      bigString(campaign.GoalWei),
		"deadline":     bigString(campaign.Deadline),
		"collectedWei": bigString(campaign.CollectedWei),
		"finalized":    campaign.Finalized,
	}
}
