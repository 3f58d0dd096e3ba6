package postgres // import "github.com/joincivil/civil-content-gate/pkg/persistence/postgres"

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

const (
	// CardTableName is the name of the campaign card table
	CardTableName = "campaign_card"
)

// CardSchema returns the query to create the campaign card table
func CardSchema() string {
	return CardSchemaString(CardTableName)
}

// CardSchemaString returns the query to create this table
// NOTE: campaign IDs are uint64 which overflow BIGINT, so they are NUMERIC(20)
func CardSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            campaign_id NUMERIC(20) PRIMARY KEY,
            title TEXT NOT NULL,
            image_url TEXT NOT NULL,
            description TEXT NOT NULL,
            owner_address TEXT NOT NULL,
            creation_timestamp BIGINT NOT NULL
        );
    `, tableName)
	return schema
}

// Card is the model definition for the campaign card table
type Card struct {
	CampaignID string `db:"campaign_id"`

	Title string `db:"title"`

	ImageURL string `db:"image_url"`

	Description string `db:"description"`

	OwnerAddress string `db:"owner_address"`

	// CreatedTs is unix nanoseconds
	CreatedTs int64 `db:"creation_timestamp"`
}

// NewCard constructs a card for DB from a model.Card
func NewCard(card *model.Card) *Card {
	return &Card{
		CampaignID:   strconv.FormatUint(card.CampaignID(), 10),
		Title:        card.Title(),
		ImageURL:     card.ImageURL(),
		Description:  card.Description(),
		OwnerAddress: card.OwnerHex(),
		CreatedTs:    utils.TimeToNanoSecs(card.CreatedAt()),
	}
}

// DbToCardData creates a model.Card from postgres Card
func (c *Card) DbToCardData() (*model.Card, error) {
	campaignID, err := strconv.ParseUint(c.CampaignID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid campaign_id '%v': %v", c.CampaignID, err)
	}
	if !common.IsHexAddress(c.OwnerAddress) {
		return nil, fmt.Errorf("invalid owner_address '%v'", c.OwnerAddress)
	}
	return model.NewCard(campaignID, c.Title, c.ImageURL, c.Description,
		common.HexToAddress(c.OwnerAddress), utils.NanoSecsToTime(c.CreatedTs)), nil
}
