package postgres // import "github.com/joincivil/civil-content-gate/pkg/persistence/postgres"

import (
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

const (
	// PostTableName is the name of the campaign post table
	PostTableName = "campaign_post"
)

// PostSchema returns the query to create the campaign post table
func PostSchema() string {
	return PostSchemaString(PostTableName)
}

// PostSchemaString returns the query to create this table. seq gives the
// insertion order, id is the public identifier.
func PostSchemaString(tableName string) string {
	schema := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(
            seq BIGSERIAL PRIMARY KEY,
            id TEXT NOT NULL UNIQUE,
            campaign_id NUMERIC(20) NOT NULL,
            title TEXT NOT NULL,
            body TEXT NOT NULL,
            author_address TEXT NOT NULL,
            creation_timestamp BIGINT NOT NULL
        );
        CREATE INDEX IF NOT EXISTS %s_campaign_id_idx ON %s (campaign_id, seq);
    `, tableName, tableName, tableName)
	return schema
}

// Post is the model definition for the campaign post table
type Post struct {
	ID string `db:"id"`

	CampaignID string `db:"campaign_id"`

	Title string `db:"title"`

	Body string `db:"body"`

	AuthorAddress string `db:"author_address"`

	// CreatedTs is unix nanoseconds
	CreatedTs int64 `db:"creation_timestamp"`
}

// NewPost constructs a post for DB from a model.Post
func NewPost(post *model.Post) *Post {
	return &Post{
		ID:            post.ID(),
		CampaignID:    strconv.FormatUint(post.CampaignID(), 10),
		Title:         post.Title(),
		Body:          post.Body(),
		AuthorAddress: post.AuthorHex(),
		CreatedTs:     utils.TimeToNanoSecs(post.CreatedAt()),
	}
}

// DbToPostData creates a model.Post from postgres Post
func (p *Post) DbToPostData() (*model.Post, error) {
	campaignID, err := strconv.ParseUint(p.CampaignID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid campaign_id '%v': %v", p.CampaignID, err)
	}
	if !common.IsHexAddress(p.AuthorAddress) {
		return nil, fmt.Errorf("invalid author_address '%v'", p.AuthorAddress)
	}
	return model.NewPost(p.ID, campaignID, p.Title, p.Body, common.HexToAddress(p.AuthorAddress),
		utils.NanoSecsToTime(p.CreatedTs)), nil
}
