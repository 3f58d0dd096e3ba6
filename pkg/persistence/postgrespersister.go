// Package persistence contains the content store implementations
package persistence // import "github.com/joincivil/civil-content-gate/pkg/persistence"

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/persistence/postgres"

	// driver for postgresql
	_ "github.com/lib/pq"
)

// NewPostgresPersister creates a new postgres persister
func NewPostgresPersister(host string, port int, user string, password string, dbname string) (*PostgresPersister, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	db, err := sqlx.Connect("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("Error connecting to sqlx: %v", err)
	}
	return NewPostgresPersisterFromSqlx(db)
}

// NewPostgresPersisterFromSqlx creates a new postgres persister from an
// initialized sqlx.DB, creating the tables and checking the schema version.
func NewPostgresPersisterFromSqlx(db *sqlx.DB) (*PostgresPersister, error) {
	pgPersister := &PostgresPersister{db: db}
	if err := pgPersister.CreateTables(); err != nil {
		return nil, err
	}
	if err := pgPersister.checkVersion(); err != nil {
		return nil, err
	}
	return pgPersister, nil
}

// PostgresPersister holds the DB connection and persistence. Card upserts and
// post inserts are single statements, so concurrent writers never lose a write.
type PostgresPersister struct {
	db *sqlx.DB
}

// CreateTables creates the tables for the content gate if they don't exist
func (p *PostgresPersister) CreateTables() error {
	_, err := p.db.Exec(postgres.VersionSchema())
	if err != nil {
		return fmt.Errorf("Error creating %v table in postgres: %v", postgres.VersionTableName, err)
	}
	_, err = p.db.Exec(postgres.CardSchema())
	if err != nil {
		return fmt.Errorf("Error creating %v table in postgres: %v", postgres.CardTableName, err)
	}
	_, err = p.db.Exec(postgres.PostSchema())
	if err != nil {
		return fmt.Errorf("Error creating %v table in postgres: %v", postgres.PostTableName, err)
	}
	return nil
}

func (p *PostgresPersister) checkVersion() error {
	var version int
	err := p.db.Get(&version, fmt.Sprintf("SELECT version FROM %s;", postgres.VersionTableName)) // nolint: gosec
	if err == sql.ErrNoRows {
		_, err = p.db.Exec(fmt.Sprintf("INSERT INTO %s (version) VALUES ($1);", postgres.VersionTableName), // nolint: gosec
			postgres.SchemaVersion)
		if err != nil {
			return fmt.Errorf("Error writing schema version: %v", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("Error reading schema version: %v", err)
	}
	if version != postgres.SchemaVersion {
		return fmt.Errorf("Unsupported schema version %v, expected %v", version, postgres.SchemaVersion)
	}
	return nil
}

// CardByCampaignID returns the card for the campaign
func (p *PostgresPersister) CardByCampaignID(campaignID uint64) (*model.Card, error) {
	dbCard := postgres.Card{}
	queryString := p.cardByCampaignIDQuery(postgres.CardTableName)
	err := p.db.Get(&dbCard, queryString, fmt.Sprintf("%d", campaignID))
	if err == sql.ErrNoRows {
		return nil, model.ErrPersisterNoResults
	}
	if err != nil {
		return nil, errors.Wrap(err, "Wasn't able to get card from postgres table")
	}
	return dbCard.DbToCardData()
}

// Cards returns every card ordered by campaign ID
func (p *PostgresPersister) Cards() ([]*model.Card, error) {
	dbCards := []postgres.Card{}
	queryString := p.cardsQuery(postgres.CardTableName)
	err := p.db.Select(&dbCards, queryString)
	if err != nil {
		return nil, errors.Wrap(err, "Wasn't able to get cards from postgres table")
	}
	cards := make([]*model.Card, len(dbCards))
	for i := range dbCards {
		card, err := dbCards[i].DbToCardData()
		if err != nil {
			return nil, err
		}
		cards[i] = card
	}
	return cards, nil
}

// SaveCard upserts the card for the campaign
func (p *PostgresPersister) SaveCard(card *model.Card) error {
	queryString := p.upsertCardQuery(postgres.CardTableName)
	_, err := p.db.NamedExec(queryString, postgres.NewCard(card))
	if err != nil {
		return errors.Wrap(err, "Error saving card to table")
	}
	return nil
}

// PostsByCampaignID returns the posts of the campaign in insertion order
func (p *PostgresPersister) PostsByCampaignID(campaignID uint64) ([]*model.Post, error) {
	dbPosts := []postgres.Post{}
	queryString := p.postsByCampaignIDQuery(postgres.PostTableName)
	err := p.db.Select(&dbPosts, queryString, fmt.Sprintf("%d", campaignID))
	if err != nil {
		return nil, errors.Wrap(err, "Wasn't able to get posts from postgres table")
	}
	posts := make([]*model.Post, len(dbPosts))
	for i := range dbPosts {
		post, err := dbPosts[i].DbToPostData()
		if err != nil {
			return nil, err
		}
		posts[i] = post
	}
	return posts, nil
}

// AppendPost assigns a UUID and inserts the post
func (p *PostgresPersister) AppendPost(post *model.Post) (*model.Post, error) {
	stored := post.WithID(uuid.New().String())
	queryString := p.insertPostQuery(postgres.PostTableName)
	_, err := p.db.NamedExec(queryString, postgres.NewPost(stored))
	if err != nil {
		return nil, errors.Wrap(err, "Error saving post to table")
	}
	return stored, nil
}

// Close the database connection
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}

func (p *PostgresPersister) cardByCampaignIDQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT campaign_id, title, image_url, description, owner_address, "+ // nolint: gosec
		"creation_timestamp FROM %s WHERE campaign_id=$1;", tableName)
	return queryString
}

func (p *PostgresPersister) cardsQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT campaign_id, title, image_url, description, owner_address, "+ // nolint: gosec
		"creation_timestamp FROM %s ORDER BY campaign_id;", tableName)
	return queryString
}

func (p *PostgresPersister) upsertCardQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (campaign_id, title, image_url, description, owner_address, "+ // nolint: gosec
		"creation_timestamp) VALUES (:campaign_id, :title, :image_url, :description, :owner_address, "+
		":creation_timestamp) ON CONFLICT (campaign_id) DO UPDATE SET title=EXCLUDED.title, "+
		"image_url=EXCLUDED.image_url, description=EXCLUDED.description, "+
		"owner_address=EXCLUDED.owner_address, creation_timestamp=EXCLUDED.creation_timestamp;", tableName)
	return queryString
}

func (p *PostgresPersister) postsByCampaignIDQuery(tableName string) string {
	queryString := fmt.Sprintf("SELECT id, campaign_id, title, body, author_address, creation_timestamp "+ // nolint: gosec
		"FROM %s WHERE campaign_id=$1 ORDER BY seq;", tableName)
	return queryString
}

func (p *PostgresPersister) insertPostQuery(tableName string) string {
	queryString := fmt.Sprintf("INSERT INTO %s (id, campaign_id, title, body, author_address, "+ // nolint: gosec
		"creation_timestamp) VALUES (:id, :campaign_id, :title, :body, :author_address, "+
		":creation_timestamp);", tableName)
	return queryString
}
