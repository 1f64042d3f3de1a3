package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/postdock/postdock/internal/platform"
)

type ScheduledPost struct {
	ID           int64        `db:"id" json:"id"`
	UserID       int64        `db:"user_id" json:"user_id"`
	AccountID    int64        `db:"account_id" json:"social_account_id"`
	Content      string       `db:"content" json:"content"`
	ScheduledFor time.Time    `db:"scheduled_for" json:"scheduled_for"`
	Status       string       `db:"status" json:"status"` // scheduled, posted, failed
	ErrorMessage string       `db:"error_message" json:"error_message,omitempty"`
	Metadata     PostMetadata `db:"metadata" json:"metadata"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusScheduled = "scheduled"
	PostStatusPosted    = "posted"
	PostStatusFailed    = "failed"
)

// PostMetadata is stored as a JSONB column alongside the post row.
type PostMetadata struct {
	Platform            platform.Platform `json:"platform"`
	PageContext         PageContext       `json:"page_context"`
	ImageAssets         []ImageAsset      `json:"image_assets,omitempty"`
	HackerNewsURL       string            `json:"hackernews_url,omitempty"`
	ScheduledInTimezone string            `json:"scheduled_in_timezone,omitempty"`
	UserEmail           string            `json:"user_email,omitempty"`
	UserName            string            `json:"user_name,omitempty"`
}

// PageContext describes the marketing page a post is about.
type PageContext struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type ImageAsset struct {
	AssetID    int64  `json:"asset_id"`
	DisplayURL string `json:"display_url"`
}

func (m PostMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *PostMetadata) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = PostMetadata{}
		return nil
	}
	return errors.New("unsupported metadata column type")
}

type Asset struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	DisplayURL string    `db:"display_url" json:"display_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PublishAttempt records one publisher run against a post.
type PublishAttempt struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	PostID       int64     `db:"post_id" json:"post_id"`
	AccountID    int64     `db:"account_id" json:"account_id"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
