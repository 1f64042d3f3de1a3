package transfer

import "github.com/postdock/postdock/internal/models"

type PostCreation struct {
	Content             string              `json:"content"`
	ScheduledFor        string              `json:"scheduled_for"`
	SocialAccountID     int64               `json:"social_account_id"`
	Platform            string              `json:"platform"`
	PageContext         models.PageContext  `json:"page_context"`
	ImageAssets         []models.ImageAsset `json:"image_assets,omitempty"`
	HackerNewsURL       string              `json:"hackernews_url,omitempty"`
	ScheduledInTimezone string              `json:"scheduled_in_timezone,omitempty"`
}

// PostUpdate carries the editable fields of a scheduled post. Nil pointers
// leave the stored value untouched.
type PostUpdate struct {
	Content       *string              `json:"content,omitempty"`
	ScheduledFor  *string              `json:"scheduled_for,omitempty"`
	ImageAssets   *[]models.ImageAsset `json:"image_assets,omitempty"`
	HackerNewsURL *string              `json:"hackernews_url,omitempty"`
}

type PostDeletion struct {
	Confirm string `json:"confirm"`
}

// ValidationError marks failures the caller can fix (bad content, bad
// schedule time). Handlers map it to a 400 with the message verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
