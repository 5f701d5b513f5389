package models

import "time"

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Pdf is an attachment descriptor embedded in a Card.
type Pdf struct {
	URL        string    `json:"url" validate:"required"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
	// Size is in kilobytes.
	Size *float64 `json:"size,omitempty"`
}

// Comment is embedded in a Card and has no table of its own.
type Comment struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Card struct {
	ID          string    `json:"_id"`
	ListID      string    `json:"listId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Priority    string    `json:"priority"`
	IsPublished bool      `json:"is_published"`
	ImageURLs   []string  `json:"image_url"`
	Pdfs        []Pdf     `json:"pdfs"`
	Likes       int       `json:"likes"`
	Comments    []Comment `json:"comments"`
	Downloads   int       `json:"downloads"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsSynced    bool      `json:"isSynced"`
	IsDeleted   bool      `json:"isDeleted"`

	RemoteCreated bool `json:"-"`
}

// Normalize replaces nil collections with empty ones so that they encode as
// [] on the wire and in the store.
func (c *Card) Normalize() {
	if c.ImageURLs == nil {
		c.ImageURLs = []string{}
	}
	if c.Pdfs == nil {
		c.Pdfs = []Pdf{}
	}
	if c.Comments == nil {
		c.Comments = []Comment{}
	}
	if c.Priority == "" {
		c.Priority = PriorityLow
	}
}

// NewCard is the input of CardService.Create.
type NewCard struct {
	ID          string
	ListID      string `validate:"required"`
	UserID      string `validate:"required"`
	Title       string `validate:"required"`
	Priority    string `validate:"omitempty,oneof=low medium high"`
	IsPublished bool
	ImageURLs   []string
	Pdfs        []Pdf `validate:"dive"`
	Content     string
	Offline     bool
}
