package models

import "time"

// List groups cards owned by a user. Its cards are found by querying cards
// on list_id; the list row never stores them.
type List struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	IsSynced    bool      `json:"isSynced"`
	IsDeleted   bool      `json:"isDeleted"`

	// RemoteCreated is local bookkeeping: the backend is known to hold this id.
	RemoteCreated bool `json:"-"`
}

// NewList is the input of ListService.Create.
type NewList struct {
	// ID may be left empty; a UUID is generated then.
	ID          string
	UserID      string `validate:"required"`
	Title       string `validate:"required"`
	Description *string
	// Offline marks a record created without the backend's acknowledgement.
	Offline bool
}
