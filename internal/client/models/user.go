package models

import "time"

// DefaultRole is assigned to users created without an explicit role.
const DefaultRole = "user"

// User is the account the device is logged in as. Users are never deleted by
// the local store.
type User struct {
	ID            string     `json:"_id"`
	UserCode      string     `json:"userCode"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	DateOfBirth   string     `json:"dateOfBirth"`
	Role          string     `json:"role"`
	Plan          *string    `json:"plan,omitempty"`
	OrgPoints     int        `json:"orgPoints"`
	ProfileImage  *string    `json:"profileImage,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	IsSynced      bool       `json:"isSynced"`
}
