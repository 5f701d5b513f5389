package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Patches carry only the fields a caller wants to change: a nil pointer means
// "leave as is". Apply reports whether the target was modified.

type ListPatch struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
	IsSynced    *bool   `json:"isSynced,omitempty"`
}

func (p ListPatch) Apply(l *List) bool {
	changed := false
	if p.Title != nil && *p.Title != l.Title {
		l.Title = *p.Title
		changed = true
	}
	if p.Description != nil && (l.Description == nil || *p.Description != *l.Description) {
		d := *p.Description
		l.Description = &d
		changed = true
	}
	if p.IsSynced != nil && *p.IsSynced != l.IsSynced {
		l.IsSynced = *p.IsSynced
		changed = true
	}
	return changed
}

type CardPatch struct {
	ListID      *string    `json:"listId,omitempty"`
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=1"`
	Priority    *string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	IsPublished *bool      `json:"is_published,omitempty"`
	ImageURLs   *[]string  `json:"image_url,omitempty"`
	Pdfs        *[]Pdf     `json:"pdfs,omitempty"`
	Likes       *int       `json:"likes,omitempty"`
	Comments    *[]Comment `json:"comments,omitempty"`
	Downloads   *int       `json:"downloads,omitempty"`
	Content     *string    `json:"content,omitempty"`
	IsSynced    *bool      `json:"isSynced,omitempty"`
}

func (p CardPatch) Apply(c *Card) bool {
	changed := false
	if p.ListID != nil && *p.ListID != c.ListID {
		c.ListID = *p.ListID
		changed = true
	}
	if p.Title != nil && *p.Title != c.Title {
		c.Title = *p.Title
		changed = true
	}
	if p.Priority != nil && *p.Priority != c.Priority {
		c.Priority = *p.Priority
		changed = true
	}
	if p.IsPublished != nil && *p.IsPublished != c.IsPublished {
		c.IsPublished = *p.IsPublished
		changed = true
	}
	if p.ImageURLs != nil {
		c.ImageURLs = append([]string{}, (*p.ImageURLs)...)
		changed = true
	}
	if p.Pdfs != nil {
		c.Pdfs = append([]Pdf{}, (*p.Pdfs)...)
		changed = true
	}
	if p.Likes != nil && *p.Likes != c.Likes {
		c.Likes = *p.Likes
		changed = true
	}
	if p.Comments != nil {
		c.Comments = append([]Comment{}, (*p.Comments)...)
		changed = true
	}
	if p.Downloads != nil && *p.Downloads != c.Downloads {
		c.Downloads = *p.Downloads
		changed = true
	}
	if p.Content != nil && *p.Content != c.Content {
		c.Content = *p.Content
		changed = true
	}
	if p.IsSynced != nil && *p.IsSynced != c.IsSynced {
		c.IsSynced = *p.IsSynced
		changed = true
	}
	return changed
}

// UserPatch doubles as the payload of UserService.UpsertCurrentUser, where ID
// selects the user to merge into or create.
type UserPatch struct {
	ID            string     `json:"_id,omitempty"`
	UserCode      *string    `json:"userCode,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Email         *string    `json:"email,omitempty" validate:"omitempty,email"`
	DateOfBirth   *string    `json:"dateOfBirth,omitempty"`
	Role          *string    `json:"role,omitempty"`
	Plan          *string    `json:"plan,omitempty"`
	OrgPoints     *int       `json:"orgPoints,omitempty" validate:"omitempty,min=0"`
	ProfileImage  *string    `json:"profileImage,omitempty"`
	LoginAttempts *int       `json:"loginAttempts,omitempty" validate:"omitempty,min=0"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	IsSynced      *bool      `json:"isSynced,omitempty"`
}

func (p UserPatch) Apply(u *User) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = true
		}
	}
	setOptional := func(dst **string, src *string) {
		if src != nil && (*dst == nil || **dst != *src) {
			v := *src
			*dst = &v
			changed = true
		}
	}
	setInt := func(dst *int, src *int) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = true
		}
	}

	setString(&u.UserCode, p.UserCode)
	setString(&u.Name, p.Name)
	setString(&u.Email, p.Email)
	setString(&u.DateOfBirth, p.DateOfBirth)
	setString(&u.Role, p.Role)
	setOptional(&u.Plan, p.Plan)
	setInt(&u.OrgPoints, p.OrgPoints)
	setOptional(&u.ProfileImage, p.ProfileImage)
	setInt(&u.LoginAttempts, p.LoginAttempts)
	if p.LastLogin != nil && (u.LastLogin == nil || !u.LastLogin.Equal(*p.LastLogin)) {
		t := *p.LastLogin
		u.LastLogin = &t
		changed = true
	}
	if p.IsSynced != nil && *p.IsSynced != u.IsSynced {
		u.IsSynced = *p.IsSynced
		changed = true
	}
	return changed
}

var (
	listPatchKeys = keySet("title", "description", "isSynced")
	cardPatchKeys = keySet("listId", "title", "priority", "is_published", "image_url", "pdfs",
		"likes", "comments", "downloads", "content", "isSynced")
	userPatchKeys = keySet("_id", "userCode", "name", "email", "dateOfBirth", "role", "plan",
		"orgPoints", "profileImage", "loginAttempts", "lastLogin", "isSynced")
)

// ParseListPatch decodes a JSON object into a ListPatch. Keys that are not
// list attributes are returned, sorted, instead of failing the decode.
func ParseListPatch(data []byte) (ListPatch, []string, error) {
	return parsePatch[ListPatch](data, listPatchKeys)
}

func ParseCardPatch(data []byte) (CardPatch, []string, error) {
	return parsePatch[CardPatch](data, cardPatchKeys)
}

func ParseUserPatch(data []byte) (UserPatch, []string, error) {
	return parsePatch[UserPatch](data, userPatchKeys)
}

func parsePatch[T any](data []byte, known map[string]struct{}) (T, []string, error) {
	var p T
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return p, nil, fmt.Errorf("decode patch: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, nil, fmt.Errorf("decode patch: %w", err)
	}

	var unknown []string
	for k := range raw {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return p, unknown, nil
}

func keySet(keys ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return m
}
