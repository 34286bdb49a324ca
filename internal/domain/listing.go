package domain

import (
	"time"
	"unicode/utf8"
)

// Listing size invariants. Lengths are counted in characters, not bytes,
// so multi-byte titles behave the same as ASCII ones.
const (
	TitleMinLen       = 3
	TitleMaxLen       = 200
	DescriptionMinLen = 10
)

// Listing is an advertisement record. Every listing has exactly one owner,
// established at creation and never transferable. The identifier and
// creation timestamp are assigned by the store on insert.
type Listing struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewListing creates a Listing for the given owner, validating the content
// invariants. Returns a ValidationError enumerating every violated field.
func NewListing(title, description string, ownerID int64) (*Listing, error) {
	l := &Listing{
		Title:       title,
		Description: description,
		UserID:      ownerID,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the listing's content and ownership invariants.
func (l *Listing) Validate() error {
	var fields []FieldError

	switch n := utf8.RuneCountInString(l.Title); {
	case n < TitleMinLen:
		fields = append(fields, FieldError{
			Field:   "title",
			Message: "title must be at least 3 characters long",
		})
	case n > TitleMaxLen:
		fields = append(fields, FieldError{
			Field:   "title",
			Message: "title must be at most 200 characters long",
		})
	}

	if utf8.RuneCountInString(l.Description) < DescriptionMinLen {
		fields = append(fields, FieldError{
			Field:   "description",
			Message: "description must be at least 10 characters long",
		})
	}

	if l.UserID <= 0 {
		fields = append(fields, FieldError{
			Field:   "user_id",
			Message: "listing must have an owner",
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IsOwnedBy reports whether the given caller is the listing's owner.
func (l *Listing) IsOwnedBy(userID int64) bool {
	return l.UserID == userID
}
