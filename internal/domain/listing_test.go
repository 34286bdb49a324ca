package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListing(t *testing.T) {
	t.Parallel()

	listing, err := NewListing("Selling bike", "Good condition mountain bike", 7)
	require.NoError(t, err)
	assert.Equal(t, "Selling bike", listing.Title)
	assert.Equal(t, int64(7), listing.UserID)
	assert.Zero(t, listing.ID, "the store assigns the identifier")
	assert.True(t, listing.CreatedAt.IsZero(), "the store assigns the timestamp")
}

func TestListingValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		title       string
		description string
		ownerID     int64
		wantFields  []string
	}{
		{
			name:        "valid",
			title:       "Selling bike",
			description: "Good condition mountain bike",
			ownerID:     1,
		},
		{
			name:        "title at minimum length",
			title:       "abc",
			description: "exactly ok description",
			ownerID:     1,
		},
		{
			name:        "title at maximum length",
			title:       strings.Repeat("x", TitleMaxLen),
			description: "exactly ok description",
			ownerID:     1,
		},
		{
			name:        "title too short",
			title:       "ab",
			description: "Good condition mountain bike",
			ownerID:     1,
			wantFields:  []string{"title"},
		},
		{
			name:        "title too long",
			title:       strings.Repeat("x", TitleMaxLen+1),
			description: "Good condition mountain bike",
			ownerID:     1,
			wantFields:  []string{"title"},
		},
		{
			name:        "description too short",
			title:       "Selling bike",
			description: "too short",
			ownerID:     1,
			wantFields:  []string{"description"},
		},
		{
			name:        "description at minimum length",
			title:       "Selling bike",
			description: "1234567890",
			ownerID:     1,
		},
		{
			name:        "missing owner",
			title:       "Selling bike",
			description: "Good condition mountain bike",
			wantFields:  []string{"user_id"},
		},
		{
			name:       "everything wrong is enumerated together",
			title:      "ab",
			wantFields: []string{"title", "description", "user_id"},
		},
		{
			name:        "multibyte runes count as characters",
			title:       "МФТ", // three runes, more than three bytes
			description: "десять букв ровно тут",
			ownerID:     1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			listing := &Listing{
				Title:       tc.title,
				Description: tc.description,
				UserID:      tc.ownerID,
			}
			err := listing.Validate()

			if len(tc.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)

			got := make([]string, 0, len(valErr.Fields))
			for _, f := range valErr.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.ElementsMatch(t, tc.wantFields, got)
		})
	}
}

func TestListingIsOwnedBy(t *testing.T) {
	t.Parallel()

	listing := &Listing{UserID: 7}
	assert.True(t, listing.IsOwnedBy(7))
	assert.False(t, listing.IsOwnedBy(8))
	assert.False(t, listing.IsOwnedBy(0))
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("alice@example.com", "hashed-credential")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Zero(t, user.ID)

	_, err = NewUser("", "hashed-credential")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewUser("alice@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Fields: []FieldError{
		{Field: "title", Message: "title must be at least 3 characters long"},
		{Field: "description", Message: "description must be at least 10 characters long"},
	}}

	msg := err.Error()
	assert.Contains(t, msg, "title must be at least 3 characters long")
	assert.Contains(t, msg, "description must be at least 10 characters long")
	assert.True(t, errors.Is(err, ErrValidation))
}
