package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLen is the maximum comment length in characters.
const MaxTextLen = 140

// Validation messages, keyed under the form field they belong to.
const (
	MsgRequired = "This field is required."
)

// Comment is a short piece of user text that can be liked.
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Likes     int       `json:"likes"`
}

// NewComment creates a Comment with zero likes stamped with the current time.
// The ID is assigned by the store.
func NewComment(text string) Comment {
	return Comment{
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for field, msgs := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, " ")))
	}
	return strings.Join(parts, "; ")
}

// Add appends a message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// ValidateText checks comment text against the form rules: present, not
// blank, and at most MaxTextLen characters. Returns nil when valid.
func ValidateText(text string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(text) == "" {
		errs.Add("text", MsgRequired)
		return errs
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		errs.Add("text", fmt.Sprintf("Field cannot be longer than %d characters.", MaxTextLen))
		return errs
	}
	return nil
}
