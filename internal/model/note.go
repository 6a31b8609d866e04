// Package model defines core data structures and types for the notes client.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	MaxTitleLength   = 100
	MaxContentLength = 3200
)

// NoteID is assigned by the note store. The empty ID marks a note that has
// never been saved.
type NoteID string

func (id NoteID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts both string and numeric keys, since stores differ
// on whether the primary key is a uuid or a bigint.
func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NoteID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id must be a string or a number: %w", err)
	}
	*id = NoteID(n.String())
	return nil
}

type Note struct {
	ID        NoteID    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Timestamps come back from the store in several shapes depending on the
// column type, so they are parsed leniently.
var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

func ParseTimestamp(s string) (time.Time, error) {
	var parseErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t.UTC(), nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s' with any known format: %w", s, parseErr)
}

func (n *Note) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        NoteID  `json:"id"`
		Title     string  `json:"title"`
		Content   *string `json:"content"`
		CreatedAt *string `json:"created_at"`
		UpdatedAt *string `json:"updated_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	note := Note{ID: raw.ID, Title: raw.Title}
	if raw.Content != nil {
		note.Content = *raw.Content
	}

	var err error
	if raw.CreatedAt != nil && *raw.CreatedAt != "" {
		if note.CreatedAt, err = ParseTimestamp(*raw.CreatedAt); err != nil {
			return err
		}
	}
	if raw.UpdatedAt != nil && *raw.UpdatedAt != "" {
		if note.UpdatedAt, err = ParseTimestamp(*raw.UpdatedAt); err != nil {
			return err
		}
	}

	*n = note
	return nil
}

// MatchesTitle reports whether the note title contains search, ignoring
// case. An empty search matches every note.
func (n *Note) MatchesTitle(search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), strings.ToLower(search))
}

// SortByUpdated orders notes newest first, the order the store returns them in.
func SortByUpdated(a, b Note) int {
	return -a.UpdatedAt.Compare(b.UpdatedAt)
}
