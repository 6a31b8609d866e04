package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/model"
)

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestNew(t *testing.T) {
	db.SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	cfg := config.StoreConfig{Table: "notes", RequestTimeout: time.Second}

	tests := []struct {
		name       string
		creds      config.StoreCredentials
		wantType   string
		wantConfig bool
	}{
		{"REST over https", config.StoreCredentials{URL: "https://project.example.co", Key: "k"}, "*store.RESTStore", false},
		{"REST over http", config.StoreCredentials{URL: "http://localhost:3000", Key: "k"}, "*store.RESTStore", false},
		{"SQLite in memory", config.StoreCredentials{URL: "sqlite://:memory:", Key: "unused"}, "*store.SQLStore", false},
		{"S3 bucket", config.StoreCredentials{URL: "s3://bucket/notes?endpoint=http://127.0.0.1:9000&region=us-east-1", Key: "id:secret"}, "*store.S3Store", false},
		{"No scheme", config.StoreCredentials{URL: "project.example.co", Key: "k"}, "", true},
		{"Unknown scheme", config.StoreCredentials{URL: "ftp://example.com", Key: "k"}, "", true},
		{"SQLite without path", config.StoreCredentials{URL: "sqlite://", Key: "k"}, "", true},
		{"S3 with malformed key", config.StoreCredentials{URL: "s3://bucket", Key: "no-secret"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(context.Background(), tt.creds, cfg)
			if tt.wantConfig {
				var cfgErr *config.ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Expected ConfigurationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c, ok := s.(Closer); ok {
				defer c.Close()
			}
			if got := typeName(s); got != tt.wantType {
				t.Errorf("Expected %s, got %s", tt.wantType, got)
			}
		})
	}
}

func typeName(s NoteStore) string {
	switch s.(type) {
	case *RESTStore:
		return "*store.RESTStore"
	case *SQLStore:
		return "*store.SQLStore"
	case *S3Store:
		return "*store.S3Store"
	default:
		return "unknown"
	}
}

func TestFilterAndSort(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := []model.Note{
		{ID: "1", Title: "Old groceries", UpdatedAt: base},
		{ID: "2", Title: "Travel", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "3", Title: "New GROCERIES", UpdatedAt: base.Add(time.Hour)},
	}

	got := filterAndSort(notes, "groceries")
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "1" {
		t.Errorf("Expected [3 1], got %#v", got)
	}

	got = filterAndSort(notes, "")
	if len(got) != 3 || got[0].ID != "2" {
		t.Errorf("Expected all notes newest first, got %#v", got)
	}

	if notes[0].ID != "1" {
		t.Error("Expected input slice to be left untouched")
	}
}
