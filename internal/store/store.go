// Package store implements the remote note collection that the client reads
// from and writes to.
package store

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/model"
)

var storeLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	storeLogger = l
}

// ErrNotFound is returned when an update or delete targets a missing row.
var ErrNotFound = errors.New("note not found")

// NoteStore is the table-like collection of notes. Filtering, ordering, id
// assignment and timestamps are the store's responsibility.
type NoteStore interface {
	// List returns the notes whose title contains search (case-insensitive),
	// newest update first. An empty search returns every note.
	List(ctx context.Context, search string) ([]model.Note, error)

	// Insert creates a note; the store assigns the id and both timestamps.
	Insert(ctx context.Context, in model.NoteInput) (model.Note, error)

	// Update writes title, content and updated_at of an existing note.
	Update(ctx context.Context, id model.NoteID, in model.NoteInput, updatedAt time.Time) (model.Note, error)

	Delete(ctx context.Context, id model.NoteID) error
}

var (
	_ NoteStore = (*RESTStore)(nil)
	_ NoteStore = (*SQLStore)(nil)
	_ NoteStore = (*S3Store)(nil)
)

// Closer is implemented by stores holding resources that outlive a request.
type Closer interface {
	Close() error
}

// New builds the store named by the endpoint scheme:
//
//	https://<project>.example.co        PostgREST-style REST API
//	sqlite://<path>                     local SQLite file (":memory:" allowed)
//	s3://<bucket>/<prefix>?endpoint=... S3-compatible object storage
func New(ctx context.Context, creds config.StoreCredentials, cfg config.StoreConfig) (NoteStore, error) {
	scheme, rest, ok := strings.Cut(creds.URL, "://")
	if !ok {
		return nil, &config.ConfigurationError{Reason: fmt.Sprintf("%s must be a URL with a scheme", config.EnvStoreURL)}
	}

	switch strings.ToLower(scheme) {
	case "http", "https":
		if _, err := url.ParseRequestURI(creds.URL); err != nil {
			return nil, &config.ConfigurationError{Reason: fmt.Sprintf("invalid %s: %v", config.EnvStoreURL, err)}
		}
		return NewRESTStore(creds.URL, creds.Key, cfg.Table, cfg.RequestTimeout), nil
	case "sqlite":
		if rest == "" {
			return nil, &config.ConfigurationError{Reason: "sqlite endpoint needs a path"}
		}
		conn := db.NewSQLite(rest)
		if err := conn.InitDB(); err != nil {
			return nil, errors.Wrap(err, "error initializing sqlite store")
		}
		return NewSQLStore(conn), nil
	case "s3":
		s3cfg, err := ParseS3Endpoint(creds.URL, creds.Key)
		if err != nil {
			return nil, &config.ConfigurationError{Reason: err.Error()}
		}
		return NewS3Store(ctx, s3cfg)
	default:
		return nil, &config.ConfigurationError{
			Reason: fmt.Sprintf("unsupported %s scheme %q (want https, sqlite or s3)", config.EnvStoreURL, scheme),
		}
	}
}

func filterAndSort(notes []model.Note, search string) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.MatchesTitle(search) {
			out = append(out, n)
		}
	}
	slices.SortStableFunc(out, model.SortByUpdated)
	return out
}
