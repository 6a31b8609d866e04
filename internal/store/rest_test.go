package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/debemdeboas/the-notes/internal/model"
)

const testKey = "anon-key"

func newRESTServer(t *testing.T, handler http.HandlerFunc) *RESTStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTStore(srv.URL+"/", testKey, "notes", 5*time.Second)
}

func TestRESTStoreList(t *testing.T) {
	var gotQuery string
	s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/rest/v1/notes" {
			t.Errorf("Expected path /rest/v1/notes, got %s", r.URL.Path)
		}
		if got := r.Header.Get("apikey"); got != testKey {
			t.Errorf("Expected apikey header %q, got %q", testKey, got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testKey {
			t.Errorf("Expected bearer authorization, got %q", got)
		}
		gotQuery = r.URL.Query().Get("title")
		if got := r.URL.Query().Get("order"); got != "updated_at.desc.nullslast" {
			t.Errorf("Expected order updated_at.desc.nullslast, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id": 2, "title": "Groceries", "content": null, "created_at": "2024-05-01T10:00:00+00:00", "updated_at": "2024-05-02T10:00:00.123456+00:00"},
			{"id": "abc", "title": "Ideas", "content": "x", "created_at": "2024-04-01 09:00:00", "updated_at": "2024-04-01 09:00:00"}
		]`)
	})

	tests := []struct {
		name      string
		search    string
		wantQuery string
	}{
		{"No search", "", ""},
		{"Blank search", "   ", ""},
		{"Plain search", "groc", "ilike.%groc%"},
		{"Metacharacters are escaped", "50%_off*", `ilike.%50\%\_off\*%`},
		{"Star wildcard is escaped", "a*b", `ilike.%a\*b%`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := s.List(context.Background(), tt.search)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}
			if gotQuery != tt.wantQuery {
				t.Errorf("Expected title filter %q, got %q", tt.wantQuery, gotQuery)
			}
			if len(notes) != 2 {
				t.Fatalf("Expected 2 notes, got %d", len(notes))
			}
			if notes[0].ID != "2" || notes[1].ID != "abc" {
				t.Errorf("Unexpected ids %q, %q", notes[0].ID, notes[1].ID)
			}
			if notes[0].Content != "" {
				t.Errorf("Expected null content to decode as empty, got %q", notes[0].Content)
			}
			want := time.Date(2024, 5, 2, 10, 0, 0, 123456000, time.UTC)
			if !notes[0].UpdatedAt.Equal(want) {
				t.Errorf("Expected updated_at %v, got %v", want, notes[0].UpdatedAt)
			}
		})
	}
}

func TestRESTStoreListEmpty(t *testing.T) {
	s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	notes, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", notes)
	}
}

func TestRESTStoreInsert(t *testing.T) {
	s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Expected Prefer return=representation, got %q", got)
		}

		var body []model.NoteInput
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if len(body) != 1 || body[0].Title != "Hello" || body[0].Content != "World" {
			t.Errorf("Unexpected insert body %#v", body)
		}

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `[{"id": "n1", "title": "Hello", "content": "World", "created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-05-01T10:00:00Z"}]`)
	})

	note, err := s.Insert(context.Background(), model.NoteInput{Title: "Hello", Content: "World"})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if note.ID != "n1" || note.Title != "Hello" {
		t.Errorf("Unexpected note %#v", note)
	}
}

func TestRESTStoreUpdate(t *testing.T) {
	updatedAt := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	t.Run("Updates the matching row", func(t *testing.T) {
		s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch {
				t.Errorf("Expected PATCH, got %s", r.Method)
			}
			if got := r.URL.Query().Get("id"); got != "eq.n1" {
				t.Errorf("Expected id filter eq.n1, got %q", got)
			}

			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if body["title"] != "New" || body["content"] != "Body" {
				t.Errorf("Unexpected update body %#v", body)
			}
			if body["updated_at"] != "2024-06-01T12:30:00Z" {
				t.Errorf("Expected updated_at 2024-06-01T12:30:00Z, got %q", body["updated_at"])
			}

			io.WriteString(w, `[{"id": "n1", "title": "New", "content": "Body", "created_at": "2024-05-01T10:00:00Z", "updated_at": "2024-06-01T12:30:00Z"}]`)
		})

		note, err := s.Update(context.Background(), "n1", model.NoteInput{Title: "New", Content: "Body"}, updatedAt)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if !note.UpdatedAt.Equal(updatedAt) {
			t.Errorf("Expected updated_at %v, got %v", updatedAt, note.UpdatedAt)
		}
	})

	t.Run("Missing row is not found", func(t *testing.T) {
		s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		})

		_, err := s.Update(context.Background(), "gone", model.NoteInput{Title: "x"}, updatedAt)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestRESTStoreDelete(t *testing.T) {
	var deleted string
	s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=minimal" {
			t.Errorf("Expected Prefer return=minimal, got %q", got)
		}
		deleted = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	})

	if err := s.Delete(context.Background(), "n7"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted != "eq.n7" {
		t.Errorf("Expected id filter eq.n7, got %q", deleted)
	}
}

func TestRESTStoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "Error body message is surfaced",
			status:  http.StatusBadRequest,
			body:    `{"code": "22001", "message": "value too long for type character varying(100)", "details": null, "hint": null}`,
			wantMsg: "value too long for type character varying(100)",
		},
		{
			name:    "Plain text body falls back to status",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable",
			wantMsg: "note store returned 502 Bad Gateway",
		},
		{
			name:    "Empty body falls back to status",
			status:  http.StatusUnauthorized,
			wantMsg: "note store returned 401 Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := s.List(context.Background(), "")
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, err.Error())
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected APIError, got %T", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.Status)
			}
		})
	}
}

func TestRESTStoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s := NewRESTStore(srv.URL, testKey, "notes", time.Second)
	_, err := s.List(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error from closed server")
	}
	if strings.TrimSpace(err.Error()) == "" {
		t.Error("Expected a non-empty error message")
	}
}

func TestRESTStoreTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	s := NewRESTStore(srv.URL, testKey, "notes", 50*time.Millisecond)
	_, err := s.List(context.Background(), "")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestRESTStoreCancelled(t *testing.T) {
	s := newRESTServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.List(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context canceled, got %v", err)
	}
}
