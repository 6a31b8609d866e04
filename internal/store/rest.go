package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/supabase-community/postgrest-go"

	"github.com/debemdeboas/the-notes/internal/model"
)

const restPath = "/rest/v1"

// APIError is the error body returned by the REST API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("note store returned %d %s", e.Status, http.StatusText(e.Status))
}

// RESTStore talks to a PostgREST table endpoint, the API exposed by hosted
// Postgres backends.
type RESTStore struct {
	baseURL   string
	key       string
	table     string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewRESTStore(baseURL, key, table string, timeout time.Duration) *RESTStore {
	return &RESTStore{
		baseURL:   strings.TrimRight(baseURL, "/"),
		key:       key,
		table:     table,
		timeout:   timeout,
		transport: http.DefaultTransport,
	}
}

// call carries the context of one store operation into the postgrest client,
// which builds its requests without one, and keeps the error body of a failed
// response.
type call struct {
	ctx    context.Context
	next   http.RoundTripper
	table  string
	apiErr *APIError
}

func (c *call) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.next.RoundTrip(req.WithContext(c.ctx))
	if err != nil {
		storeLogger.Error().Err(err).Str("method", req.Method).Str("table", c.table).Msg("Note store request failed")
		return nil, err
	}

	storeLogger.Debug().
		Str("method", req.Method).
		Str("table", c.table).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Note store request")

	if resp.StatusCode >= http.StatusBadRequest {
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			// Some gateways answer with plain text; keep the status error then.
			_ = json.Unmarshal(data, apiErr)
		}
		c.apiErr = apiErr
		resp.Body = io.NopCloser(bytes.NewReader(data))
	}
	return resp, nil
}

// from starts a query on the notes table bound to ctx.
func (s *RESTStore) from(ctx context.Context) (*postgrest.QueryBuilder, *call) {
	c := &call{ctx: ctx, next: s.transport, table: s.table}
	client := postgrest.NewClient(s.baseURL+restPath, "", nil).
		SetApiKey(s.key).
		SetAuthToken(s.key)
	client.Transport.Parent = c
	return client.From(s.table), c
}

func (s *RESTStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// result prefers the decoded error body over the client's own message.
func (c *call) result(err error) error {
	if c.apiErr != nil {
		return errors.WithStack(c.apiErr)
	}
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// likePattern escapes the pattern metacharacters, including PostgREST's
// '*' alias for '%', so the search text matches literally, then wraps it for
// a contains match.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `\*`)
	return "%" + r.Replace(search) + "%"
}

func (s *RESTStore) List(ctx context.Context, search string) ([]model.Note, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q, c := s.from(ctx)
	query := q.Select("*", "", false)
	if search = strings.TrimSpace(search); search != "" {
		query = query.Ilike("title", likePattern(search))
	}
	query = query.Order("updated_at", &postgrest.OrderOpts{Ascending: false})

	var notes []model.Note
	_, err := query.ExecuteTo(&notes)
	if err := c.result(err); err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

func (s *RESTStore) Insert(ctx context.Context, in model.NoteInput) (model.Note, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q, c := s.from(ctx)
	var rows []model.Note
	_, err := q.Insert([]model.NoteInput{in}, false, "", "representation", "").ExecuteTo(&rows)
	if err := c.result(err); err != nil {
		return model.Note{}, err
	}
	if len(rows) == 0 {
		return model.Note{}, errors.New("note store did not return the inserted note")
	}
	return rows[0], nil
}

func (s *RESTStore) Update(ctx context.Context, id model.NoteID, in model.NoteInput, updatedAt time.Time) (model.Note, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	body := struct {
		model.NoteInput
		UpdatedAt string `json:"updated_at"`
	}{
		NoteInput: in,
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339Nano),
	}

	q, c := s.from(ctx)
	var rows []model.Note
	_, err := q.Update(body, "representation", "").Eq("id", string(id)).ExecuteTo(&rows)
	if err := c.result(err); err != nil {
		return model.Note{}, err
	}
	if len(rows) == 0 {
		return model.Note{}, errors.WithStack(ErrNotFound)
	}
	return rows[0], nil
}

func (s *RESTStore) Delete(ctx context.Context, id model.NoteID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q, c := s.from(ctx)
	_, _, err := q.Delete("minimal", "").Eq("id", string(id)).Execute()
	return c.result(err)
}
