// Package notes holds the note list and editor state behind one client
// session, and mediates every read and write against the note store.
package notes

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/store"
)

var notesLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	notesLogger = l
}

// DeletePrompt is the question put to the user before a note is deleted.
const DeletePrompt = "Delete note? This cannot be undone."

var (
	ErrUnknownNote  = errors.New("note is not in the current list")
	ErrNotConfirmed = errors.New("delete was not confirmed")
)

// Controller owns the notes shown in the sidebar, the selection, the editor
// draft and the search text of one session. It is safe for concurrent use;
// its lock is never held while the store is being called.
type Controller struct {
	store store.NoteStore
	now   func() time.Time

	mu         sync.Mutex
	notes      []model.Note
	selectedID model.NoteID
	persisted  model.Note // last known stored values of the selection
	draft      model.Draft
	searchText string
	editing    bool
	inFlight   int
	lastError  error

	refreshSeq    uint64
	cancelRefresh context.CancelFunc
}

func New(s store.NoteStore) *Controller {
	return &Controller{
		store: s,
		now:   time.Now,
		notes: []model.Note{},
	}
}

// State returns a snapshot that is safe to read after the lock is released.
func (c *Controller) State() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Notes:      slices.Clone(c.notes),
		SelectedID: c.selectedID,
		Draft:      c.draft,
		SearchText: c.searchText,
		Editing:    c.editing,
		Loading:    c.inFlight > 0,
		Err:        c.lastError,
		Mode:       c.mode(),
	}
	if c.lastError != nil {
		v.LastError = c.lastError.Error()
	}
	return v
}

func (c *Controller) mode() Mode {
	switch {
	case c.editing && c.selectedID.IsZero():
		return ModeCreating
	case c.editing:
		return ModeEditing
	case !c.selectedID.IsZero():
		return ModeViewing
	default:
		return ModeIdle
	}
}

// Refresh reloads the notes whose title contains search. When a newer
// refresh is started before this one completes, this one is cancelled and
// its result discarded.
func (c *Controller) Refresh(ctx context.Context, search string) error {
	c.mu.Lock()
	ctx, seq := c.startRefreshLocked(ctx)
	c.mu.Unlock()
	return c.runRefresh(ctx, seq, search)
}

// Reload refreshes the list with the current search text.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	search := c.searchText
	ctx, seq := c.startRefreshLocked(ctx)
	c.mu.Unlock()
	return c.runRefresh(ctx, seq, search)
}

// startRefreshLocked cancels the refresh in flight, if any, and registers a
// new one. The caller must hold c.mu, and must read any search text it
// passes on under the same lock so the latest refresh always carries the
// latest search.
func (c *Controller) startRefreshLocked(ctx context.Context) (context.Context, uint64) {
	if c.cancelRefresh != nil {
		c.cancelRefresh()
	}
	c.refreshSeq++
	ctx, cancel := context.WithCancel(ctx)
	c.cancelRefresh = cancel
	c.inFlight++
	return ctx, c.refreshSeq
}

func (c *Controller) runRefresh(ctx context.Context, seq uint64, search string) error {
	notes, err := c.store.List(ctx, strings.TrimSpace(search))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if seq != c.refreshSeq {
		notesLogger.Debug().Str("search", search).Uint64("seq", seq).Msg("Discarding superseded refresh")
		return nil
	}
	c.cancelRefresh()
	c.cancelRefresh = nil

	if err != nil {
		return c.fail(OpList, err)
	}

	if notes == nil {
		notes = []model.Note{}
	}
	c.notes = notes
	c.lastError = nil

	// Keep the selection in step with the store so a cancelled edit reverts
	// to the latest stored values.
	if !c.selectedID.IsZero() {
		if i := slices.IndexFunc(notes, func(n model.Note) bool { return n.ID == c.selectedID }); i >= 0 {
			c.persisted = notes[i]
			if !c.editing {
				c.draft = model.DraftFrom(notes[i])
			}
		}
	}

	notesLogger.Debug().Str("search", search).Int("count", len(notes)).Msg("Notes refreshed")
	return nil
}

// fail records a store failure. The caller must hold c.mu.
func (c *Controller) fail(op string, err error) error {
	rerr := &RemoteOperationError{Op: op, Err: err}
	c.lastError = rerr
	notesLogger.Error().Err(err).Str("op", op).Msg("Note store operation failed")
	return rerr
}

func (c *Controller) SelectNote(id model.NoteID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.notes, func(n model.Note) bool { return n.ID == id })
	if i < 0 {
		return ErrUnknownNote
	}

	c.selectedID = id
	c.persisted = c.notes[i]
	c.draft = model.DraftFrom(c.notes[i])
	c.editing = false
	c.lastError = nil
	return nil
}

func (c *Controller) StartNew() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selectedID = ""
	c.persisted = model.Note{}
	c.draft = model.Draft{}
	c.editing = true
	c.lastError = nil
}

func (c *Controller) StartEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = true
}

// CancelEdit drops unsaved changes without contacting the store.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selectedID.IsZero() {
		c.draft = model.Draft{}
	} else {
		c.draft = model.DraftFrom(c.persisted)
	}
	c.editing = false
	c.lastError = nil
}

// UpdateDraftField changes one field of the draft. Validation happens on
// save.
func (c *Controller) UpdateDraftField(field model.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Set(field, value)
}

// Save validates the draft and inserts or updates it. On success the list
// is refreshed and the saved note becomes the selection.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	draft := c.draft
	in, err := draft.Input()
	if err != nil {
		c.lastError = err
		c.mu.Unlock()
		return err
	}

	var updatedAt time.Time
	if !draft.IsNew() {
		// Never move updated_at backwards, even with a skewed local clock.
		updatedAt = c.now().UTC()
		if updatedAt.Before(draft.UpdatedAt) {
			updatedAt = draft.UpdatedAt
		}
	}
	c.inFlight++
	c.mu.Unlock()

	var saved model.Note
	op := OpInsert
	if draft.IsNew() {
		saved, err = c.store.Insert(ctx, in)
	} else {
		op = OpUpdate
		saved, err = c.store.Update(ctx, draft.ID, in, updatedAt)
	}

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		rerr := c.fail(op, err)
		c.mu.Unlock()
		return rerr
	}

	c.selectedID = saved.ID
	c.persisted = saved
	c.draft = model.DraftFrom(saved)
	c.editing = false
	c.lastError = nil
	c.mu.Unlock()

	notesLogger.Info().Str("note_id", string(saved.ID)).Str("op", op).Msg("Note saved")

	// A failed refresh leaves its error in the state; the note itself is stored.
	_ = c.Reload(ctx)
	return nil
}

// Delete removes the note in the draft after confirm approves DeletePrompt.
// It does nothing for a draft that was never saved.
func (c *Controller) Delete(ctx context.Context, confirm func(prompt string) bool) error {
	c.mu.Lock()
	id := c.draft.ID
	c.mu.Unlock()

	if id.IsZero() {
		return nil
	}
	if confirm == nil || !confirm(DeletePrompt) {
		return ErrNotConfirmed
	}

	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	err := c.store.Delete(ctx, id)

	c.mu.Lock()
	c.inFlight--
	if err != nil {
		rerr := c.fail(OpDelete, err)
		c.mu.Unlock()
		return rerr
	}

	c.selectedID = ""
	c.persisted = model.Note{}
	c.draft = model.Draft{}
	c.editing = false
	c.lastError = nil
	c.mu.Unlock()

	notesLogger.Info().Str("note_id", string(id)).Msg("Note deleted")

	_ = c.Reload(ctx)
	return nil
}

// SetSearchText stores the search text and refreshes the list with it.
// Storing the text and starting the refresh happen under one lock, so the
// list always ends up matching the most recent search text.
func (c *Controller) SetSearchText(ctx context.Context, text string) error {
	c.mu.Lock()
	c.searchText = text
	ctx, seq := c.startRefreshLocked(ctx)
	c.mu.Unlock()
	return c.runRefresh(ctx, seq, text)
}
