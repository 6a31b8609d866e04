// Package session keeps one note controller per browser session.
package session

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/cache"
	"github.com/debemdeboas/the-notes/internal/notes"
	"github.com/debemdeboas/the-notes/internal/store"
)

var sessionLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	sessionLogger = l
}

type ID string

type Session struct {
	ID         ID
	Controller *notes.Controller

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Registry hands out sessions. Every controller shares the same store.
type Registry struct {
	store    store.NoteStore
	sessions *cache.Cache[ID, *Session]
	now      func() time.Time
}

func NewRegistry(s store.NoteStore) *Registry {
	return &Registry{
		store:    s,
		sessions: cache.NewCache[ID, *Session](),
		now:      time.Now,
	}
}

func (r *Registry) Create() *Session {
	sess := &Session{
		ID:         ID(uuid.New().String()),
		Controller: notes.New(r.store),
	}
	sess.touch(r.now())
	r.sessions.Set(sess.ID, sess)

	sessionLogger.Debug().Str("session_id", string(sess.ID)).Msg("Session created")
	return sess
}

func (r *Registry) Get(id ID) (*Session, bool) {
	sess, ok := r.sessions.Get(id)
	if ok {
		sess.touch(r.now())
	}
	return sess, ok
}

// GetOrCreate returns the session for id, or a fresh one when id is unknown
// or expired. created reports which.
func (r *Registry) GetOrCreate(id ID) (sess *Session, created bool) {
	if id != "" {
		if sess, ok := r.Get(id); ok {
			return sess, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	return r.sessions.Len()
}

// Sweep drops sessions idle for longer than maxIdle and reports how many
// were dropped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	n := r.sessions.DeleteFunc(func(_ ID, s *Session) bool {
		return s.LastSeen().Before(cutoff)
	})
	if n > 0 {
		sessionLogger.Info().Int("expired", n).Int("active", r.sessions.Len()).Msg("Idle sessions swept")
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
