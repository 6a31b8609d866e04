package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/model"
	"github.com/debemdeboas/the-notes/internal/util"
	"github.com/debemdeboas/the-notes/internal/util/compression"
)

// SQLStore keeps notes in a local SQL table, with content stored
// zstd-compressed.
type SQLStore struct {
	db         db.DB
	compressor compression.Compressor
	now        func() time.Time
}

func NewSQLStore(conn db.DB) *SQLStore {
	return &SQLStore{
		db:         conn,
		compressor: compression.ZstdCompressor{},
		now:        time.Now,
	}
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) List(ctx context.Context, search string) ([]model.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, content, created_at, updated_at FROM notes`)
	if err != nil {
		return nil, errors.Wrap(err, "error querying notes")
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		note, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating notes")
	}

	// sqlite's LIKE and lower() only fold ASCII, so the match is done here.
	return filterAndSort(notes, search), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *SQLStore) scan(row scanner) (model.Note, error) {
	var note model.Note
	var compressed []byte
	if err := row.Scan(&note.ID, &note.Title, &compressed, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return model.Note{}, errors.Wrap(err, "error scanning note")
	}

	if len(compressed) > 0 {
		content, err := s.compressor.Decompress(compressed)
		if err != nil {
			return model.Note{}, errors.Wrapf(err, "error decompressing content of note %s", note.ID)
		}
		note.Content = string(content)
	}
	note.CreatedAt = note.CreatedAt.UTC()
	note.UpdatedAt = note.UpdatedAt.UTC()
	return note, nil
}

func (s *SQLStore) get(ctx context.Context, id model.NoteID) (model.Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, content, created_at, updated_at FROM notes WHERE id = ?`, id)
	note, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, errors.WithStack(ErrNotFound)
	}
	return note, err
}

func (s *SQLStore) Insert(ctx context.Context, in model.NoteInput) (model.Note, error) {
	compressed, err := s.compressor.Compress([]byte(in.Content))
	if err != nil {
		return model.Note{}, errors.Wrap(err, "error compressing content")
	}

	now := s.now().UTC()
	note := model.Note{
		ID:        model.NoteID(uuid.New().String()),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, content_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, compressed, util.ContentHash(compressed), note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return model.Note{}, errors.Wrap(err, "error inserting note")
	}

	storeLogger.Debug().Str("note_id", string(note.ID)).Msg("Note inserted")
	return note, nil
}

func (s *SQLStore) Update(ctx context.Context, id model.NoteID, in model.NoteInput, updatedAt time.Time) (model.Note, error) {
	compressed, err := s.compressor.Compress([]byte(in.Content))
	if err != nil {
		return model.Note{}, errors.Wrap(err, "error compressing content")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, content_hash = ?, updated_at = ? WHERE id = ?`,
		in.Title, compressed, util.ContentHash(compressed), updatedAt.UTC(), id,
	)
	if err != nil {
		return model.Note{}, errors.Wrap(err, "error updating note")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Note{}, errors.WithStack(ErrNotFound)
	}

	storeLogger.Debug().Str("note_id", string(id)).Msg("Note updated")
	return s.get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id model.NoteID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "error deleting note")
	}
	storeLogger.Debug().Str("note_id", string(id)).Msg("Note deleted")
	return nil
}
