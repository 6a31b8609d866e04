package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
	if err := db.Close(); err != nil {
		t.Errorf("Expected Close on unopened database to succeed, got %v", err)
	}
}

func TestSQLiteInitDB(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	path := filepath.Join(t.TempDir(), "notes.db")
	db := NewSQLite(path)
	defer db.Close()

	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	t.Run("Connection is established", func(t *testing.T) {
		if _, err := db.ExecContext(context.Background(), "SELECT 1"); err != nil {
			t.Errorf("Failed to ping database: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected database file to exist: %v", err)
		}
	})

	t.Run("Verify notes table schema", func(t *testing.T) {
		rows, err := db.QueryContext(context.Background(), "PRAGMA table_info(notes)")
		if err != nil {
			t.Fatalf("Failed to get notes table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Errorf("Failed to scan column info: %v", err)
				continue
			}
			columns[name] = true
		}

		for _, col := range []string{"id", "title", "content", "content_hash", "created_at", "updated_at"} {
			if !columns[col] {
				t.Errorf("Expected notes table to have column %s", col)
			}
		}
	})

	t.Run("InitDB is idempotent", func(t *testing.T) {
		again := NewSQLite(path)
		defer again.Close()
		if err := again.InitDB(); err != nil {
			t.Errorf("Expected second InitDB to succeed, got %v", err)
		}
	})
}

func TestSQLiteQueryAndExec(t *testing.T) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	db := NewSQLite(":memory:")
	defer db.Close()
	if err := db.InitDB(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}

	ctx := context.Background()
	now := time.Now().UTC()

	res, err := db.ExecContext(ctx,
		`INSERT INTO notes (id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"n1", "Shopping", []byte("milk"), now, now)
	if err != nil {
		t.Fatalf("Failed to insert note: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		t.Errorf("Expected 1 row affected, got %d", n)
	}

	var title string
	var updatedAt time.Time
	if err := db.QueryRowContext(ctx, `SELECT title, updated_at FROM notes WHERE id = ?`, "n1").Scan(&title, &updatedAt); err != nil {
		t.Fatalf("Failed to read note back: %v", err)
	}
	if title != "Shopping" {
		t.Errorf("Expected title 'Shopping', got %q", title)
	}
	if !updatedAt.Equal(now) {
		t.Errorf("Expected updated_at %v, got %v", now, updatedAt)
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO notes (id, title, created_at, updated_at) VALUES (?, NULL, ?, ?)`, "n2", now, now); err == nil {
		t.Error("Expected NOT NULL constraint on title")
	}
}
