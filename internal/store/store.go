// Package store is the persistence layer for devnote.
//
// Projects and notes live in two tables of a single SQLite file. The
// repositories expose plain CRUD plus in-memory predicate filtering; guid
// prefix resolution and the other lookups the CLI needs are built from the
// filters in filter.go.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ─── Types ───────────────────────────────────────────────────────────────────

type Project struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	TS   time.Time `json:"ts"`
}

type Note struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	TS        time.Time `json:"ts"`
}

// ProjectFilter selects projects in ListProjectsWithFilter.
type ProjectFilter func(Project) bool

// NoteFilter selects notes in ListNotesWithFilter.
type NoteFilter func(Note) bool

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateName   = errors.New("a project with this name already exists")
	ErrNoMatch         = errors.New("this guid does not exist in this database")
	ErrAmbiguousPrefix = errors.New("this guid prefix holds multiple results in this database")
)

// ─── Interfaces ──────────────────────────────────────────────────────────────

type ProjectRepository interface {
	InsertProject(ctx context.Context, p Project) error
	RemoveProject(ctx context.Context, key string) (int64, error)
	// PurgeProject deletes a project and all of its notes in one transaction
	// and returns the number of notes deleted.
	PurgeProject(ctx context.Context, key string) (int64, error)
	GetProject(ctx context.Context, key string) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	ListProjectsWithFilter(ctx context.Context, pred ProjectFilter) ([]Project, error)
}

type NoteRepository interface {
	// InsertNote updates content and timestamp of an existing note with the
	// same id, or inserts the full row when there is none.
	InsertNote(ctx context.Context, n Note) error
	RemoveNote(ctx context.Context, key string) (int64, error)
	GetNote(ctx context.Context, key string) (Note, error)
	ListNotes(ctx context.Context) ([]Note, error)
	ListNotesWithFilter(ctx context.Context, pred NoteFilter) ([]Note, error)
	UpdateNote(ctx context.Context, key, text, projectID string) (int64, error)
}

type Repository interface {
	ProjectRepository
	NoteRepository
	Close() error
}

// ─── SQLite ──────────────────────────────────────────────────────────────────

// tsLayout is how timestamps are stored. Rows written with whole seconds
// parse with the same layout.
const tsLayout = "2006-01-02 15:04:05.999999999"

type SQLite struct {
	db          *sql.DB
	initialized bool
}

var _ Repository = (*SQLite)(nil)

// Open opens (creating if missing) the database file at path and makes sure
// both tables exist.
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("devnote: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devnote: open database: %w", err)
	}
	// One writer, one process.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("devnote: pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.Init(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("devnote: init schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) Initialized() bool {
	return s.initialized
}

// Init creates the project and note tables. It is a no-op once it succeeded.
func (s *SQLite) Init(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	if err := s.createProjectTable(ctx); err != nil {
		return err
	}
	if err := s.createNoteTable(ctx); err != nil {
		return err
	}
	s.initialized = true
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createProjectTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS project (
			id   TEXT PRIMARY KEY,
			name TEXT UNIQUE,
			ts   TEXT
		)`)
	return err
}

func (s *SQLite) createNoteTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS note (
			id         TEXT PRIMARY KEY,
			project_id TEXT REFERENCES project(id),
			name       TEXT,
			content    TEXT,
			ts         TEXT
		)`)
	return err
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func parseTS(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(tsLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports a UNIQUE constraint failure on column, given as
// "table.column". Primary key collisions do not count.
func isUniqueViolation(err error, column string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed: "+column)
	}
	return false
}

func applyFilter[T any](pred func(T) bool, items []T) []T {
	if pred == nil {
		return items
	}
	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if pred(it) {
			filtered = append(filtered, it)
		}
	}
	return filtered
}
