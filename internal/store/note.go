package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const noteColumns = `id, project_id, name, content, ts`

func (s *SQLite) InsertNote(ctx context.Context, n Note) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE note SET content = ?, ts = ? WHERE id = ?`,
		n.Content, formatTS(n.TS), n.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO note (id, project_id, name, content, ts) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.ProjectID, n.Name, n.Content, formatTS(n.TS),
	)
	return err
}

func (s *SQLite) RemoveNote(ctx context.Context, key string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM note WHERE id = ?`, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLite) GetNote(ctx context.Context, key string) (Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM note WHERE id = ?`, key)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, fmt.Errorf("note %s: %w", key, ErrNotFound)
	}
	return n, err
}

func (s *SQLite) ListNotes(ctx context.Context) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM note ORDER BY ts, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLite) ListNotesWithFilter(ctx context.Context, pred NoteFilter) ([]Note, error) {
	notes, err := s.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(pred, notes), nil
}

// UpdateNote replaces the content of a note and reassigns its project. The
// timestamp is left alone.
func (s *SQLite) UpdateNote(ctx context.Context, key, text, projectID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE note SET project_id = ?, content = ? WHERE id = ?`,
		projectID, text, key,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNote(row scanner) (Note, error) {
	var (
		n                        Note
		projectID, name, content sql.NullString
		ts                       string
	)
	if err := row.Scan(&n.ID, &projectID, &name, &content, &ts); err != nil {
		return Note{}, err
	}
	parsed, err := parseTS(ts)
	if err != nil {
		return Note{}, err
	}
	n.ProjectID = projectID.String
	n.Name = name.String
	n.Content = content.String
	n.TS = parsed
	return n, nil
}
