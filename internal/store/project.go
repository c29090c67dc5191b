package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *SQLite) InsertProject(ctx context.Context, p Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO project (id, name, ts) VALUES (?, ?, ?)`,
		p.ID, p.Name, formatTS(p.TS),
	)
	if isUniqueViolation(err, "project.name") {
		return fmt.Errorf("insert project %q: %w", p.Name, ErrDuplicateName)
	}
	return err
}

func (s *SQLite) RemoveProject(ctx context.Context, key string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM project WHERE id = ?`, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLite) PurgeProject(ctx context.Context, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM note WHERE project_id = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("delete notes of project %s: %w", key, err)
	}
	notes, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM project WHERE id = ?`, key)
	if err != nil {
		return 0, fmt.Errorf("delete project %s: %w", key, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("project %s: %w", key, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return notes, nil
}

func (s *SQLite) GetProject(ctx context.Context, key string) (Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, ts FROM project WHERE id = ?`, key)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("project %s: %w", key, ErrNotFound)
	}
	return p, err
}

func (s *SQLite) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, ts FROM project ORDER BY ts, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *SQLite) ListProjectsWithFilter(ctx context.Context, pred ProjectFilter) ([]Project, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilter(pred, projects), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (Project, error) {
	var (
		p  Project
		ts string
	)
	if err := row.Scan(&p.ID, &p.Name, &ts); err != nil {
		return Project{}, err
	}
	parsed, err := parseTS(ts)
	if err != nil {
		return Project{}, err
	}
	p.TS = parsed
	return p, nil
}
