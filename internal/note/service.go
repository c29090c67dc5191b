package note

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vinayprograms/devnote/internal/config"
	"github.com/vinayprograms/devnote/internal/editor"
	"github.com/vinayprograms/devnote/internal/state"
	"github.com/vinayprograms/devnote/internal/store"
)

var (
	ErrNoProjectSelected = errors.New(`No project selected please run with the "use <proj_name>" command first`)
	ErrProjectNotFound   = errors.New("project does not exist")
	ErrProjectHasNotes   = errors.New("project still has notes, use --force to remove them too")
	ErrUpdateFailed      = errors.New("update failed")
	ErrInvalidDate       = errors.New(`invalid date, expected "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD"`)
	ErrEmptyName         = errors.New("project name is required")
	ErrEmptyPrefix       = errors.New("guid prefix is required")
)

// Service implements the devnote commands on top of a repository.
type Service struct {
	Repo         store.Repository
	Config       *config.Config
	SelectedPath string

	// NewEditor builds the editor used by Add and Edit.
	NewEditor func() editor.Editor
	Now       func() time.Time
	// OnChange runs after every successful write with a short description.
	OnChange  func(message string)
}

func NewService(repo store.Repository, cfg *config.Config) *Service {
	paths := cfg.Paths()
	return &Service{
		Repo:         repo,
		Config:       cfg,
		SelectedPath: paths.Selected,
		NewEditor: func() editor.Editor {
			return editor.New(cfg.EditApp, paths.Dir)
		},
		Now: time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) changed(message string) {
	if s.OnChange != nil {
		s.OnChange(message)
	}
}

// Selected returns the selected project name, "" when none.
func (s *Service) Selected() (string, error) {
	return state.Load(s.SelectedPath)
}

// SelectedProject resolves the selected project.
func (s *Service) SelectedProject(ctx context.Context) (store.Project, error) {
	name, err := s.Selected()
	if err != nil {
		return store.Project{}, err
	}
	if name == "" {
		return store.Project{}, ErrNoProjectSelected
	}
	return s.ProjectByName(ctx, name)
}

func (s *Service) ProjectByName(ctx context.Context, name string) (store.Project, error) {
	projects, err := s.Repo.ListProjectsWithFilter(ctx, store.MatchName(name))
	if err != nil {
		return store.Project{}, err
	}
	if len(projects) == 0 {
		return store.Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return projects[0], nil
}

// Use selects the named project, creating it first when needed. It returns
// the previously selected name.
func (s *Service) Use(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}

	previous, err := s.Selected()
	if err != nil {
		return "", err
	}

	if _, err := s.CreateProject(ctx, name); err != nil && !errors.Is(err, store.ErrDuplicateName) {
		return previous, err
	}

	if err := state.Save(s.SelectedPath, name); err != nil {
		return previous, err
	}
	return previous, nil
}

// CreateProject adds a project unless one with that name exists, in which
// case it returns the existing one together with store.ErrDuplicateName.
func (s *Service) CreateProject(ctx context.Context, name string) (store.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Project{}, ErrEmptyName
	}

	existing, err := s.Repo.ListProjectsWithFilter(ctx, store.MatchName(name))
	if err != nil {
		return store.Project{}, err
	}
	if len(existing) > 0 {
		return existing[0], store.ErrDuplicateName
	}

	p := store.Project{ID: uuid.NewString(), Name: name, TS: s.now()}
	if err := s.Repo.InsertProject(ctx, p); err != nil {
		return store.Project{}, err
	}
	s.changed(fmt.Sprintf("Create project '%s'", name))
	return p, nil
}

// Projects lists all projects.
func (s *Service) Projects(ctx context.Context) ([]store.Project, error) {
	return s.Repo.ListProjects(ctx)
}

// NoteCounts returns the number of notes per project id.
func (s *Service) NoteCounts(ctx context.Context) (map[string]int, error) {
	notes, err := s.Repo.ListNotes(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, n := range notes {
		counts[n.ProjectID]++
	}
	return counts, nil
}

// Add opens the editor for a new note in the selected project. name falls
// back to the configured default; date is "YYYY-MM-DD[ HH:MM:SS]" or empty
// for now. A nil note with a nil error means the empty text was discarded.
func (s *Service) Add(ctx context.Context, name, date string) (*store.Note, error) {
	project, err := s.SelectedProject(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = s.Config.DefaultName
	}

	ts := s.now()
	if date != "" {
		ts, err = ParseDate(date)
		if err != nil {
			return nil, err
		}
	}

	text, err := s.NewEditor().Edit(ctx, editor.Draft{Name: name, Date: ts})
	if err != nil {
		return nil, err
	}
	if s.skipEmpty(text) {
		return nil, nil
	}

	return s.insert(ctx, project, name, text, ts)
}

// CreateNote stores a note without going through the editor.
func (s *Service) CreateNote(ctx context.Context, projectName, name, content string) (*store.Note, error) {
	project, err := s.ProjectByName(ctx, projectName)
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, project, name, content, s.now())
}

func (s *Service) insert(ctx context.Context, project store.Project, name, text string, ts time.Time) (*store.Note, error) {
	n := store.Note{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		Name:      name,
		Content:   text,
		TS:        ts,
	}
	if err := s.Repo.InsertNote(ctx, n); err != nil {
		return nil, err
	}
	s.changed(fmt.Sprintf("Add note %s to '%s'", shortID(n.ID), project.Name))
	return &n, nil
}

func (s *Service) skipEmpty(text string) bool {
	return text == "" && s.Config.NoEmptyAddsOrUpdates
}

// Resolve finds the single note whose guid starts with prefix.
func (s *Service) Resolve(ctx context.Context, prefix string) (store.Note, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return store.Note{}, ErrEmptyPrefix
	}
	notes, err := s.Repo.ListNotesWithFilter(ctx, store.MatchGUIDPrefix(prefix))
	if err != nil {
		return store.Note{}, err
	}
	n, err := store.SingleMatch(notes)
	if err != nil {
		return store.Note{}, fmt.Errorf("%s: %w", prefix, err)
	}
	return n, nil
}

func (s *Service) requireSelection() error {
	name, err := s.Selected()
	if err != nil {
		return err
	}
	if name == "" {
		return ErrNoProjectSelected
	}
	return nil
}

// Remove deletes the note matching prefix.
func (s *Service) Remove(ctx context.Context, prefix string) (store.Note, error) {
	if err := s.requireSelection(); err != nil {
		return store.Note{}, err
	}
	return s.RemoveNote(ctx, prefix)
}

// RemoveNote is Remove without the selection check.
func (s *Service) RemoveNote(ctx context.Context, prefix string) (store.Note, error) {
	n, err := s.Resolve(ctx, prefix)
	if err != nil {
		return store.Note{}, err
	}
	if _, err := s.Repo.RemoveNote(ctx, n.ID); err != nil {
		return store.Note{}, err
	}
	s.changed(fmt.Sprintf("Remove note %s", shortID(n.ID)))
	return n, nil
}

// List returns the selected project and its notes.
func (s *Service) List(ctx context.Context) (store.Project, []store.Note, error) {
	project, err := s.SelectedProject(ctx)
	if err != nil {
		return store.Project{}, nil, err
	}
	notes, err := s.NotesOf(ctx, project)
	return project, notes, err
}

func (s *Service) NotesOf(ctx context.Context, project store.Project) ([]store.Note, error) {
	return s.Repo.ListNotesWithFilter(ctx, store.MatchProjectID(project.ID))
}

// Search returns notes of the selected project whose name or content
// contains term.
func (s *Service) Search(ctx context.Context, term string) ([]store.Note, error) {
	project, err := s.SelectedProject(ctx)
	if err != nil {
		return nil, err
	}
	return s.SearchIn(ctx, project, term)
}

func (s *Service) SearchIn(ctx context.Context, project store.Project, term string) ([]store.Note, error) {
	return s.Repo.ListNotesWithFilter(ctx, store.All(
		store.MatchProjectID(project.ID),
		store.MatchText(term),
	))
}

// View returns the note matching prefix.
func (s *Service) View(ctx context.Context, prefix string) (store.Note, error) {
	if err := s.requireSelection(); err != nil {
		return store.Note{}, err
	}
	return s.Resolve(ctx, prefix)
}

// Edit reopens the note matching prefix in the editor and stores the new
// text. The returned bool is false when empty text was discarded.
func (s *Service) Edit(ctx context.Context, prefix string) (store.Note, bool, error) {
	if err := s.requireSelection(); err != nil {
		return store.Note{}, false, err
	}

	n, err := s.Resolve(ctx, prefix)
	if err != nil {
		return store.Note{}, false, err
	}

	text, err := s.NewEditor().Edit(ctx, editor.Draft{Name: n.Name, Date: n.TS, Text: n.Content})
	if err != nil {
		return n, false, err
	}
	if s.skipEmpty(text) {
		return n, false, nil
	}

	updated, err := s.updateText(ctx, n, text)
	return updated, err == nil, err
}

// UpdateText replaces the content of the note matching prefix.
func (s *Service) UpdateText(ctx context.Context, prefix, text string) (store.Note, error) {
	n, err := s.Resolve(ctx, prefix)
	if err != nil {
		return store.Note{}, err
	}
	return s.updateText(ctx, n, text)
}

func (s *Service) updateText(ctx context.Context, n store.Note, text string) (store.Note, error) {
	count, err := s.Repo.UpdateNote(ctx, n.ID, text, n.ProjectID)
	if err != nil {
		return n, err
	}
	if count == 0 {
		return n, ErrUpdateFailed
	}
	n.Content = text
	s.changed(fmt.Sprintf("Edit note %s", shortID(n.ID)))
	return n, nil
}

// Move reassigns the note matching prefix to the selected project.
func (s *Service) Move(ctx context.Context, prefix string) (store.Note, error) {
	project, err := s.SelectedProject(ctx)
	if err != nil {
		return store.Note{}, err
	}
	return s.moveTo(ctx, prefix, project)
}

// MoveTo reassigns the note matching prefix to the named project.
func (s *Service) MoveTo(ctx context.Context, prefix, projectName string) (store.Note, error) {
	project, err := s.ProjectByName(ctx, projectName)
	if err != nil {
		return store.Note{}, err
	}
	return s.moveTo(ctx, prefix, project)
}

func (s *Service) moveTo(ctx context.Context, prefix string, project store.Project) (store.Note, error) {
	n, err := s.Resolve(ctx, prefix)
	if err != nil {
		return store.Note{}, err
	}
	count, err := s.Repo.UpdateNote(ctx, n.ID, n.Content, project.ID)
	if err != nil {
		return n, err
	}
	if count == 0 {
		return n, ErrUpdateFailed
	}
	n.ProjectID = project.ID
	s.changed(fmt.Sprintf("Move note %s to '%s'", shortID(n.ID), project.Name))
	return n, nil
}

// Drop removes a project. Projects with notes are only removed with force,
// which deletes the notes as well. Dropping the selected project clears the
// selection.
func (s *Service) Drop(ctx context.Context, name string, force bool) (int, error) {
	project, err := s.ProjectByName(ctx, name)
	if err != nil {
		return 0, err
	}

	notes, err := s.NotesOf(ctx, project)
	if err != nil {
		return 0, err
	}
	if len(notes) > 0 && !force {
		return 0, fmt.Errorf("%s: %w", name, ErrProjectHasNotes)
	}

	removed, err := s.Repo.PurgeProject(ctx, project.ID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	if err != nil {
		return 0, err
	}

	selected, err := s.Selected()
	if err == nil && selected == name {
		err = state.Clear(s.SelectedPath)
	}
	s.changed(fmt.Sprintf("Drop project '%s'", name))
	return int(removed), err
}

// ParseDate accepts "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" in UTC.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateTimeLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, ErrInvalidDate)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
