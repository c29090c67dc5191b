package store

import "strings"

// MatchName selects the project with exactly this name.
func MatchName(name string) ProjectFilter {
	return func(p Project) bool {
		return p.Name == name
	}
}

// MatchGUIDPrefix selects notes whose id starts with prefix.
func MatchGUIDPrefix(prefix string) NoteFilter {
	return func(n Note) bool {
		return strings.HasPrefix(n.ID, prefix)
	}
}

// MatchProjectID selects the notes of one project.
func MatchProjectID(projectID string) NoteFilter {
	return func(n Note) bool {
		return n.ProjectID == projectID
	}
}

// MatchText selects notes whose name or content contains term, ignoring case.
func MatchText(term string) NoteFilter {
	term = strings.ToLower(term)
	return func(n Note) bool {
		return strings.Contains(strings.ToLower(n.Name), term) ||
			strings.Contains(strings.ToLower(n.Content), term)
	}
}

// All combines note filters; a note must pass every one of them.
func All(preds ...NoteFilter) NoteFilter {
	return func(n Note) bool {
		for _, pred := range preds {
			if !pred(n) {
				return false
			}
		}
		return true
	}
}

// SingleMatch returns the only note of a prefix lookup.
func SingleMatch(notes []Note) (Note, error) {
	switch len(notes) {
	case 0:
		return Note{}, ErrNoMatch
	case 1:
		return notes[0], nil
	default:
		return Note{}, ErrAmbiguousPrefix
	}
}
