// Package git snapshots the note database into the git repository that
// contains it, if any.
package git

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Author is recorded on every snapshot commit.
var Author = object.Signature{
	Name:  "devnote",
	Email: "devnote@local",
}

// FindRepoRoot finds the root of the git repository containing the given path
func FindRepoRoot(path string) (string, error) {
	current := path
	if info, err := os.Stat(current); err == nil && !info.IsDir() {
		current = filepath.Dir(current)
	}

	for {
		if _, err := os.Stat(filepath.Join(current, ".git")); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

// IsRepo reports whether path is inside a git repository.
func IsRepo(path string) bool {
	_, err := FindRepoRoot(path)
	return err == nil
}

// CommitFiles stages the given files and commits them with message. Outside
// a repository, or when nothing changed, it does nothing. With push set the
// commit is pushed when the repository has remotes.
func CommitFiles(filePaths []string, message string, push bool) error {
	if len(filePaths) == 0 {
		return nil
	}

	repoRoot, err := FindRepoRoot(filePaths[0])
	if err != nil {
		return nil
	}

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return err
	}

	w, err := repo.Worktree()
	if err != nil {
		return err
	}

	var staged []string
	for _, filePath := range filePaths {
		if _, err := os.Stat(filePath); err != nil {
			continue
		}
		relPath, err := filepath.Rel(repoRoot, filePath)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)
		if _, err := w.Add(relPath); err != nil {
			return err
		}
		staged = append(staged, relPath)
	}

	// Other untracked files in the repository are not ours to commit.
	status, err := w.Status()
	if err != nil {
		return err
	}
	changed := false
	for _, relPath := range staged {
		switch status.File(relPath).Staging {
		case git.Added, git.Modified:
			changed = true
		}
	}
	if !changed {
		return nil
	}

	sig := Author
	sig.When = time.Now()
	if _, err := w.Commit(message, &git.CommitOptions{Author: &sig}); err != nil {
		return err
	}

	if !push {
		return nil
	}

	remotes, err := repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return nil
	}

	err = repo.Push(&git.PushOptions{})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}
