// Package state keeps the name of the currently selected project in a small
// marker file next to the database.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Load returns the selected project name. A missing marker file is created
// empty.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := Save(path, ""); err != nil {
			return "", err
		}
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read selected project: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save replaces the marker content with name.
func Save(path, name string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(name)); err != nil {
		return fmt.Errorf("write selected project: %w", err)
	}
	return nil
}

// Clear deselects the current project.
func Clear(path string) error {
	return Save(path, "")
}
