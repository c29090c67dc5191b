package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DEVNOTE_EDIT_APP", "")
	t.Setenv("DEVNOTE_INCLUDE_TIME", "")

	cfg, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Created {
		t.Error("Expected Created = true for a fresh directory")
	}

	if _, err := os.Stat(filepath.Join(tmpDir, FileName)); err != nil {
		t.Fatalf("Expected default config to be written: %v", err)
	}

	if cfg.EditApp != "" {
		t.Errorf("Expected empty edit_app by default, got %q", cfg.EditApp)
	}

	// A second load reads the file that was just written
	cfg, err = LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}
	if cfg.Created {
		t.Error("Expected Created = false once the file exists")
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DEVNOTE_EDIT_APP", "")
	t.Setenv("DEVNOTE_INCLUDE_TIME", "")

	configContent := `edit_app = "nvim"
default_name = "standup"
include_time = true
group_by_date = true
no_empty_adds_or_updates = true
database = "notes/dev.db"

[colors]
guid = "bright-magenta"
date = "#ff8800"
`

	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EditApp != "nvim" {
		t.Errorf("Expected edit_app = nvim, got %s", cfg.EditApp)
	}
	if cfg.DefaultName != "standup" {
		t.Errorf("Expected default_name = standup, got %s", cfg.DefaultName)
	}
	if !cfg.IncludeTime || !cfg.GroupByDate || !cfg.NoEmptyAddsOrUpdates {
		t.Errorf("Expected boolean toggles to be set, got %+v", cfg)
	}

	paths := cfg.Paths()
	if want := filepath.Join(tmpDir, "notes", "dev.db"); paths.Database != want {
		t.Errorf("Expected database path %s, got %s", want, paths.Database)
	}
	if want := filepath.Join(tmpDir, SelectedFileName); paths.Selected != want {
		t.Errorf("Expected selected path %s, got %s", want, paths.Selected)
	}

	if cfg.Colors.GUIDColor != "13" {
		t.Errorf("Expected guid color name resolved to 13, got %s", cfg.Colors.GUIDColor)
	}
	if cfg.Colors.DateColor != "#ff8800" {
		t.Errorf("Expected hex date color to pass through, got %s", cfg.Colors.DateColor)
	}
	if cfg.Colors.ProjectColor == "" {
		t.Error("Expected project color default to be filled in")
	}
}

func TestEnvironmentVariablesPrecedence(t *testing.T) {
	tmpDir := t.TempDir()

	configContent := `edit_app = "vim"
include_time = false
`
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DEVNOTE_EDIT_APP", "internal")
	t.Setenv("DEVNOTE_INCLUDE_TIME", "1")

	cfg, err := LoadFrom(tmpDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.EditApp != "internal" {
		t.Errorf("Expected edit_app from env = internal, got %s", cfg.EditApp)
	}
	if !cfg.IncludeTime {
		t.Error("Expected include_time from env = true")
	}
}

func TestDirFromEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DEVNOTE_HOME", tmpDir)

	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != tmpDir {
		t.Errorf("Expected DEVNOTE_HOME %s, got %s", tmpDir, dir)
	}
}
