package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	FileName         = "config.toml"
	DatabaseFileName = "note.db"
	SelectedFileName = "selected.txt"
)

// colorNameMap maps user-friendly color names to ANSI 16-color values
var colorNameMap = map[string]string{
	"black":          "0",
	"red":            "1",
	"green":          "2",
	"yellow":         "3",
	"blue":           "4",
	"magenta":        "5",
	"cyan":           "6",
	"white":          "7",
	"bright-black":   "8",
	"gray":           "8", // alias for bright-black
	"bright-red":     "9",
	"bright-green":   "10",
	"bright-yellow":  "11",
	"bright-blue":    "12",
	"bright-magenta": "13",
	"bright-cyan":    "14",
	"bright-white":   "15",
}

// resolveColorValue converts color names to ANSI 16-color numbers.
// Hex colors, ANSI numbers and 256-color codes pass through to lipgloss unchanged.
func resolveColorValue(colorInput string) string {
	if colorInput == "" {
		return colorInput
	}
	if ansiValue, exists := colorNameMap[strings.ToLower(colorInput)]; exists {
		return ansiValue
	}
	return colorInput
}

type ColorScheme struct {
	ProjectColor string `toml:"project"`
	GUIDColor    string `toml:"guid"`
	DateColor    string `toml:"date"`
	HeaderColor  string `toml:"header"`
	EmptyColor   string `toml:"empty"`
}

type Config struct {
	EditApp              string      `toml:"edit_app"`
	DefaultName          string      `toml:"default_name"`
	IncludeTime          bool        `toml:"include_time"`
	GroupByDate          bool        `toml:"group_by_date"`
	NoEmptyAddsOrUpdates bool        `toml:"no_empty_adds_or_updates"`
	RenderMarkdown       bool        `toml:"render_markdown"`
	GitPush              bool        `toml:"git_push"`
	Database             string      `toml:"database,omitempty"`
	ColorMode            string      `toml:"color_mode"` // "light", "dark", or empty for auto-detect
	Colors               ColorScheme `toml:"colors"`

	// Dir is the devnote home directory the config was loaded from.
	Dir     string `toml:"-"`
	// Created reports that no config file existed and defaults were written.
	Created bool   `toml:"-"`
}

// Paths holds the on-disk locations devnote works with.
type Paths struct {
	Dir      string
	Config   string
	Database string
	Selected string
}

// Dir returns the devnote home directory: $DEVNOTE_HOME, else ~/.config/devnote.
func Dir() (string, error) {
	if dir := os.Getenv("DEVNOTE_HOME"); dir != "" {
		return expandEnv(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "devnote"), nil
}

// Load reads config.toml from the devnote home directory, creating it with
// defaults when it does not exist yet.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit home directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{Dir: dir}

	configPath := filepath.Join(dir, FileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefault(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		cfg.Created = true
	} else if err != nil {
		return nil, err
	} else {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.EditApp = expandEnv(cfg.EditApp)
	cfg.Database = expandEnv(cfg.Database)

	// Environment variables override the config file
	if editApp := os.Getenv("DEVNOTE_EDIT_APP"); editApp != "" {
		cfg.EditApp = expandEnv(editApp)
	}
	if includeTime := os.Getenv("DEVNOTE_INCLUDE_TIME"); includeTime != "" {
		cfg.IncludeTime = includeTime == "true" || includeTime == "1"
	}

	cfg.initializeColors()

	return cfg, nil
}

func writeDefault(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(Config{})
}

// Paths resolves the database and marker file locations. A relative
// database path is taken relative to the home directory.
func (c *Config) Paths() Paths {
	db := c.Database
	if db == "" {
		db = DatabaseFileName
	}
	if !filepath.IsAbs(db) {
		db = filepath.Join(c.Dir, db)
	}
	return Paths{
		Dir:      c.Dir,
		Config:   filepath.Join(c.Dir, FileName),
		Database: db,
		Selected: filepath.Join(c.Dir, SelectedFileName),
	}
}

func expandEnv(s string) string {
	if s == "" {
		return s
	}
	if strings.HasPrefix(s, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			s = filepath.Join(home, s[2:])
		}
	}
	if strings.Contains(s, "$HOME") {
		home, _ := os.UserHomeDir()
		s = strings.ReplaceAll(s, "$HOME", home)
	}
	return os.ExpandEnv(s)
}

// initializeColors fills unset colors from the light or dark palette.
// Colors can be overridden in the config file [colors] section
func (c *Config) initializeColors() {
	colorMode := c.ColorMode
	if colorMode == "" {
		colorMode = os.Getenv("DEVNOTE_COLOR_MODE")
	}

	lightMode := ColorScheme{
		ProjectColor: "4", // Blue
		GUIDColor:    "5", // Magenta
		DateColor:    "4", // Blue
		HeaderColor:  "0", // Black
		EmptyColor:   "8", // Bright black (faded)
	}

	darkMode := ColorScheme{
		ProjectColor: "2",  // Green
		GUIDColor:    "3",  // Yellow
		DateColor:    "6",  // Cyan
		HeaderColor:  "15", // White
		EmptyColor:   "8",  // Bright black (faded)
	}

	var defaults ColorScheme
	switch strings.ToLower(colorMode) {
	case "light":
		defaults = lightMode
	default:
		defaults = darkMode
	}

	if c.Colors.ProjectColor == "" {
		c.Colors.ProjectColor = defaults.ProjectColor
	}
	if c.Colors.GUIDColor == "" {
		c.Colors.GUIDColor = defaults.GUIDColor
	}
	if c.Colors.DateColor == "" {
		c.Colors.DateColor = defaults.DateColor
	}
	if c.Colors.HeaderColor == "" {
		c.Colors.HeaderColor = defaults.HeaderColor
	}
	if c.Colors.EmptyColor == "" {
		c.Colors.EmptyColor = defaults.EmptyColor
	}

	c.Colors.ProjectColor = resolveColorValue(c.Colors.ProjectColor)
	c.Colors.GUIDColor = resolveColorValue(c.Colors.GUIDColor)
	c.Colors.DateColor = resolveColorValue(c.Colors.DateColor)
	c.Colors.HeaderColor = resolveColorValue(c.Colors.HeaderColor)
	c.Colors.EmptyColor = resolveColorValue(c.Colors.EmptyColor)
}
