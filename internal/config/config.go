// internal/config/config.go
//
// This package handles configuration and the .examreview directory structure.
// Every project reviewed with examreview gets a .examreview/ folder in its root
// holding config.yaml and the logs.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/exam-review/internal/records"
)

const (
	// ReviewDir is the name of the directory we create in each project
	ReviewDir = ".examreview"

	defaultQuestionsFile = "new_exam_output.json"
	defaultResultsFile   = "check_exam_output.json"
	defaultErrorLogFile  = "error_exam_output.json"
)

// Theme names a color palette for the terminal UI.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

const defaultProjectConfigYAML = `# examreview project configuration
version: 1

# Collection files, relative to the project directory.
files:
  questions: new_exam_output.json
  results: check_exam_output.json
  error_log: error_exam_output.json

# Terminal UI palette: light or dark.
theme: light

log:
  level: info
  max_size_mb: 10
  max_backups: 3
`

// FilesConfig names the three collection files.
type FilesConfig struct {
	Questions string `yaml:"questions"`
	Results   string `yaml:"results"`
	ErrorLog  string `yaml:"error_log"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// ProjectConfig models .examreview/config.yaml.
type ProjectConfig struct {
	Version int         `yaml:"version"`
	Files   FilesConfig `yaml:"files"`
	Theme   Theme       `yaml:"theme"`
	Log     LogConfig   `yaml:"log"`
}

// Config holds the runtime configuration for examreview.
type Config struct {
	// ProjectDir is the directory holding the collection files
	ProjectDir string

	// ReviewProjectDir is ProjectDir/.examreview
	ReviewProjectDir string

	Project ProjectConfig
}

// InitReviewDir creates the .examreview directory structure in the given
// project directory.
//
// Structure created:
// .examreview/
// ├── config.yaml
// └── logs/         <- diagnostics and the operator journal
func InitReviewDir(projectDir string) error {
	reviewDir := filepath.Join(projectDir, ReviewDir)
	if err := os.MkdirAll(filepath.Join(reviewDir, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(reviewDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:       abs,
		ReviewProjectDir: filepath.Join(abs, ReviewDir),
		Project:          defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ReviewProjectDir, "logs")
}

// DiagnosticLogPath returns the zap log file.
func (c *Config) DiagnosticLogPath() string {
	return filepath.Join(c.LogsDir(), "examreview.log")
}

// JournalPath returns the operator journal file.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "journal.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ReviewProjectDir, "config.yaml")
}

// Paths returns the absolute collection file paths.
func (c *Config) Paths() records.Paths {
	return records.Paths{
		Questions: resolvePath(c.ProjectDir, c.Project.Files.Questions),
		Results:   resolvePath(c.ProjectDir, c.Project.Files.Results),
		ErrorLog:  resolvePath(c.ProjectDir, c.Project.Files.ErrorLog),
	}
}

// Theme returns the configured palette.
func (c *Config) Theme() Theme {
	return c.Project.Theme
}

// SetTheme updates the palette and persists it to .examreview/config.yaml.
func (c *Config) SetTheme(theme Theme) error {
	prev := c.Project.Theme
	c.Project.Theme = theme
	if err := c.saveProjectConfig(); err != nil {
		c.Project.Theme = prev
		return err
	}
	return nil
}

// LogLevel returns the parsed diagnostic level.
func (c *Config) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Project.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	pc := ProjectConfig{}
	pc.applyDefaults()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Files.Questions) == "" {
		pc.Files.Questions = defaultQuestionsFile
	}
	if strings.TrimSpace(pc.Files.Results) == "" {
		pc.Files.Results = defaultResultsFile
	}
	if strings.TrimSpace(pc.Files.ErrorLog) == "" {
		pc.Files.ErrorLog = defaultErrorLogFile
	}
	if pc.Theme == "" {
		pc.Theme = ThemeLight
	}
	if pc.Log.Level == "" {
		pc.Log.Level = "info"
	}
	if pc.Log.MaxSizeMB == 0 {
		pc.Log.MaxSizeMB = 10
	}
	if pc.Log.MaxBackups == 0 {
		pc.Log.MaxBackups = 3
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Files.Questions = strings.TrimSpace(pc.Files.Questions)
	pc.Files.Results = strings.TrimSpace(pc.Files.Results)
	pc.Files.ErrorLog = strings.TrimSpace(pc.Files.ErrorLog)
	pc.Theme = Theme(strings.ToLower(strings.TrimSpace(string(pc.Theme))))
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("theme must be 'light' or 'dark'")
	}
	if _, err := zapcore.ParseLevel(pc.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if pc.Log.MaxSizeMB < 0 || pc.Log.MaxBackups < 0 {
		return fmt.Errorf("log sizes must not be negative")
	}
	seen := map[string]string{}
	for name, file := range map[string]string{
		"files.questions": pc.Files.Questions,
		"files.results":   pc.Files.Results,
		"files.error_log": pc.Files.ErrorLog,
	} {
		key := filepath.Clean(file)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s point at the same file", other, name)
		}
		seen[key] = name
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// ResolvePath resolves a command-line override against the project dir.
func (c *Config) ResolvePath(candidate string) string {
	return resolvePath(c.ProjectDir, candidate)
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ReviewProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure review dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
