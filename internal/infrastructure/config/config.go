package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all shell configuration.
type Config struct {
	Shell      ShellConfig      `toml:"shell" yaml:"shell"`
	Completion CompletionConfig `toml:"completion" yaml:"completion"`
	Bridge     BridgeConfig     `toml:"bridge" yaml:"bridge"`
	Logging    LogConfig        `toml:"logging" yaml:"logging"`
}

// ShellConfig holds line editor settings.
type ShellConfig struct {
	Prompt    string   `envconfig:"PTYSH_PROMPT" toml:"prompt" yaml:"prompt"`
	QuitWords []string `envconfig:"PTYSH_QUIT_WORDS" toml:"quit_words" yaml:"quit_words"`
}

// CompletionConfig holds completion listing settings.
type CompletionConfig struct {
	ColumnPadding int `envconfig:"PTYSH_COLUMN_PADDING" toml:"column_padding" yaml:"column_padding"`
	DefaultWidth  int `envconfig:"PTYSH_DEFAULT_WIDTH" toml:"default_width" yaml:"default_width"`
}

// BridgeConfig holds PTY process bridge settings.
type BridgeConfig struct {
	BufferSize   int           `envconfig:"PTYSH_BUFFER_SIZE" toml:"buffer_size" yaml:"buffer_size"`
	PollInterval time.Duration `envconfig:"PTYSH_POLL_INTERVAL" toml:"poll_interval" yaml:"poll_interval"`
	Term         string        `envconfig:"PTYSH_TERM" toml:"term" yaml:"term"`
	DefaultRows  int           `envconfig:"PTYSH_DEFAULT_ROWS" toml:"default_rows" yaml:"default_rows"`
	DefaultCols  int           `envconfig:"PTYSH_DEFAULT_COLS" toml:"default_cols" yaml:"default_cols"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" toml:"level" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" toml:"development" yaml:"development"`
	File        string `envconfig:"LOG_FILE" toml:"file" yaml:"file"`
}

// Load loads configuration from defaults, the optional file named by
// PTYSH_CONFIG and environment variables, in that order of precedence.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("PTYSH_CONFIG"))
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			Prompt:    "? ",
			QuitWords: []string{"q", "exit", "quit"},
		},
		Completion: CompletionConfig{
			ColumnPadding: 2,
			DefaultWidth:  80,
		},
		Bridge: BridgeConfig{
			BufferSize:   4096,
			PollInterval: 10 * time.Millisecond,
			Term:         "xterm-256color",
			DefaultRows:  24,
			DefaultCols:  80,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// Validate rejects values the shell cannot run with.
func (c *Config) Validate() error {
	if c.Bridge.BufferSize <= 0 {
		return fmt.Errorf("invalid config: buffer size must be positive, got %d", c.Bridge.BufferSize)
	}
	if c.Bridge.PollInterval <= 0 {
		return fmt.Errorf("invalid config: poll interval must be positive, got %s", c.Bridge.PollInterval)
	}
	if c.Completion.ColumnPadding < 0 {
		return fmt.Errorf("invalid config: column padding must not be negative, got %d", c.Completion.ColumnPadding)
	}
	if c.Bridge.DefaultRows <= 0 || c.Bridge.DefaultCols <= 0 {
		return fmt.Errorf("invalid config: default geometry must be positive, got %dx%d",
			c.Bridge.DefaultCols, c.Bridge.DefaultRows)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var file fileConfig
		if err := toml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return file.apply(cfg)
	case ".yaml", ".yml":
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return file.apply(cfg)
	default:
		return fmt.Errorf("unsupported config file extension %q", ext)
	}
}

// fileConfig mirrors Config with optional fields so a file only overrides
// the keys it actually sets.
type fileConfig struct {
	Shell struct {
		Prompt    *string  `toml:"prompt" yaml:"prompt"`
		QuitWords []string `toml:"quit_words" yaml:"quit_words"`
	} `toml:"shell" yaml:"shell"`
	Completion struct {
		ColumnPadding *int `toml:"column_padding" yaml:"column_padding"`
		DefaultWidth  *int `toml:"default_width" yaml:"default_width"`
	} `toml:"completion" yaml:"completion"`
	Bridge struct {
		BufferSize   *int    `toml:"buffer_size" yaml:"buffer_size"`
		PollInterval *string `toml:"poll_interval" yaml:"poll_interval"`
		Term         *string `toml:"term" yaml:"term"`
		DefaultRows  *int    `toml:"default_rows" yaml:"default_rows"`
		DefaultCols  *int    `toml:"default_cols" yaml:"default_cols"`
	} `toml:"bridge" yaml:"bridge"`
	Logging struct {
		Level       *string `toml:"level" yaml:"level"`
		Development *bool   `toml:"development" yaml:"development"`
		File        *string `toml:"file" yaml:"file"`
	} `toml:"logging" yaml:"logging"`
}

func (f *fileConfig) apply(cfg *Config) error {
	setString(&cfg.Shell.Prompt, f.Shell.Prompt)
	if len(f.Shell.QuitWords) > 0 {
		cfg.Shell.QuitWords = f.Shell.QuitWords
	}
	setInt(&cfg.Completion.ColumnPadding, f.Completion.ColumnPadding)
	setInt(&cfg.Completion.DefaultWidth, f.Completion.DefaultWidth)
	setInt(&cfg.Bridge.BufferSize, f.Bridge.BufferSize)
	if f.Bridge.PollInterval != nil {
		d, err := time.ParseDuration(*f.Bridge.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
		cfg.Bridge.PollInterval = d
	}
	setString(&cfg.Bridge.Term, f.Bridge.Term)
	setInt(&cfg.Bridge.DefaultRows, f.Bridge.DefaultRows)
	setInt(&cfg.Bridge.DefaultCols, f.Bridge.DefaultCols)
	setString(&cfg.Logging.Level, f.Logging.Level)
	if f.Logging.Development != nil {
		cfg.Logging.Development = *f.Logging.Development
	}
	setString(&cfg.Logging.File, f.Logging.File)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
