// Package config provides 12-factor configuration management for ptysh.
//
// Configuration is layered: built-in defaults, then an optional TOML or YAML
// file, then environment variables. CLI flags in cmd/ptysh override the
// logging section after loading.
//
// Configuration Sections:
//   - Shell: prompt suffix and quit keywords
//   - Completion: listing column padding and fallback width
//   - Bridge: PTY pump buffer size, poll interval, TERM and fallback geometry
//   - Logging: log level, output format and log file
//
// Example Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	fmt.Printf("prompt %q, poll every %s\n", cfg.Shell.Prompt, cfg.Bridge.PollInterval)
//
// Environment Variables:
//   - PTYSH_CONFIG, PTYSH_PROMPT, PTYSH_QUIT_WORDS
//   - PTYSH_COLUMN_PADDING, PTYSH_DEFAULT_WIDTH
//   - PTYSH_BUFFER_SIZE, PTYSH_POLL_INTERVAL, PTYSH_TERM
//   - PTYSH_DEFAULT_ROWS, PTYSH_DEFAULT_COLS
//   - LOG_LEVEL, LOG_DEV, LOG_FILE
package config
