// Package main is the entry point for ptysh, an interactive shell that runs
// external programs on a pseudo-terminal.
//
// The shell reads keys in raw mode, completes command names from PATH and
// paths from the filesystem on Tab, runs the cd and pwd built-ins itself
// and bridges every other command through a PTY sized to the terminal.
//
// Configuration:
//   - Defaults
//   - Optional TOML or YAML file (--config or PTYSH_CONFIG)
//   - Environment variables (PTYSH_*, LOG_*)
//   - CLI flags for logging only
//
// Usage:
//
//	# Interactive shell
//	./ptysh
//
//	# Debug logging to a file
//	./ptysh --dev --log-file /tmp/ptysh.log
//
// The shell exits on end of input (Ctrl-D) or on one of the quit words
// (q, exit, quit).
package main
