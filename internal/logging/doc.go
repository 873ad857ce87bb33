// Package logging provides structured logging using uber/zap.
//
// The shell owns the controlling terminal, so logging is file-only: with no
// output path the logger is a no-op.
//
// Two encodings are available:
//   - Production: JSON lines for machine parsing
//   - Development: console lines for human reading
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig("/tmp/ptysh.log"))
//	if err != nil {
//		return err
//	}
//	defer logger.Sync()
//	logger.Component("ptybridge").Info("child started", zap.Int("pid", pid))
package logging
