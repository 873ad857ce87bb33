// Package ptybridge runs an external program on a pseudo-terminal and
// bridges it to the real terminal.
//
// One Run call owns one child:
//   - the real input is switched to raw, non-blocking mode
//   - a PTY sized to the real terminal is allocated and the child is spawned
//     on its slave side, in the shell's working directory
//   - an output pump copies master -> real output and an input pump copies
//     real input -> master until the child exits
//   - the child is reaped and the terminal is restored
//
// Both pumps wait with poll(2) bounded by the configured interval, so
// neither blocks indefinitely on its own descriptor. The input pump's
// liveness check decides when the child is gone.
//
// Only allocation and spawn failures are returned (wrapping ErrFatal).
// Pump I/O errors and nonzero exit statuses are logged.
package ptybridge
