package ptybridge

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// pumpOutput copies the master to the real output. It ends when the master
// reports end of file, or when the child is gone and nothing is left to
// drain.
func (b *Bridge) pumpOutput(s *Session) error {
	buf := make([]byte, b.cfg.BufferSize)
	outFd := b.term.OutFd()

	for {
		ready, err := b.wait(s.masterFd, b.cfg.PollInterval)
		if err != nil {
			return fmt.Errorf("poll pty: %w", err)
		}
		if !ready {
			if s.child.Alive() {
				continue
			}
			return b.drain(s, buf)
		}

		done, err := b.copyOnce(s.masterFd, outFd, buf)
		if done || err != nil {
			return err
		}
	}
}

// drain copies whatever the master still holds once the child has exited.
func (b *Bridge) drain(s *Session, buf []byte) error {
	for {
		ready, err := b.wait(s.masterFd, 0)
		if err != nil || !ready {
			return err
		}
		done, err := b.copyOnce(s.masterFd, b.term.OutFd(), buf)
		if done || err != nil {
			return err
		}
	}
}

// copyOnce moves one read from the master to out. done is set at end of
// file; Linux reports a master whose slave is closed with EIO.
func (b *Bridge) copyOnce(masterFd, outFd int, buf []byte) (done bool, err error) {
	n, err := unix.Read(masterFd, buf)
	switch {
	case n > 0:
		if err := b.writeAll(outFd, buf[:n]); err != nil {
			return true, fmt.Errorf("write output: %w", err)
		}
		return false, nil
	case err == nil, errors.Is(err, unix.EIO):
		return true, nil
	case retryable(err):
		return false, nil
	default:
		return true, fmt.Errorf("read pty: %w", err)
	}
}

// pumpInput forwards the real input to the master while the child lives.
// A failed write to the master means the child is gone and ends the pump
// quietly.
func (b *Bridge) pumpInput(s *Session, log *zap.Logger) error {
	buf := make([]byte, b.cfg.BufferSize)
	inFd := b.term.InFd()

	for s.child.Alive() {
		ready, err := b.wait(inFd, b.cfg.PollInterval)
		if err != nil {
			return fmt.Errorf("poll input: %w", err)
		}
		if !ready {
			continue
		}

		n, err := unix.Read(inFd, buf)
		if n > 0 {
			if werr := b.writeAll(s.masterFd, buf[:n]); werr != nil {
				log.Debug("Input pump stopped", zap.Error(werr))
				return nil
			}
			continue
		}
		if err != nil && !retryable(err) {
			return fmt.Errorf("read input: %w", err)
		}
		// End of input or a spurious wakeup; the descriptor stays readable,
		// so back off instead of spinning.
		time.Sleep(b.cfg.PollInterval)
	}
	return nil
}

// forwardTypeahead writes the input buffered ahead of the child to the
// master, so keystrokes typed before the spawn reach the child first.
func (b *Bridge) forwardTypeahead(s *Session) error {
	if b.typeahead == nil {
		return nil
	}
	p := b.typeahead.Pending()
	if len(p) == 0 {
		return nil
	}
	return b.writeAll(s.masterFd, p)
}

// writeAll writes p to fd, retrying after the poll interval while the
// descriptor would block.
func (b *Bridge) writeAll(fd int, p []byte) error {
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if n > 0 {
			p = p[n:]
		}
		if err == nil {
			continue
		}
		if !retryable(err) {
			return err
		}
		if !errors.Is(err, unix.EINTR) {
			time.Sleep(b.cfg.PollInterval)
		}
	}
	return nil
}

// wait polls fd for input for at most timeout. Hangups and errors count as
// ready so the following read reports them.
func (b *Bridge) wait(fd int, timeout time.Duration) (bool, error) {
	ms := int(timeout / time.Millisecond)
	if timeout > 0 && ms == 0 {
		ms = 1
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	switch {
	case errors.Is(err, unix.EINTR):
		return false, nil
	case err != nil:
		return false, err
	}
	return n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0, nil
}

func retryable(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}
