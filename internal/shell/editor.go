package shell

import (
	"errors"
	"io"
	"strings"

	"github.com/GriffinCanCode/ptysh/internal/keys"
	"github.com/GriffinCanCode/ptysh/internal/terminal"
)

// readLine runs one input cycle in raw mode and returns the committed line,
// trimmed and non-empty. Raw mode is released before it returns.
func (s *Shell) readLine() (line string, err error) {
	raw, err := s.screen.EnterRaw()
	if err != nil {
		return "", err
	}
	defer func() {
		if rerr := raw.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	s.buf = s.buf[:0]
	s.drawPrompt()

	for {
		ev, err := s.keys.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.write(terminal.CRLF)
			}
			return "", err
		}

		switch ev.Kind {
		case keys.Char:
			s.buf = append(s.buf, ev.Rune)
			s.write(string(ev.Rune))
		case keys.Backspace:
			if len(s.buf) > 0 {
				s.buf = s.buf[:len(s.buf)-1]
				s.write(terminal.EraseBack)
			}
		case keys.Enter:
			s.write(terminal.CRLF)
			if line := strings.TrimSpace(string(s.buf)); line != "" {
				return line, nil
			}
			s.buf = s.buf[:0]
			s.drawPrompt()
		case keys.Cancel:
			s.write("^C" + terminal.CRLF)
			s.buf = s.buf[:0]
			s.drawPrompt()
		case keys.Redraw:
			s.write(terminal.ClearScreen + terminal.CursorHome)
			s.drawLine()
		case keys.Tab:
			s.complete()
		}
	}
}

// complete replaces the buffer with the completer's result. A listing is
// printed below the line and the prompt line is drawn again under it.
func (s *Shell) complete() {
	res := s.completer.Complete(string(s.buf), len(s.buf))
	s.buf = append(s.buf[:0], []rune(res.Line)...)

	if len(res.Listing) > 0 {
		s.write(terminal.CRLF)
		s.write(s.completer.Format(res.Listing, s.screen.Width(s.width)))
	} else {
		s.write("\r" + terminal.ClearLine)
	}
	s.drawLine()
}

func (s *Shell) drawPrompt() {
	s.write(s.promptText())
}

func (s *Shell) drawLine() {
	s.write(s.promptText() + string(s.buf))
}

func (s *Shell) write(str string) {
	_, _ = io.WriteString(s.out, str)
}
