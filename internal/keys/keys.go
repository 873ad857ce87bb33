// Package keys decodes a raw-mode terminal byte stream into key events.
package keys

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

// Kind tags a key Event.
type Kind int

const (
	Other Kind = iota
	Char
	Enter
	Backspace
	Cancel
	Redraw
	Tab
)

func (k Kind) String() string {
	switch k {
	case Char:
		return "char"
	case Enter:
		return "enter"
	case Backspace:
		return "backspace"
	case Cancel:
		return "cancel"
	case Redraw:
		return "redraw"
	case Tab:
		return "tab"
	default:
		return "other"
	}
}

// Event is one decoded key. Rune is set only for Char.
type Event struct {
	Kind Kind
	Rune rune
}

// Source yields key events one at a time. Next returns io.EOF when input is
// exhausted.
type Source interface {
	Next() (Event, error)
}

// Decoder is a Source reading from a byte stream.
type Decoder struct {
	br        *bufio.Reader
	lastWasCR bool
}

// NewDecoder returns a Decoder reading r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{br: bufio.NewReader(r)}
}

// Next decodes the next key event.
func (d *Decoder) Next() (Event, error) {
	for {
		b, err := d.br.ReadByte()
		if err != nil {
			return Event{}, err
		}
		if d.lastWasCR {
			d.lastWasCR = false
			if b == '\n' {
				continue
			}
		}

		switch b {
		case 0x1b:
			if err := d.skipEscape(); err != nil {
				return Event{}, err
			}
			return Event{Kind: Other}, nil
		case '\r':
			d.lastWasCR = true
			return Event{Kind: Enter}, nil
		case '\n':
			return Event{Kind: Enter}, nil
		case 0x7f, 0x08:
			return Event{Kind: Backspace}, nil
		case 0x03:
			return Event{Kind: Cancel}, nil
		case 0x0c:
			return Event{Kind: Redraw}, nil
		case 0x09:
			return Event{Kind: Tab}, nil
		}

		if b < utf8.RuneSelf {
			if b < 0x20 {
				return Event{Kind: Other}, nil
			}
			return Event{Kind: Char, Rune: rune(b)}, nil
		}

		_ = d.br.UnreadByte()
		r, _, err := d.br.ReadRune()
		if err != nil {
			return Event{}, err
		}
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			return Event{Kind: Other}, nil
		}
		return Event{Kind: Char, Rune: r}, nil
	}
}

// Pending removes and returns the bytes already read from the input but not
// yet decoded. The line feed of a CRLF whose CR was decoded is dropped.
func (d *Decoder) Pending() []byte {
	n := d.br.Buffered()
	if n == 0 {
		return nil
	}
	buffered, _ := d.br.Peek(n)
	p := append([]byte(nil), buffered...)
	_, _ = d.br.Discard(n)

	if d.lastWasCR && p[0] == '\n' {
		p = p[1:]
	}
	d.lastWasCR = false
	return p
}

// skipEscape consumes the rest of an escape sequence. A lone ESC at the end
// of the buffered input is treated as complete.
func (d *Decoder) skipEscape() error {
	if d.br.Buffered() == 0 {
		return nil
	}
	b, err := d.br.ReadByte()
	if err != nil {
		return err
	}
	switch b {
	case '[':
		for i := 0; i < 16; i++ {
			b, err := d.br.ReadByte()
			if err != nil {
				return err
			}
			// CSI final bytes are in 0x40-0x7e
			if b >= 0x40 && b <= 0x7e {
				return nil
			}
		}
	case 'O':
		_, err := d.br.ReadByte()
		return err
	}
	return nil
}
