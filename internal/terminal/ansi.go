package terminal

// Escape sequences written by the line editor. Output goes to a terminal in
// raw mode, so line breaks must carry their own carriage return.
const (
	CRLF        = "\r\n"
	ClearScreen = "\033[2J"
	ClearLine   = "\033[2K"
	CursorHome  = "\033[H"
	// EraseBack moves left one cell, blanks it and moves left again.
	EraseBack = "\b \b"
)
