// Package keys implements the keystroke decoder: a state machine that
// turns raw bytes and ANSI CSI escape sequences into editing intents.
package keys

import "io"

// Intent is a tagged editing action decoded from one or more input
// bytes.
type Intent int

const (
	Ignored Intent = iota
	Printable
	Enter
	Tab
	Backspace
	Delete
	DeleteWord
	DeleteToStart
	Home
	End
	Left
	Right
	LeftWord
	RightWord
	Up
	Down
	PageUp
	PageDown
	Interrupt
	ReverseSearch
	Insert
	Continuation
	EndOfInput
)

// Event pairs an Intent with its payload byte, valid only when the
// Intent is Printable.
type Event struct {
	Intent Intent
	Byte   byte
}

// PeekReader is a byte source that supports pushing a byte back, so a
// caller that peeks ahead (to check for an abort keystroke, say) can
// return an unrelated byte to the stream for the decoder to see next.
type PeekReader struct {
	r      io.Reader
	pushed []byte
}

// NewPeekReader wraps r with a small pushback ring.
func NewPeekReader(r io.Reader) *PeekReader {
	return &PeekReader{r: r}
}

// ReadByte reads one byte, preferring any pushed-back bytes first.
func (p *PeekReader) ReadByte() (byte, error) {
	if len(p.pushed) > 0 {
		b := p.pushed[0]
		p.pushed = p.pushed[1:]
		return b, nil
	}
	var buf [1]byte
	_, err := p.r.Read(buf[:])
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Unread pushes a byte back to be returned by the next ReadByte.
func (p *PeekReader) Unread(b byte) {
	p.pushed = append([]byte{b}, p.pushed...)
}

// Decoder turns bytes from a PeekReader into Events.
type Decoder struct {
	r *PeekReader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r *PeekReader) *Decoder {
	return &Decoder{r: r}
}

// Read decodes the next keystroke, blocking on at most one underlying
// read call chain per escape sequence.
func (d *Decoder) Read() (Event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Event{Intent: EndOfInput}, nil
		}
		return Event{}, err
	}

	switch b {
	case 0x03:
		return Event{Intent: Interrupt}, nil
	case 0x12:
		return Event{Intent: ReverseSearch}, nil
	case 0x15:
		return Event{Intent: DeleteToStart}, nil
	case 0x7F:
		return Event{Intent: Backspace}, nil
	case 0x0A, 0x0D:
		return Event{Intent: Enter}, nil
	case 0x09:
		return Event{Intent: Tab}, nil
	case 0x1B:
		return d.readEscape()
	}

	if b < 0x20 {
		return Event{Intent: Ignored, Byte: b}, nil
	}
	return Event{Intent: Printable, Byte: b}, nil
}

func (d *Decoder) readEscape() (Event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Event{Intent: EndOfInput}, nil
		}
		return Event{}, err
	}

	if b == 0x7F {
		return Event{Intent: DeleteWord}, nil
	}
	if b != '[' {
		return Event{Intent: Ignored}, nil
	}
	return d.readCSI()
}

func (d *Decoder) readCSI() (Event, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			return Event{Intent: EndOfInput}, nil
		}
		return Event{}, err
	}

	switch b {
	case 'A':
		return Event{Intent: Up}, nil
	case 'B':
		return Event{Intent: Down}, nil
	case 'C':
		return Event{Intent: Right}, nil
	case 'D':
		return Event{Intent: Left}, nil
	case 'H':
		return Event{Intent: Home}, nil
	case 'F':
		return Event{Intent: End}, nil
	}

	if b < '0' || b > '9' {
		return Event{Intent: Ignored}, nil
	}

	// Collect a numeric parameter, then an optional ";<modifier>", then
	// the final byte ('~' or a letter).
	param := []byte{b}
	for {
		nb, err := d.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				return Event{Intent: EndOfInput}, nil
			}
			return Event{}, err
		}
		if nb >= '0' && nb <= '9' {
			param = append(param, nb)
			continue
		}
		if nb == ';' {
			mod, err := d.readParam()
			if err != nil {
				if err == io.EOF {
					return Event{Intent: EndOfInput}, nil
				}
				return Event{}, err
			}
			final, err := d.r.ReadByte()
			if err != nil {
				if err == io.EOF {
					return Event{Intent: EndOfInput}, nil
				}
				return Event{}, err
			}
			if mod == "5" {
				switch final {
				case 'C':
					return Event{Intent: RightWord}, nil
				case 'D':
					return Event{Intent: LeftWord}, nil
				}
			}
			return Event{Intent: Ignored}, nil
		}
		if nb == '~' {
			switch string(param) {
			case "1":
				return Event{Intent: Home}, nil
			case "2":
				return Event{Intent: Insert}, nil
			case "3":
				return Event{Intent: Delete}, nil
			case "4":
				return Event{Intent: End}, nil
			case "5":
				return Event{Intent: PageUp}, nil
			case "6":
				return Event{Intent: PageDown}, nil
			}
			return Event{Intent: Ignored}, nil
		}
		return Event{Intent: Ignored}, nil
	}
}

func (d *Decoder) readParam() (string, error) {
	var out []byte
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b < '0' || b > '9' {
			d.r.Unread(b)
			return string(out), nil
		}
		out = append(out, b)
	}
}
