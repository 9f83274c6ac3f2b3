package terminal

import (
	"fmt"
	"io"

	"github.com/rostedt/ccli/keys"
)

// Surface writes to the output endpoint: raw echoes, prompt/line
// repainting, and paginated output.
type Surface struct {
	w      io.Writer
	prompt string
}

// NewSurface wraps an output endpoint with the given prompt text.
func NewSurface(w io.Writer, prompt string) *Surface {
	return &Surface{w: w, prompt: prompt}
}

// SetPrompt replaces the prompt text.
func (s *Surface) SetPrompt(p string) {
	s.prompt = p
}

// Prompt returns the current prompt text.
func (s *Surface) Prompt() string {
	return s.prompt
}

// Echo writes one byte. Write errors are silently discarded; a broken
// display should not turn into an error loop.
func (s *Surface) Echo(b byte) {
	s.w.Write([]byte{b})
}

// EchoStr writes a string.
func (s *Surface) EchoStr(str string) {
	io.WriteString(s.w, str)
}

// EchoLen writes n copies of b.
func (s *Surface) EchoLen(b byte, n int) {
	if n <= 0 {
		return
	}
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = b
	}
	s.w.Write(buf)
}

// EchoPrompt writes the active prompt, or the continuation prompt "> "
// if continuing is true.
func (s *Surface) EchoPrompt(continuing bool) {
	if continuing {
		s.EchoStr("> ")
		return
	}
	s.EchoStr(s.prompt)
}

// Printf writes a formatted string.
func (s *Surface) Printf(format string, args ...any) {
	fmt.Fprintf(s.w, format, args...)
}

// ClearLine emits a carriage return followed by len(prompt)+lineLen
// spaces, erasing the current visible line.
func (s *Surface) ClearLine(lineLen int) {
	s.Echo('\r')
	s.EchoLen(' ', len(s.prompt)+lineLen)
}

// Refresh repaints the prompt (or continuation prompt) and the visible
// slice [start,len) of the line, pads with trailing spaces to erase any
// leftover tail from a longer previous frame, then backs the cursor up
// to pos. pad below 2 is raised to 2, enough to clear a single erased
// character.
func (s *Surface) Refresh(line string, start, pos, length int, continuing bool, pad int) {
	if pad < 2 {
		pad = 2
	}
	s.Echo('\r')
	s.EchoPrompt(continuing)
	s.EchoStr(line[start:length])
	s.EchoLen(' ', pad)
	s.EchoLen('\b', pad)
	for i := length; i > pos; i-- {
		s.Echo('\b')
	}
}

// PageStop prints the paging prompt, reads and returns one byte from r
// (q = abort, c = continue without paging, anything else = another
// screen), then emits a newline. r is the same PeekReader the event
// loop decodes keystrokes from, so a byte typed during a pause is never
// stranded in a second buffer.
func (s *Surface) PageStop(r *keys.PeekReader) (byte, error) {
	s.EchoStr("--Type <RET> for more, q to quit, c to continue without paging--")
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.Echo('\n')
	return b, nil
}

// PageWriter drives paginated output through PageStop every `rows`
// lines written.
type PageWriter struct {
	s        *Surface
	in       *keys.PeekReader
	rows     int
	lineNo   int
	aborted  bool
	noPaging bool
}

// NewPageWriter returns a PageWriter that pauses every rows lines
// (rows <= 0 disables pagination).
func NewPageWriter(s *Surface, in *keys.PeekReader, rows int) *PageWriter {
	return &PageWriter{s: s, in: in, rows: rows, noPaging: rows <= 0}
}

// Printf writes a formatted line, invoking the page-stop prompt when the
// configured row count is reached. Returns false once the user has
// aborted paging (q), signalling the caller to stop producing output.
func (p *PageWriter) Printf(format string, args ...any) bool {
	if p.aborted {
		return false
	}
	p.s.Printf(format, args...)
	p.lineNo++
	if p.noPaging || p.in == nil || p.lineNo < p.rows {
		return true
	}
	p.lineNo = 0
	b, err := p.s.PageStop(p.in)
	if err != nil {
		p.aborted = true
		return false
	}
	switch b {
	case 'q':
		p.aborted = true
		return false
	case 'c':
		p.noPaging = true
	}
	return true
}

// Lines returns how many lines have been printed since the last
// page-stop.
func (p *PageWriter) Lines() int {
	return p.lineNo
}
