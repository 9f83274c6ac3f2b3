package ccli

import (
	"github.com/rostedt/ccli/buffer"
	"github.com/rostedt/ccli/complete"
	"github.com/rostedt/ccli/history"
	"github.com/rostedt/ccli/keys"
	"github.com/rostedt/ccli/registry"
	"github.com/rostedt/ccli/terminal"
	"github.com/rostedt/ccli/token"
)

// Run paints the prompt and drives the event loop: read a keystroke via
// the decoder, mutate the buffer or delegate to history, completion, or
// dispatch, then repaint. Returns when the input endpoint reaches
// end-of-input or a callback/hook returns a loop-terminating value.
func (e *Editor) Run() error {
	defer e.Close()
	e.surface.EchoPrompt(false)

	for {
		ev, err := e.dec.Read()
		if err != nil {
			return &Error{Kind: Io, Op: "Run", Err: err}
		}
		if ev.Intent != keys.Tab {
			e.tabCount = 0
		}
		if ev.Intent == keys.Enter && e.buf.IsLastByteEscape() {
			ev = keys.Event{Intent: keys.Continuation}
			e.surface.EchoStr("\n> ")
		}

		done, err := e.dispatchIntent(ev)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatchIntent applies one decoded intent to the buffer/history/
// completion/dispatch engines and repaints. It is also used to
// re-dispatch the keystroke that ended a reverse search.
func (e *Editor) dispatchIntent(ev keys.Event) (terminate bool, err error) {
	switch ev.Intent {
	case keys.EndOfInput:
		return true, nil

	case keys.Enter:
		return e.handleEnter()

	case keys.Tab:
		e.handleTab()

	case keys.Interrupt:
		return e.handleInterrupt()

	case keys.ReverseSearch:
		return e.handleReverseSearch()

	case keys.Backspace:
		if e.buf.Backspace() {
			e.refresh(0)
		}

	case keys.Delete:
		if e.buf.Delete() {
			e.refresh(0)
		}

	case keys.DeleteWord:
		n := e.buf.DeleteWord()
		e.refresh(n)

	case keys.DeleteToStart:
		n := e.buf.DeleteToStart()
		e.refresh(n)

	case keys.Up, keys.PageUp:
		if line, ok := e.hist.Up(e.buf.Text()); ok {
			e.recallLine(line)
		}

	case keys.Down, keys.PageDown:
		if line, ok := e.hist.Down(e.buf.Text()); ok {
			e.recallLine(line)
		}

	case keys.Left:
		e.buf.Left()
		e.refresh(0)

	case keys.Right:
		e.buf.Right()
		e.refresh(0)

	case keys.Home:
		e.buf.Home()
		e.refresh(0)

	case keys.End:
		e.buf.End()
		e.refresh(0)

	case keys.LeftWord:
		e.buf.LeftWord()
		e.refresh(0)

	case keys.RightWord:
		e.buf.RightWord()
		e.refresh(0)

	case keys.Continuation:
		e.buf.Insert(buffer.ContinuationSentinel)
		e.refresh(0)

	case keys.Printable:
		e.buf.Insert(ev.Byte)
		e.refresh(0)

	case keys.Insert, keys.Ignored:
		// no-op
	}
	return false, nil
}

// refresh repaints the visible line, honouring the continuation prompt
// once the buffer has a locked-in prefix.
func (e *Editor) refresh(pad int) {
	text := e.buf.Text()
	e.surface.Refresh(text, e.buf.Start(), e.buf.Pos(), e.buf.Len(), e.buf.Start() > 0, pad)
}

// recallLine clears the painted line and replaces the buffer with a
// history entry, cursor at the end.
func (e *Editor) recallLine(line string) {
	e.surface.ClearLine(e.buf.Len())
	e.buf.Replace(line)
	e.buf.End()
	e.refresh(0)
}

func (e *Editor) handleEnter() (bool, error) {
	line := e.buf.Text()
	out := e.disp.Execute(line, true)

	e.surface.EchoStr("\r\n")
	switch {
	case out.ParseError:
		e.surface.EchoStr("Error parsing command\n")
	case out.Message != "":
		e.surface.EchoStr(out.Message)
	}

	if out.RC != 0 {
		return true, nil
	}
	e.buf.Reset()
	e.surface.EchoPrompt(false)
	return false, nil
}

func (e *Editor) handleInterrupt() (bool, error) {
	rc, msg := e.reg.InterruptHook()(e.buf.Text(), e.buf.Pos())
	e.surface.EchoStr("\r\n")
	if msg != "" {
		e.surface.EchoStr(msg)
	}
	if rc != 0 {
		return true, nil
	}
	e.buf.Reset()
	e.surface.EchoPrompt(false)
	return false, nil
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// handleTab runs the completion engine against the buffer contents up
// to the cursor and applies the result.
func (e *Editor) handleTab() {
	prefix := string(e.buf.Bytes()[:e.buf.Pos()])
	argv, _, err := token.Tokenize(prefix, "")
	if err != nil {
		e.refresh(0)
		return
	}
	lastByteSpace := len(prefix) == 0 || isSpaceByte(prefix[len(prefix)-1])

	res := e.comp.Complete(argv, lastByteSpace)

	if res.Insert != "" {
		e.buf.InsertString(res.Insert)
	}
	if res.Unique {
		term := byte(' ')
		if res.Terminator == registry.NoSpace {
			term = 0
		} else if res.Terminator != 0 {
			term = res.Terminator
		}
		if term != 0 {
			e.buf.Insert(term)
		}
	}

	if len(res.Listing) > 1 && e.tabCount > 0 {
		e.refresh(0)
		width := 0
		if e.outputFile != nil {
			if w, _, ok := terminal.WindowSize(e.outputFile); ok {
				width = w
			}
		}
		e.surface.EchoStr("\r\n")
		e.surface.EchoStr(complete.FormatColumns(res.Listing, width, 0))
		e.surface.EchoPrompt(e.buf.Start() > 0)
		e.surface.EchoStr(e.buf.Text())
	}

	e.tabCount++
	e.refresh(0)
}

// handleReverseSearch runs the Ctrl-R sub-loop and re-dispatches
// whatever keystroke ended it, unless that keystroke was Ctrl-C.
func (e *Editor) handleReverseSearch() (bool, error) {
	e.surface.ClearLine(e.buf.Len())
	term, err := e.reverseSearchLoop()
	if err != nil {
		return false, err
	}
	if term.Intent == keys.EndOfInput {
		return true, nil
	}
	e.refresh(0)
	if term.Intent == keys.Interrupt {
		return false, nil
	}
	return e.dispatchIntent(term)
}

// reverseSearchLoop owns the incremental Ctrl-R search sub-loop. It
// paints its own frame ("(reverse-i-search)`needle': line") and returns
// the keystroke that ended the search, to be re-dispatched by the
// caller.
func (e *Editor) reverseSearchLoop() (keys.Event, error) {
	rs := e.hist.NewReverseSearch()
	prevLen := 0
	prevLen = e.paintReverseSearch(rs, prevLen)

	for {
		ev, err := e.dec.Read()
		if err != nil {
			return keys.Event{}, &Error{Kind: Io, Op: "reverseSearchLoop", Err: err}
		}

		switch ev.Intent {
		case keys.EndOfInput:
			return ev, nil
		case keys.Interrupt:
			rs.Abort()
			e.buf.Reset()
			e.surface.Echo('\r')
			e.surface.EchoLen(' ', prevLen)
			return ev, nil
		case keys.Printable:
			rs.Extend(ev.Byte)
		case keys.Backspace:
			rs.Shrink()
		case keys.ReverseSearch:
			rs.Advance()
		default:
			rs.Commit()
			if line, ok := rs.MatchLine(); ok {
				e.buf.Replace(line)
				e.buf.End()
			}
			return ev, nil
		}

		if line, ok := rs.MatchLine(); ok {
			e.buf.Replace(line)
			e.buf.End()
		}
		prevLen = e.paintReverseSearch(rs, prevLen)
	}
}

// paintReverseSearch clears the previously painted frame (prevLen bytes
// wide) and draws the current one, leaving the cursor immediately after
// the matched substring. Returns the new frame's length for the next
// call's clear.
func (e *Editor) paintReverseSearch(rs *history.ReverseSearchState, prevLen int) int {
	e.surface.Echo('\r')
	e.surface.EchoLen(' ', prevLen)
	e.surface.Echo('\r')

	prefix := "(reverse-i-search)`"
	if rs.Failed() {
		prefix = "failed " + prefix
	}
	line, _ := rs.MatchLine()
	frame := prefix + rs.Needle() + "': " + line
	e.surface.EchoStr(frame)

	offset := rs.MatchOffset()
	tail := len(line) - offset - len(rs.Needle())
	if tail < 0 {
		tail = 0
	}
	for i := 0; i < tail; i++ {
		e.surface.Echo('\b')
	}
	return len(frame)
}
