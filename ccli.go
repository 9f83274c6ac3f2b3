// Package ccli is an embeddable interactive command-line editor: it
// takes exclusive control of a pair of byte-oriented input/output
// endpoints, presents a prompt, and lets a user compose, edit, recall,
// complete, and submit command lines dispatched to host-registered
// callbacks. Editor is the event loop that wires the buffer, history,
// keystroke decoder, display surface, registry, completion, and
// dispatch packages together.
package ccli

import (
	"io"
	"os"

	"github.com/rostedt/ccli/buffer"
	"github.com/rostedt/ccli/cache"
	"github.com/rostedt/ccli/complete"
	"github.com/rostedt/ccli/dispatch"
	"github.com/rostedt/ccli/history"
	"github.com/rostedt/ccli/keys"
	"github.com/rostedt/ccli/registry"
	"github.com/rostedt/ccli/terminal"
	"github.com/rostedt/ccli/token"
)

// HistoryTag and AliasTag identify the cache section written by
// SaveHistory/SaveAliases. Distinct from the default cache file names
// (cache.HistoryCacheName/AliasCacheName), which address the file, not
// the section within it.
const (
	HistoryTag = "history"
	AliasTag   = "alias"
)

// Editor owns the input/output endpoints and every core component for
// one interactive session. Not safe for concurrent use by more than one
// goroutine.
type Editor struct {
	input      io.Reader
	inputFile  *os.File
	output     io.Writer
	outputFile *os.File

	raw     *terminal.RawMode
	surface *terminal.Surface
	peek    *keys.PeekReader
	dec     *keys.Decoder

	buf  *buffer.Buffer
	hist *history.Ring
	reg  *registry.Registry
	comp *complete.Engine
	disp *dispatch.Engine

	delim    string
	tabCount int
}

// New allocates an Editor bound to input and output, entering raw mode
// (non-canonical, no echo, signals disabled) when input is a real
// terminal, and auto-registers an "exit" command that ends the loop.
func New(prompt string, input io.Reader, output io.Writer) (*Editor, error) {
	e := &Editor{
		input:  input,
		output: output,
		buf:    buffer.New(),
		hist:   history.New(history.DefaultMax),
		reg:    registry.New(),
	}
	e.comp = complete.New(e.reg)
	e.disp = dispatch.New(e.reg, e.hist, "")
	e.surface = terminal.NewSurface(output, prompt)
	e.peek = keys.NewPeekReader(input)
	e.dec = keys.NewDecoder(e.peek)

	if f, ok := input.(*os.File); ok {
		e.inputFile = f
		raw, err := terminal.NewRawMode(f)
		if err == nil {
			if err := raw.Enter(); err != nil {
				return nil, &Error{Kind: Io, Op: "New", Err: err}
			}
			e.raw = raw
		}
	}
	if f, ok := output.(*os.File); ok {
		e.outputFile = f
	}

	e.reg.Register("exit", func(name, line string, data any, argv []string) (int, error) {
		return 1, nil
	}, nil)

	return e, nil
}

// SetHistoryMax replaces the history ring with a fresh one of the given
// capacity. Intended to be called immediately after New, before any
// lines have been recorded.
func (e *Editor) SetHistoryMax(max int) {
	e.hist = history.New(max)
	e.disp = dispatch.New(e.reg, e.hist, e.delim)
}

// Close restores the input endpoint's original terminal attributes.
// Safe to call even if raw mode was never entered.
func (e *Editor) Close() error {
	if e.raw != nil {
		return e.raw.Restore()
	}
	return nil
}

// ReleaseConsole temporarily restores the input endpoint's original
// terminal attributes, e.g. before forking a child that needs cooked
// mode.
func (e *Editor) ReleaseConsole() error {
	if e.raw == nil {
		return nil
	}
	return e.raw.Restore()
}

// AcquireConsole re-enters raw mode after ReleaseConsole.
func (e *Editor) AcquireConsole() error {
	if e.raw == nil {
		return nil
	}
	return e.raw.Enter()
}

// Input returns the input endpoint.
func (e *Editor) Input() io.Reader { return e.input }

// Output returns the output endpoint.
func (e *Editor) Output() io.Writer { return e.output }

// Registry exposes the underlying command/alias/hook registry for
// registration calls that don't have a dedicated Editor wrapper.
func (e *Editor) Registry() *registry.Registry { return e.reg }

// RegisterCommand adds or replaces a flat command.
func (e *Editor) RegisterCommand(name string, run registry.Callback, data any) {
	e.reg.Register(name, run, data)
}

// UnregisterCommand removes a flat command by name.
func (e *Editor) UnregisterCommand(name string) {
	e.reg.Unregister(name)
}

// RegisterCommandTable installs a hierarchical command table.
func (e *Editor) RegisterCommandTable(root *registry.CommandNode) error {
	if err := e.reg.RegisterCommandTable(root); err != nil {
		return &Error{Kind: BadStructure, Op: "RegisterCommandTable", Err: err}
	}
	return nil
}

// RegisterCompletionTable installs a hierarchical completion table.
func (e *Editor) RegisterCompletionTable(root *registry.CompletionNode) error {
	if err := e.reg.RegisterCompletionTable(root); err != nil {
		return &Error{Kind: BadStructure, Op: "RegisterCompletionTable", Err: err}
	}
	return nil
}

// SetCommandCompletion attaches a per-command completion callback.
func (e *Editor) SetCommandCompletion(name string, fn registry.CompletionCallback) {
	e.reg.SetCompletion(name, fn)
}

// SetDefaultCompletion replaces the fallback completion callback.
func (e *Editor) SetDefaultCompletion(fn registry.CompletionCallback) {
	e.reg.SetDefaultCompletion(fn)
}

// SetEnterHook replaces the empty-line submission hook.
func (e *Editor) SetEnterHook(fn registry.EnterHookFunc) { e.reg.SetEnterHook(fn) }

// SetUnknownHook replaces the no-match submission hook.
func (e *Editor) SetUnknownHook(fn registry.UnknownHookFunc) { e.reg.SetUnknownHook(fn) }

// SetInterruptHook replaces the Ctrl-C hook.
func (e *Editor) SetInterruptHook(fn registry.InterruptHookFunc) { e.reg.SetInterruptHook(fn) }

// SetAlias registers or removes (on an empty expansion) an alias.
func (e *Editor) SetAlias(name, expansion string) { e.reg.SetAlias(name, expansion) }

// SetChainDelimiter configures the command-chain separator (e.g. ";").
// An empty string disables chaining.
func (e *Editor) SetChainDelimiter(delim string) {
	e.delim = delim
	e.disp.SetDelimiter(delim)
}

// Execute runs the dispatch pipeline for line outside the event loop,
// optionally recording it to history.
func (e *Editor) Execute(line string, record bool) dispatch.Outcome {
	return e.disp.Execute(line, record)
}

// Printf writes formatted text to the output endpoint.
func (e *Editor) Printf(format string, args ...any) {
	e.surface.Printf(format, args...)
}

// Pager returns a PageWriter that pauses every rows lines (0 disables
// pagination), reading the continue/quit response from the same
// PeekReader the event loop decodes keystrokes from.
func (e *Editor) Pager(rows int) *terminal.PageWriter {
	return terminal.NewPageWriter(e.surface, e.peek, rows)
}

// ReadByte reads a single byte from the input endpoint.
func (e *Editor) ReadByte() (byte, error) {
	return e.peek.ReadByte()
}

// ClearBuffer empties the line buffer, for use from within a callback.
func (e *Editor) ClearBuffer() {
	e.buf.Reset()
}

// InsertAt injects s into the line buffer at pos (or the cursor if pos
// is negative, or the end if pos exceeds the buffer length), for use
// from within a callback.
func (e *Editor) InsertAt(s string, pos int) {
	switch {
	case pos < 0:
		e.buf.InsertString(s)
	case pos >= e.buf.Len():
		e.buf.End()
		e.buf.InsertString(s)
	default:
		save := e.buf.Pos()
		e.buf.Home()
		for i := 0; i < pos; i++ {
			e.buf.Right()
		}
		e.buf.InsertString(s)
		newPos := save
		if save >= pos {
			newPos += len(s)
		}
		e.buf.Home()
		for i := 0; i < newPos; i++ {
			e.buf.Right()
		}
	}
}

// Repaint redraws the current line.
func (e *Editor) Repaint() {
	e.refresh(0)
}

// HistoryAt fetches the Nth most recent history line.
func (e *Editor) HistoryAt(past int) (string, bool) {
	return e.hist.At(past)
}

// SaveHistoryTo writes the history ring's contents (oldest accessible
// entry first) to w as a tagged section.
func (e *Editor) SaveHistoryTo(w io.Writer) error {
	var lines []string
	for past := e.historyDepth(); past >= 1; past-- {
		if l, ok := e.hist.At(past); ok {
			lines = append(lines, l)
		}
	}
	return cache.WriteSection(w, HistoryTag, lines)
}

func (e *Editor) historyDepth() int {
	size := e.hist.Size()
	if size == 0 {
		return 0
	}
	return size
}

// LoadHistoryFrom reads a tagged history section from r and appends its
// lines to the ring in order.
func (e *Editor) LoadHistoryFrom(r io.Reader) error {
	lines, err := cache.ReadSection(r, HistoryTag)
	if err != nil {
		return &Error{Kind: Io, Op: "LoadHistoryFrom", Err: err}
	}
	for _, l := range lines {
		e.hist.Add(l)
	}
	return nil
}

// SaveHistory writes history to path (empty path uses the default XDG
// cache path for "ccli").
func (e *Editor) SaveHistory(path string) error {
	return e.saveTaggedFile(path, cache.HistoryCacheName, HistoryTag, e.historyLines())
}

// LoadHistory reads history from path (empty path uses the default).
func (e *Editor) LoadHistory(path string) error {
	lines, err := e.loadTaggedFile(path, cache.HistoryCacheName, HistoryTag)
	if err != nil {
		return err
	}
	for _, l := range lines {
		e.hist.Add(l)
	}
	return nil
}

func (e *Editor) historyLines() []string {
	var lines []string
	for past := e.historyDepth(); past >= 1; past-- {
		if l, ok := e.hist.At(past); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

// SaveAliases writes every registered alias, formatted "name=expansion",
// to path (empty path uses the default XDG cache path for
// "ccli-alias").
func (e *Editor) SaveAliases(path string) error {
	var lines []string
	for _, a := range e.reg.Aliases() {
		lines = append(lines, a.Name+"="+a.Expansion)
	}
	return e.saveTaggedFile(path, cache.AliasCacheName, AliasTag, lines)
}

// LoadAliases reads aliases from path (empty path uses the default) and
// registers each one.
func (e *Editor) LoadAliases(path string) error {
	lines, err := e.loadTaggedFile(path, cache.AliasCacheName, AliasTag)
	if err != nil {
		return err
	}
	for _, l := range lines {
		name, expansion, ok := splitAliasLine(l)
		if ok {
			e.reg.SetAlias(name, expansion)
		}
	}
	return nil
}

func splitAliasLine(l string) (name, expansion string, ok bool) {
	for i := 0; i < len(l); i++ {
		if l[i] == '=' {
			return l[:i], l[i+1:], true
		}
	}
	return "", "", false
}

func (e *Editor) saveTaggedFile(path, defaultName, tag string, lines []string) error {
	if path == "" {
		p, err := cache.DefaultPath(defaultName)
		if err != nil {
			return &Error{Kind: Io, Op: "saveTaggedFile", Err: err}
		}
		path = p
	}
	if err := cache.ReplaceSection(path, tag, lines); err != nil {
		return &Error{Kind: Io, Op: "saveTaggedFile", Err: err}
	}
	return nil
}

func (e *Editor) loadTaggedFile(path, defaultName, tag string) ([]string, error) {
	if path == "" {
		p, err := cache.DefaultPath(defaultName)
		if err != nil {
			return nil, &Error{Kind: Io, Op: "loadTaggedFile", Err: err}
		}
		path = p
	}
	lines, err := cache.ReadSectionFromFile(path, tag)
	if err == cache.ErrSectionNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Kind: Io, Op: "loadTaggedFile", Err: err}
	}
	return lines, nil
}

// Tokenize splits line into an argument vector without requiring an
// Editor, for callers that just need the parsing rules.
func Tokenize(line, delim string) ([]string, int, error) {
	return token.Tokenize(line, delim)
}
