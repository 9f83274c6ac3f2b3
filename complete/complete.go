// Package complete implements the completion engine (C): gathering
// candidates from command, default, and table completion sources,
// merging/sorting/deduplicating them, computing the longest common
// prefix, and formatting a multi-column listing.
package complete

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rostedt/ccli/registry"
)

// Candidates is an ordered list of completion strings.
type Candidates []string

// Add copies s into the list.
func (c *Candidates) Add(s string) {
	*c = append(*c, s)
}

// AddOwned appends a string the caller has already built. Kept distinct
// from Add since Go strings are immutable and copying is free either
// way, but callers that built the string specifically to hand it off
// read more clearly with this name.
func (c *Candidates) AddOwned(s string) {
	*c = append(*c, s)
}

// AddPrintf appends a formatted string.
func (c *Candidates) AddPrintf(format string, args ...any) {
	*c = append(*c, fmt.Sprintf(format, args...))
}

// mergeSortDedup stable-sorts and removes duplicate/empty entries.
func mergeSortDedup(c Candidates) Candidates {
	sort.SliceStable(c, func(i, j int) bool { return c[i] < c[j] })
	out := c[:0]
	var last string
	first := true
	for _, s := range c {
		if s == "" {
			continue
		}
		if !first && s == last {
			continue
		}
		out = append(out, s)
		last = s
		first = false
	}
	return out
}

// filterPrefix keeps only entries whose prefix equals match.
func filterPrefix(c Candidates, match string) Candidates {
	var out Candidates
	for _, s := range c {
		if strings.HasPrefix(s, match) {
			out = append(out, s)
		}
	}
	return out
}

func longestCommonPrefix(c Candidates) string {
	if len(c) == 0 {
		return ""
	}
	lcp := c[0]
	for _, s := range c[1:] {
		for !strings.HasPrefix(s, lcp) {
			lcp = lcp[:len(lcp)-1]
			if lcp == "" {
				return ""
			}
		}
	}
	return lcp
}

// Word identifies the argument the cursor is completing: word == argc-1
// when the last byte before the cursor is non-whitespace (completing
// argv[word] in place), otherwise word == argc and match is "".
func Word(argv []string, lastByteIsSpace bool) (word int, match string) {
	if len(argv) == 0 {
		return 0, ""
	}
	if !lastByteIsSpace {
		return len(argv) - 1, argv[len(argv)-1]
	}
	return len(argv), ""
}

// Result is the outcome of a completion pass.
type Result struct {
	Candidates Candidates
	Match      string
	// Insert is the byte sequence to insert at the cursor, after Match
	// (either the unique match's suffix beyond Match, or the longest
	// common prefix's suffix beyond Match across multiple matches).
	Insert string
	// Terminator is appended after Insert when there is exactly one
	// candidate; registry.NoSpace means append nothing, 0 means the
	// default delimiter (a space).
	Terminator byte
	// Listing holds every matching candidate for multi-column display,
	// populated only when there is more than one match.
	Listing Candidates
	// Unique reports that exactly one candidate matched. Insert should
	// be spliced in and followed by the terminator even when Insert is
	// empty, which happens when the word being completed already spells
	// out the whole candidate.
	Unique bool
}

// Engine runs completion source gathering for a Registry.
type Engine struct {
	reg *registry.Registry
}

// New returns an Engine backed by reg.
func New(reg *registry.Registry) *Engine {
	return &Engine{reg: reg}
}

// Complete gathers candidates for argv (the tokenised line up to the
// cursor) from the per-command, default, and table completion sources
// in that order, merges them, and computes the insertion.
func (e *Engine) Complete(argv []string, lastByteIsSpace bool) Result {
	word, match := Word(argv, lastByteIsSpace)

	var cands Candidates
	term := byte(0)

	commandCompletionFired := false
	if word > 0 && len(argv) > 0 {
		if cmd, ok := e.reg.Lookup(argv[0]); ok && cmd.Complete != nil {
			got, t := cmd.Complete(argv, match, cmd.Data)
			cands = append(cands, got...)
			term = t
			commandCompletionFired = len(got) > 0
		}
	}

	if !commandCompletionFired {
		if dc := e.reg.DefaultCompletion(); dc != nil {
			got, t := dc(argv, match, nil)
			cands = append(cands, got...)
			if len(got) > 0 {
				term = t
			}
		}
	}

	if tbl := e.reg.CompletionTable(); tbl != nil {
		got, t, addChildren := walkCompletionTable(tbl, argv[:word])
		cands = append(cands, got...)
		if len(got) > 0 {
			term = t
		}
		cands = append(cands, addChildren...)
	}

	if word == 0 {
		for _, c := range e.reg.Commands() {
			cands.Add(c.Name)
		}
	}

	cands = mergeSortDedup(cands)
	matched := filterPrefix(cands, match)

	res := Result{Candidates: cands, Match: match, Terminator: term}
	switch len(matched) {
	case 0:
		return res
	case 1:
		res.Insert = matched[0][len(match):]
		res.Unique = true
	default:
		lcp := longestCommonPrefix(matched)
		res.Insert = lcp[len(match):]
		res.Listing = matched
	}
	return res
}

// walkCompletionTable descends the completion table by exact match
// against path (argv[0:word], the ancestor chain of the word being
// completed). If the whole path resolves, node is the parent of that
// word: its callback (if any) contributes dynamic candidates and its
// children's names are offered outright. An ancestor segment that
// matches nothing means the table has no opinion for this word.
func walkCompletionTable(root *registry.CompletionNode, path []string) (cands Candidates, term byte, addChildren Candidates) {
	node := root
	for _, seg := range path {
		var next *registry.CompletionNode
		for _, c := range node.Options {
			if c.Name == seg {
				next = c
				break
			}
		}
		if next == nil {
			return nil, 0, nil
		}
		node = next
	}

	if node.Complete != nil {
		got, t := node.Complete(path, "", node.Data)
		cands = append(cands, got...)
		term = t
	}
	for _, c := range node.Options {
		addChildren.Add(c.Name)
	}
	return cands, term, addChildren
}

// FormatColumns lays candidates out in a multi-column grid sized to
// width, or one entry per line if width <= 0 (no TTY). displayIndex
// skips a common leading prefix (e.g. a directory path) in every
// printed entry.
func FormatColumns(entries Candidates, width int, displayIndex int) string {
	if len(entries) == 0 {
		return ""
	}
	shown := make([]string, len(entries))
	longest := 0
	for i, e := range entries {
		s := e
		if displayIndex > 0 && displayIndex <= len(s) {
			s = s[displayIndex:]
		}
		shown[i] = s
		if len(s) > longest {
			longest = len(s)
		}
	}

	if width <= 0 {
		return strings.Join(shown, "\n") + "\n"
	}

	colWidth := longest + 2
	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}

	var b strings.Builder
	for i, s := range shown {
		b.WriteString(s)
		if (i+1)%cols == 0 || i == len(shown)-1 {
			b.WriteByte('\n')
		} else {
			b.WriteString(strings.Repeat(" ", colWidth-len(s)))
		}
	}
	return b.String()
}

// FileCompletion walks one or more filesystem directories, offering
// entries whose name prefix equals the trailing path component of
// match, filtered by the mode bits and optional extension list. path,
// if non-empty, is a colon-separated list of directories to search
// (e.g. derived from $PATH) instead of the directory implied by match.
// Directory entries are annotated with a trailing "/" so completion can
// continue into the path. No terminator byte is returned, so NoSpace is
// not signalled for directory entries.
func FileCompletion(match string, mode os.FileMode, extensions []string, path string) []string {
	var dirs []string
	var prefix string

	if path != "" {
		dirs = strings.Split(path, ":")
		prefix = match
	} else {
		dir := filepath.Dir(match)
		if dir == "." && !strings.Contains(match, "/") {
			dirs = []string{"."}
		} else {
			dirs = []string{dir}
		}
		prefix = filepath.Base(match)
		if match == "" || strings.HasSuffix(match, "/") {
			prefix = ""
		}
	}

	var out []string
	seen := map[string]bool{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, ent := range entries {
			name := ent.Name()
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			info, err := ent.Info()
			if err != nil {
				continue
			}
			if mode != 0 && info.Mode()&mode == 0 && !ent.IsDir() {
				continue
			}
			if len(extensions) > 0 && !ent.IsDir() {
				ok := false
				for _, ext := range extensions {
					if strings.HasSuffix(name, ext) {
						ok = true
						break
					}
				}
				if !ok {
					continue
				}
			}
			full := name
			if path != "" {
				full = filepath.Join(dir, name)
				if strings.HasPrefix(match, dir) {
					full = name
				}
			}
			if ent.IsDir() {
				full += "/"
			}
			if seen[full] {
				continue
			}
			seen[full] = true
			out = append(out, full)
		}
	}
	sort.Strings(out)
	return out
}
