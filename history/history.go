// Package history implements the bounded history ring with scratch-slot
// navigation and incremental reverse search.
package history

import "strings"

// DefaultMax is the default ring capacity, matching ccli's
// DEFAULT_HISTORY_MAX.
const DefaultMax = 256

// Ring is a bounded ring of past submissions plus a scratch slot holding
// an in-progress line the user has navigated away from.
type Ring struct {
	max     int
	slots   []string
	size    int
	current int
	scratch *string
}

// New returns a Ring with the given capacity (DefaultMax if max <= 0).
func New(max int) *Ring {
	if max <= 0 {
		max = DefaultMax
	}
	return &Ring{max: max, slots: make([]string, max)}
}

// Size returns the total number of lines ever added.
func (r *Ring) Size() int {
	return r.size
}

// Current returns the logical index the user is currently viewing.
func (r *Ring) Current() int {
	return r.current
}

func (r *Ring) minAccessible() int {
	if r.size > r.max {
		return r.size - r.max + 1
	}
	return 0
}

// Add appends line at logical index Size, evicting the oldest ring slot
// once size exceeds max, and resets navigation to the fresh line.
func (r *Ring) Add(line string) {
	idx := r.size % r.max
	r.slots[idx] = line
	r.size++
	r.current = r.size
	r.scratch = nil
}

// At fetches the entry `past` steps back from the most recent submission.
// Returns "", false when past exceeds either Size or the ring capacity.
func (r *Ring) At(past int) (string, bool) {
	if past <= 0 || past > r.size || past > r.max {
		return "", false
	}
	idx := (r.size - past) % r.max
	return r.slots[idx], true
}

// lineAt returns what buffer contents should be for the logical index
// idx: the fresh scratch line if idx == size, the ring slot otherwise.
func (r *Ring) lineAt(idx int) string {
	if idx == r.size {
		if r.scratch != nil {
			return *r.scratch
		}
		return ""
	}
	return r.slots[idx%r.max]
}

// Up moves current one step into the past, saving bufText into scratch
// (leaving fresh) or back into the ring slot (leaving a recalled entry).
// Returns the new buffer contents and whether the cursor should move to
// the buffer's own navigation caller; ok is false when the navigation
// did not move (already at the oldest accessible entry).
func (r *Ring) Up(bufText string) (line string, ok bool) {
	lo := r.minAccessible()
	if r.current <= lo {
		return "", false
	}
	r.save(bufText)
	r.current--
	return r.lineAt(r.current), true
}

// Down moves current one step toward the present. See Up.
func (r *Ring) Down(bufText string) (line string, ok bool) {
	if r.current >= r.size {
		return "", false
	}
	r.save(bufText)
	r.current++
	return r.lineAt(r.current), true
}

// save writes bufText back to wherever the currently displayed line
// logically lives before current changes.
func (r *Ring) save(bufText string) {
	if r.current == r.size {
		s := bufText
		r.scratch = &s
		return
	}
	r.slots[r.current%r.max] = bufText
}

// ReverseSearchState holds the sub-loop state for Ctrl-R incremental
// search.
type ReverseSearchState struct {
	ring       *Ring
	needle     []byte
	origCur    int
	lastMatch  int
	haveMatch  bool
	failed     bool
	matchLine  string
	matchIndex int
}

// NewReverseSearch starts a reverse search rooted at the ring's current
// position.
func (r *Ring) NewReverseSearch() *ReverseSearchState {
	return &ReverseSearchState{ring: r, origCur: r.current, lastMatch: -1}
}

// Abort restores the ring's current index (called on Ctrl-C).
func (s *ReverseSearchState) Abort() {
	s.ring.current = s.origCur
}

// Extend appends a byte to the search needle and re-searches, starting
// from the currently matched slot so a longer needle can keep matching
// the line already on screen instead of skipping straight past it.
func (s *ReverseSearchState) Extend(b byte) {
	s.needle = append(s.needle, b)
	s.search(true)
}

// Shrink removes the last byte of the needle (Backspace) and
// re-searches, starting from the currently matched slot for the same
// reason as Extend.
func (s *ReverseSearchState) Shrink() {
	if len(s.needle) > 0 {
		s.needle = s.needle[:len(s.needle)-1]
	}
	s.search(true)
}

// Advance moves to an earlier match (a repeated Ctrl-R), starting the
// scan one slot above the current match so it does not just re-report
// the line already on screen.
func (s *ReverseSearchState) Advance() {
	s.search(false)
}

// Needle returns the current search buffer.
func (s *ReverseSearchState) Needle() string {
	return string(s.needle)
}

// Failed reports whether the last search attempt found nothing.
func (s *ReverseSearchState) Failed() bool {
	return s.failed
}

// MatchLine returns the currently matched history line, if any.
func (s *ReverseSearchState) MatchLine() (string, bool) {
	return s.matchLine, s.haveMatch
}

// MatchOffset returns the byte offset of the needle within MatchLine.
func (s *ReverseSearchState) MatchOffset() int {
	return strings.Index(s.matchLine, string(s.needle))
}

// search walks down to the oldest accessible index looking for a slot
// containing needle as a substring. When fromCurrent is true (the
// needle just changed under Extend or Shrink) the scan includes the
// slot the ring is already sitting on, since a longer or shorter
// needle may still match the line on screen. Otherwise (Advance, a
// repeated Ctrl-R) the scan starts one slot above current and skips a
// repeat of the last match, so it always moves further into the past.
// Starting past the oldest accessible entry is a failed search, not a
// wraparound to the newest.
func (s *ReverseSearchState) search(fromCurrent bool) {
	r := s.ring
	lo := r.minAccessible()
	if len(s.needle) == 0 {
		s.failed = false
		s.haveMatch = false
		return
	}
	start := r.current
	if !fromCurrent {
		start--
	}
	if start < lo {
		s.failed = true
		return
	}
	for i := start; i >= lo; i-- {
		if !fromCurrent && i == s.lastMatch {
			continue
		}
		line := r.slots[i%r.max]
		if strings.Contains(line, string(s.needle)) {
			r.current = i
			s.lastMatch = i
			s.matchLine = line
			s.matchIndex = i
			s.haveMatch = true
			s.failed = false
			return
		}
	}
	s.failed = true
}

// Commit ends the search, leaving the ring wherever search already
// moved it (its current index was updated in place as matches were
// found). It exists so callers have a symmetric counterpart to Abort
// rather than special-casing "search ended by Enter" at the call site.
func (s *ReverseSearchState) Commit() {
	s.lastMatch = s.matchIndex
}
