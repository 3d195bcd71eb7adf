package undo

// DefaultDepth is the number of transactions a Stack keeps when none is set.
const DefaultDepth = 64

// Stack is a log of committed transactions with a cursor. Entries before the
// cursor can be undone, entries at and after it can be redone.
type Stack struct {
	entries []Pair
	cursor  int
	depth   int
}

// NewStack creates a stack keeping at most depth transactions. A depth of
// zero or less uses DefaultDepth.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

// Push appends a transaction, discarding anything that could have been
// redone. It returns how many of the oldest transactions were evicted to
// stay within depth.
func (s *Stack) Push(p Pair) int {
	s.entries = append(s.entries[:s.cursor], p)
	s.cursor = len(s.entries)

	overflow := len(s.entries) - s.depth
	if overflow <= 0 {
		return 0
	}
	copy(s.entries, s.entries[overflow:])
	clear(s.entries[len(s.entries)-overflow:])
	s.entries = s.entries[:len(s.entries)-overflow]
	s.cursor -= overflow
	return overflow
}

// Undo moves the cursor back and returns the transaction to revert.
func (s *Stack) Undo() (Pair, bool) {
	if s.cursor == 0 {
		return Pair{}, false
	}
	s.cursor--
	return s.entries[s.cursor], true
}

// Redo moves the cursor forward and returns the transaction to re-apply.
func (s *Stack) Redo() (Pair, bool) {
	if s.cursor == len(s.entries) {
		return Pair{}, false
	}
	p := s.entries[s.cursor]
	s.cursor++
	return p, true
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool { return s.cursor > 0 }

// CanRedo reports whether Redo would succeed.
func (s *Stack) CanRedo() bool { return s.cursor < len(s.entries) }

// Len returns the number of transactions held.
func (s *Stack) Len() int { return len(s.entries) }

// Cursor returns the number of transactions that can be undone.
func (s *Stack) Cursor() int { return s.cursor }

// Depth returns the configured limit.
func (s *Stack) Depth() int { return s.depth }

// Clear drops every transaction.
func (s *Stack) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.cursor = 0
}
