package paginator

// cursorStore holds the continuation token of one session.
//
// A fresh store has not seen any page yet. Setting NoCursor is terminal: the
// store stays exhausted until the session is replaced.
type cursorStore struct {
	cursor    Cursor
	started   bool
	exhausted bool
}

// get returns the stored cursor and whether a page has been stored at all.
func (s *cursorStore) get() (Cursor, bool) {
	return s.cursor, s.started
}

func (s *cursorStore) set(next Cursor) {
	if s.exhausted {
		return
	}
	s.started = true
	s.cursor = next
	if next.IsNone() {
		s.exhausted = true
	}
}

func (s *cursorStore) isExhausted() bool {
	return s.exhausted
}
