package pdfannotate

// History is a linear undo stack of store snapshots. It starts with a
// single empty snapshot at cursor 0, so Undo is a no-op at the start of a
// session. Committing after an undo discards the redo branch.
type History struct {
	entries []Snapshot
	cursor  int
	limit   int
}

// NewHistory creates a history holding at most limit entries. A limit of
// zero or less keeps every entry.
func NewHistory(limit int) *History {
	return &History{
		entries: []Snapshot{{}},
		limit:   limit,
	}
}

// Commit records snap as the newest entry.
func (h *History) Commit(snap Snapshot) {
	h.entries = append(h.entries[:h.cursor+1], snap.Clone())
	h.cursor = len(h.entries) - 1

	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]Snapshot(nil), h.entries[drop:]...)
		h.cursor -= drop
	}
}

// Undo moves the cursor back one entry and returns the snapshot to
// publish. ok is false at the oldest entry.
func (h *History) Undo() (snap Snapshot, ok bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), true
}

// Redo moves the cursor forward one entry and returns the snapshot to
// publish. ok is false at the newest entry.
func (h *History) Redo() (snap Snapshot, ok bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), true
}

// CanUndo reports whether Undo would change the cursor.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether Redo would change the cursor.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of entries, including the initial one.
func (h *History) Len() int {
	return len(h.entries)
}

// Cursor returns the index of the current entry.
func (h *History) Cursor() int {
	return h.cursor
}

// Current returns a copy of the snapshot at the cursor.
func (h *History) Current() Snapshot {
	return h.entries[h.cursor].Clone()
}

// Reset discards every entry and starts over with one empty snapshot.
func (h *History) Reset() {
	h.entries = []Snapshot{{}}
	h.cursor = 0
}
