package pdfannotate

import (
	"slices"

	"github.com/pkg/errors"
)

// Snapshot is an immutable copy of the full annotation sequence.
type Snapshot []Annotation

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, a := range s {
		out[i] = a.Clone()
	}
	return out
}

// Store holds the annotations of an edit session in creation order. The
// order is both paint order and hit-test priority: the last element is
// topmost. Every mutation bumps Version.
type Store struct {
	items   []Annotation
	version uint64
}

// NewStore creates an empty annotation store.
func NewStore() *Store {
	return &Store{}
}

// Version returns a counter that increases on every mutation.
func (s *Store) Version() uint64 {
	return s.version
}

// Len returns the number of annotations across all pages.
func (s *Store) Len() int {
	return len(s.items)
}

// Add appends an annotation on top of the stack.
func (s *Store) Add(a Annotation) error {
	if err := validate(a); err != nil {
		return err
	}
	if s.index(a.ID) >= 0 {
		return errors.Wrapf(ErrDuplicateID, "id %s", a.ID)
	}
	s.items = append(s.items, a.Clone())
	s.version++
	return nil
}

// Update applies a patch to the annotation with the given id. Its position
// in the stacking order does not change.
func (s *Store) Update(id string, patch Patch) (Annotation, error) {
	i := s.index(id)
	if i < 0 {
		return Annotation{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	updated := patch.Apply(s.items[i])
	if err := validate(updated); err != nil {
		return Annotation{}, err
	}
	s.items[i] = updated
	s.version++
	return updated.Clone(), nil
}

// Remove deletes the annotation with the given id.
func (s *Store) Remove(id string) error {
	i := s.index(id)
	if i < 0 {
		return errors.Wrapf(ErrNotFound, "id %s", id)
	}
	s.items = slices.Delete(s.items, i, i+1)
	s.version++
	return nil
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id string) (Annotation, bool) {
	i := s.index(id)
	if i < 0 {
		return Annotation{}, false
	}
	return s.items[i].Clone(), true
}

// List returns the annotations on one page in creation order.
func (s *Store) List(page int) []Annotation {
	var out []Annotation
	for _, a := range s.items {
		if a.Page == page {
			out = append(out, a.Clone())
		}
	}
	return out
}

// All returns a snapshot of every annotation on every page.
func (s *Store) All() Snapshot {
	return Snapshot(s.items).Clone()
}

// Replace swaps the live contents for a snapshot. Used by undo and redo.
func (s *Store) Replace(snap Snapshot) {
	s.items = snap.Clone()
	s.version++
}

// Clear removes every annotation.
func (s *Store) Clear() {
	s.items = nil
	s.version++
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.items, func(a Annotation) bool {
		return a.ID == id
	})
}

// validate checks the geometry rules of an annotation's kind.
func validate(a Annotation) error {
	if a.ID == "" {
		return errors.Wrap(ErrInvalidGeometry, "missing id")
	}
	if a.Page < 1 {
		return errors.Wrapf(ErrInvalidGeometry, "page %d", a.Page)
	}
	if !finite(a.X, a.Y, a.Width, a.Height, a.FontSize, a.OriginalWidth, a.OriginalHeight) {
		return errors.Wrapf(ErrInvalidGeometry, "%s %s has non-finite geometry", a.Type, a.ID)
	}
	switch {
	case a.Type == KindText:
	case a.Type == KindStroke:
		if len(a.Points) < 2 {
			return errors.Wrapf(ErrInvalidGeometry, "stroke %s has %d points", a.ID, len(a.Points))
		}
		for _, p := range a.Points {
			if !finite(p.X, p.Y) {
				return errors.Wrapf(ErrInvalidGeometry, "stroke %s has non-finite point", a.ID)
			}
		}
	case a.Type.IsBox():
		if !(a.Width > 0) || !(a.Height > 0) {
			return errors.Wrapf(ErrInvalidGeometry, "%s %s has size %gx%g", a.Type, a.ID, a.Width, a.Height)
		}
	default:
		return errors.Wrapf(ErrInvalidGeometry, "unknown kind %q", a.Type)
	}
	return nil
}
