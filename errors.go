package pdfannotate

import "github.com/pkg/errors"

var (
	// ErrInvalidDocument is returned when the document bytes cannot be
	// loaded by the renderer.
	ErrInvalidDocument = errors.New("invalid PDF document")

	// ErrNoDocument is returned by editor operations that need a loaded
	// document.
	ErrNoDocument = errors.New("no document loaded")

	// ErrPageOutOfRange is returned for page numbers outside 1..PageCount.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrNotFound is returned when an annotation id is not in the store.
	ErrNotFound = errors.New("annotation not found")

	// ErrDuplicateID is returned when adding an annotation whose id is
	// already in use.
	ErrDuplicateID = errors.New("duplicate annotation id")

	// ErrInvalidGeometry is returned for annotations that violate the
	// geometry rules of their kind.
	ErrInvalidGeometry = errors.New("invalid annotation geometry")

	// ErrUnsupportedImage is returned when an inserted image payload cannot
	// be decoded.
	ErrUnsupportedImage = errors.New("unsupported image payload")
)
