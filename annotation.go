package pdfannotate

import (
	"slices"

	"github.com/google/uuid"
)

// Kind is the type tag of an annotation. The string values are the tags
// the export service understands.
type Kind string

const (
	KindText      Kind = "text"
	KindRectangle Kind = "rectangle"
	KindCircle    Kind = "circle"
	KindHighlight Kind = "highlight"
	KindStroke    Kind = "draw"
	KindImage     Kind = "image"
	KindSignature Kind = "signature"
)

// IsBox reports whether annotations of this kind carry a width and height.
func (k Kind) IsBox() bool {
	switch k {
	case KindRectangle, KindCircle, KindHighlight, KindImage, KindSignature:
		return true
	}
	return false
}

// IsRaster reports whether annotations of this kind embed image data and
// can be dragged and resized.
func (k Kind) IsRaster() bool {
	return k == KindImage || k == KindSignature
}

// Annotation is a user-authored markup object on one page. All geometry is
// in page space. The field set mirrors the serialized form sent to the
// export service, so optional fields are omitted when empty.
type Annotation struct {
	ID   string  `json:"id"`
	Type Kind    `json:"type"`
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Text  string `json:"text,omitempty"`
	Color Color  `json:"color,omitempty"`

	Points []Point `json:"points,omitempty"`

	// Text-only fields. X,Y is the baseline-left anchor.
	IsReplacement  bool    `json:"isReplacement,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty"`
	OriginalWidth  float64 `json:"originalWidth,omitempty"`
	OriginalHeight float64 `json:"originalHeight,omitempty"`

	// ImageData is a data URL for image and signature annotations.
	ImageData string `json:"imageData,omitempty"`
}

// NewID returns a fresh annotation id.
func NewID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the annotation.
func (a Annotation) Clone() Annotation {
	a.Points = slices.Clone(a.Points)
	return a
}

// Box returns the page-space box of a box-shaped annotation.
func (a Annotation) Box() Rect {
	return RectFromXYWH(a.X, a.Y, a.Width, a.Height)
}

// Patch is a partial update applied by Store.Update. Nil fields are left
// untouched.
type Patch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	Text   *string
	Color  *Color
	Points []Point

	FontSize   *float64
	FontFamily *string
}

// Apply returns a copy of a with the patch applied.
func (p Patch) Apply(a Annotation) Annotation {
	out := a.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.Text != nil {
		out.Text = *p.Text
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.Points != nil {
		out.Points = slices.Clone(p.Points)
	}
	if p.FontSize != nil {
		out.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		out.FontFamily = *p.FontFamily
	}
	return out
}

// MovePatch moves an annotation's anchor.
func MovePatch(x, y float64) Patch {
	return Patch{X: &x, Y: &y}
}

// GeometryPatch sets an annotation's anchor and size.
func GeometryPatch(r Rect) Patch {
	x, y, w, h := r.X0, r.Y0, r.Width(), r.Height()
	return Patch{X: &x, Y: &y, Width: &w, Height: &h}
}

// TextPatch replaces an annotation's text content.
func TextPatch(text string) Patch {
	return Patch{Text: &text}
}
