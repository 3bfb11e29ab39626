package pdfannotate

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rect(id string, page int, x, y, w, h float64) Annotation {
	return Annotation{ID: id, Type: KindRectangle, Page: page, X: x, Y: y, Width: w, Height: h, Color: ColorBlack}
}

func TestStore_AddAndList(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))
	require.NoError(t, s.Add(rect("b", 2, 0, 0, 10, 10)))
	require.NoError(t, s.Add(rect("c", 1, 5, 5, 10, 10)))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, uint64(3), s.Version())

	page1 := s.List(1)
	require.Len(t, page1, 2)
	assert.Equal(t, "a", page1[0].ID)
	assert.Equal(t, "c", page1[1].ID)
	assert.Empty(t, s.List(3))
}

func TestStore_AddRejects(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))

	err := s.Add(rect("a", 1, 0, 0, 10, 10))
	assert.True(t, errors.Is(err, ErrDuplicateID))

	tests := []struct {
		name string
		a    Annotation
	}{
		{"missing id", rect("", 1, 0, 0, 10, 10)},
		{"page zero", rect("p", 0, 0, 0, 10, 10)},
		{"zero width", rect("w", 1, 0, 0, 0, 10)},
		{"negative height", rect("h", 1, 0, 0, 10, -1)},
		{"nan width", rect("nw", 1, 0, 0, math.NaN(), 5)},
		{"infinite height", rect("ih", 1, 0, 0, 5, math.Inf(1))},
		{"infinite x", rect("ix", 1, math.Inf(1), 0, 5, 5)},
		{"nan text anchor", Annotation{ID: "t", Type: KindText, Page: 1, X: 1, Y: math.NaN()}},
		{"short stroke", Annotation{ID: "s", Type: KindStroke, Page: 1, Points: []Point{{X: 1, Y: 1}}}},
		{"nan stroke point", Annotation{ID: "sn", Type: KindStroke, Page: 1, Points: []Point{{X: 1, Y: 1}, {X: math.NaN(), Y: 2}}}},
		{"unknown kind", Annotation{ID: "u", Type: "arrow", Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Add(tt.a)
			assert.True(t, errors.Is(err, ErrInvalidGeometry), "got %v", err)
		})
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_EmptyTextIsValid(t *testing.T) {
	s := NewStore()
	assert.NoError(t, s.Add(Annotation{ID: "t", Type: KindText, Page: 1, X: 10, Y: 20}))
}

func TestStore_UpdateKeepsOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))
	require.NoError(t, s.Add(rect("b", 1, 0, 0, 10, 10)))
	version := s.Version()

	updated, err := s.Update("a", MovePatch(30, 40))
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.X)
	assert.Equal(t, 40.0, updated.Y)
	assert.Equal(t, 10.0, updated.Width)
	assert.Greater(t, s.Version(), version)

	all := s.All()
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestStore_UpdateRejectsInvalidGeometry(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))

	_, err := s.Update("a", GeometryPatch(Rect{X0: 5, Y0: 5, X1: 5, Y1: 20}))
	assert.True(t, errors.Is(err, ErrInvalidGeometry))

	a, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10.0, a.Width)

	_, err = s.Update("missing", MovePatch(0, 0))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))
	require.NoError(t, s.Remove("a"))

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.True(t, errors.Is(s.Remove("a"), ErrNotFound))
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := NewStore()
	points := []Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	require.NoError(t, s.Add(Annotation{ID: "s", Type: KindStroke, Page: 1, Points: points}))

	points[0].X = 99
	all := s.All()
	all[0].Points[1].X = 99

	a, ok := s.Get("s")
	require.True(t, ok)
	assert.Equal(t, []Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, a.Points)
}

func TestStore_ReplaceAndClear(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(rect("a", 1, 0, 0, 10, 10)))
	snap := s.All()

	s.Clear()
	assert.Equal(t, 0, s.Len())

	s.Replace(snap)
	_, ok := s.Get("a")
	assert.True(t, ok)
}
