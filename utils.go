package pdfannotate

import "math"

// distance returns the euclidean distance between two points.
func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// expandRect expands a rectangle by the given amount in all directions
func expandRect(rect Rect, amount float64) Rect {
	return Rect{
		X0: rect.X0 - amount,
		Y0: rect.Y0 - amount,
		X1: rect.X1 + amount,
		Y1: rect.Y1 + amount,
	}
}

// scaleRect multiplies every coordinate of a rectangle by factor.
func scaleRect(rect Rect, factor float64) Rect {
	return Rect{
		X0: rect.X0 * factor,
		Y0: rect.Y0 * factor,
		X1: rect.X1 * factor,
		Y1: rect.Y1 * factor,
	}
}

// boundingBox returns the smallest rectangle containing all points.
func boundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{X0: points[0].X, Y0: points[0].Y, X1: points[0].X, Y1: points[0].Y}
	for _, p := range points[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

// fitWithin scales (w, h) down so that it fits inside (maxW, maxH) while
// keeping the aspect ratio. Sizes that already fit are returned unchanged.
func fitWithin(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	ratio := math.Min(1, math.Min(maxW/w, maxH/h))
	return w * ratio, h * ratio
}

// finite reports whether every value is neither NaN nor infinite.
func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// clamp restricts a value to a range
func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
