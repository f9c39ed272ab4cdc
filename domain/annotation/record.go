package annotation

import "image"

// Record is one comment cloud drawn on the overlay. Size is the signed drag
// vector from Origin to the release point, so either extent may be negative.
type Record struct {
	Origin image.Point
	Size   image.Point
	Text   string
}

// Rect returns the record's bounding rectangle with non-negative extents.
func (r Record) Rect() image.Rectangle {
	return image.Rectangle{Min: r.Origin, Max: r.Origin.Add(r.Size)}.Canon()
}

// Contains reports whether p lies inside the normalized rectangle
// (min <= p < max on both axes). Empty records contain nothing.
func (r Record) Contains(p image.Point) bool {
	return p.In(r.Rect())
}

// Center returns the midpoint of the normalized rectangle.
func (r Record) Center() image.Point {
	rect := r.Rect()
	return image.Pt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
}
