package game

import (
	"errors"
	"fmt"
)

// ErrShortPath is returned when a path has fewer than two points.
var ErrShortPath = errors.New("path needs at least two points")

// Path is an immutable ordered sequence of waypoints shared by every enemy of a run.
type Path struct {
	points []Point
}

// NewPath copies points into a Path.
func NewPath(points []Point) (Path, error) {
	if len(points) < 2 {
		return Path{}, fmt.Errorf("%w: got %d", ErrShortPath, len(points))
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	return Path{points: cp}, nil
}

// Len returns the number of waypoints.
func (p Path) Len() int { return len(p.points) }

// At returns waypoint i.
func (p Path) At(i int) Point { return p.points[i] }

// Start returns the spawn point.
func (p Path) Start() Point { return p.points[0] }

// End returns the base position.
func (p Path) End() Point { return p.points[len(p.points)-1] }

// Points returns a copy of the waypoints.
func (p Path) Points() []Point {
	cp := make([]Point, len(p.points))
	copy(cp, p.points)
	return cp
}

// Length returns the total travelled distance from start to end.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p.points); i++ {
		total += p.points[i-1].Distance(p.points[i])
	}
	return total
}

// PointAt returns the point a fraction f (0..1) of the way along the path.
func (p Path) PointAt(f float64) Point {
	if len(p.points) == 0 {
		return Point{}
	}
	if f <= 0 {
		return p.Start()
	}
	if f >= 1 {
		return p.End()
	}
	remaining := f * p.Length()
	for i := 1; i < len(p.points); i++ {
		a, b := p.points[i-1], p.points[i]
		seg := a.Distance(b)
		if remaining <= seg {
			if seg == 0 {
				return a
			}
			t := remaining / seg
			return Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
		}
		remaining -= seg
	}
	return p.End()
}

// SegmentAt returns the index i of the segment (points[i-1], points[i]) that contains
// the point a fraction f along the path.
func (p Path) SegmentAt(f float64) int {
	if f <= 0 {
		return 1
	}
	remaining := f * p.Length()
	for i := 1; i < len(p.points); i++ {
		seg := p.points[i-1].Distance(p.points[i])
		if remaining <= seg {
			return i
		}
		remaining -= seg
	}
	return len(p.points) - 1
}
