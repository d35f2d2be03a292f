// Package pathgen builds random axis-aligned enemy paths that avoid a reserved
// rectangle of the board, such as the area under the status panel.
package pathgen

import (
	"errors"
	"math/rand"

	"towerdefense-sim/internal/game"
)

// DefaultMaxAttempts caps how often a single turn point is resampled.
const DefaultMaxAttempts = 50

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Params controls path generation.
type Params struct {
	Width       float64
	Height      float64
	Turns       int
	Margin      float64
	Forbidden   Rect
	MaxAttempts int
}

// DefaultParams matches the stock 1280x720 board with the status panel in the
// top-right corner.
func DefaultParams(turns int, margin float64) Params {
	return Params{
		Width:       1280,
		Height:      720,
		Turns:       turns,
		Margin:      margin,
		Forbidden:   Rect{X: 990, Y: 0, W: 300, H: 200},
		MaxAttempts: DefaultMaxAttempts,
	}
}

var errBoard = errors.New("board too small for margin")

// blocked reports whether p falls inside the forbidden zone expanded by the margin.
// The zone extends from its left edge to the right border of the board.
func (p Params) blocked(pt game.Point) bool {
	return pt.X > p.Forbidden.X-p.Margin && pt.Y < p.Forbidden.Y+p.Forbidden.H+p.Margin
}

// safeY is the first row below the expanded forbidden zone.
func (p Params) safeY() float64 {
	return p.Forbidden.Y + p.Forbidden.H + p.Margin
}

// Generate returns a path that starts on the left edge, alternates horizontal and
// vertical legs for p.Turns turns and ends at the right side of the board.
func Generate(p Params, rng *rand.Rand) (game.Path, error) {
	if p.Width <= 2*p.Margin || p.Height <= 2*p.Margin {
		return game.Path{}, errBoard
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}

	cur := game.Point{X: 0, Y: rng.Float64()*(p.Height-2*p.Margin) + p.Margin}
	points := []game.Point{cur}
	horizontal := true
	for i := 0; i < p.Turns; i++ {
		next, ok := p.sample(cur, i, horizontal, rng)
		if !ok {
			next = p.fallback(cur, horizontal)
		}
		points = append(points, next)
		cur = next
		horizontal = !horizontal
	}

	base := game.Point{X: p.Width - p.Margin, Y: cur.Y}
	if p.blocked(base) {
		// Drop below the zone first so every leg stays axis-aligned.
		cur = game.Point{X: cur.X, Y: p.safeY()}
		points = append(points, cur)
		base.Y = cur.Y
	}
	points = append(points, base)
	return game.NewPath(points)
}

func (p Params) sample(cur game.Point, i int, horizontal bool, rng *rand.Rand) (game.Point, bool) {
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		var next game.Point
		if horizontal {
			x := cur.X + p.Margin + rng.Float64()*(p.Width/float64(p.Turns+1-i))
			next = game.Point{X: min(x, p.Width-p.Margin), Y: cur.Y}
		} else {
			next = game.Point{X: cur.X, Y: rng.Float64()*(p.Height-2*p.Margin) + p.Margin}
		}
		if !p.blocked(next) {
			return next, true
		}
	}
	return game.Point{}, false
}

// fallback clamps a turn point into the valid region when sampling gave up.
func (p Params) fallback(cur game.Point, horizontal bool) game.Point {
	if horizontal {
		return game.Point{X: max(cur.X, p.Forbidden.X-p.Margin), Y: cur.Y}
	}
	return game.Point{X: cur.X, Y: min(p.safeY(), p.Height-p.Margin)}
}
