// Motion model shared by enemies and projectiles
package game

import "math"

// Point is a position on the board.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// displacement returns how far an entity moving at speed units/s travels in dt milliseconds.
func displacement(speed, dt float64) float64 {
	return speed * (dt / 1000)
}

// stepToward moves from toward to by dist along the heading between them.
func stepToward(from, to Point, dist float64) Point {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	return Point{
		X: from.X + math.Cos(angle)*dist,
		Y: from.Y + math.Sin(angle)*dist,
	}
}

// MoveToward advances from toward target at speed for dt milliseconds. When the
// remaining distance does not exceed this tick's displacement the result is exactly
// target and arrived is true.
func MoveToward(from, target Point, speed, dt float64) (next Point, arrived bool) {
	dist := displacement(speed, dt)
	if from.Distance(target) <= dist {
		return target, true
	}
	return stepToward(from, target, dist), false
}

// Advance moves from toward target without snapping. Projectiles use it together
// with a hit-radius test.
func Advance(from, target Point, speed, dt float64) Point {
	return stepToward(from, target, displacement(speed, dt))
}
