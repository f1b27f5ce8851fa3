package game

import (
	"fmt"
	"math"

	"golang.org/x/image/math/f64"
)

// Position is an integer grid cell. Z is a layer index and never takes part
// in distance or collision checks.
type Position struct {
	X, Y, Z int
}

// Pos is shorthand for a ground-layer position.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// SameCell reports whether p and o occupy the same (x, y) cell.
func (p Position) SameCell(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Distance is the planar Euclidean distance between two cells.
func (p Position) Distance(o Position) float64 {
	dx := float64(o.X - p.X)
	dy := float64(o.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Offset returns p shifted by (dx, dy) on the same layer.
func (p Position) Offset(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z}
}

// Direction returns the unit vector from p toward o. ok is false when both
// positions share a cell and no direction exists.
func (p Position) Direction(o Position) (dir f64.Vec2, ok bool) {
	dx := float64(o.X - p.X)
	dy := float64(o.Y - p.Y)
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 1e-9 {
		return f64.Vec2{}, false
	}
	return f64.Vec2{dx / length, dy / length}, true
}

// cellOf rounds a continuous point to the grid cell containing it.
func cellOf(x, y float64, z int) Position {
	return Position{X: int(math.Round(x)), Y: int(math.Round(y)), Z: z}
}

func scaleVec(v f64.Vec2, k float64) f64.Vec2 {
	return f64.Vec2{v[0] * k, v[1] * k}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
