// Package geom holds the integer-grid geometry shared by the combat engine:
// degree-based trigonometry, rounded distances, clamping and the scanner
// triangle test.
package geom

import "math"

// Arena bounds. Positions live on the closed grid [Min, Max]×[Min, Max].
const (
	Min = 0
	Max = 999
)

// Point is a position on the arena grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p shifted by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// InBounds reports whether p lies on the arena grid.
func (p Point) InBounds() bool {
	return p.X >= Min && p.X <= Max && p.Y >= Min && p.Y <= Max
}

// Clamp limits v to [lo, hi].
func Clamp(lo, v, hi int) int {
	return max(min(hi, v), lo)
}

// ClampPoint limits both coordinates of p to the arena grid.
func ClampPoint(p Point) Point {
	return Point{X: Clamp(Min, p.X, Max), Y: Clamp(Min, p.Y, Max)}
}

// NormalizeAngle maps any integer angle in degrees to [0, 360).
func NormalizeAngle(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CosD returns the cosine of an angle given in degrees.
func CosD(deg int) float64 {
	return math.Cos(float64(deg) * math.Pi / 180)
}

// SinD returns the sine of an angle given in degrees.
func SinD(deg int) float64 {
	return math.Sin(float64(deg) * math.Pi / 180)
}

// Round rounds half to even, so x.5 lands on the even neighbour.
func Round(v float64) int {
	return int(math.RoundToEven(v))
}

// Project returns the grid point reached from p after travelling dist units
// along direction deg. The result is not clamped.
func Project(p Point, deg, dist int) Point {
	return Point{
		X: Round(float64(p.X) + float64(dist)*CosD(deg)),
		Y: Round(float64(p.Y) + float64(dist)*SinD(deg)),
	}
}

// UnitStep returns the rounded unit vector for direction deg. At least one
// component is always non-zero.
func UnitStep(deg int) (dx, dy int) {
	return Round(CosD(deg)), Round(SinD(deg))
}

// Distance returns the Euclidean distance between a and b rounded to the
// nearest integer.
func Distance(a, b Point) int {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return Round(math.Hypot(dx, dy))
}

// Triangle is a closed polygon of three grid vertices.
type Triangle struct {
	A, B, C Point
}

// Contains reports whether p lies strictly inside t. Points on an edge or a
// vertex are outside, and a degenerate triangle contains nothing.
func (t Triangle) Contains(p Point) bool {
	d1 := cross(t.A, t.B, p)
	d2 := cross(t.B, t.C, p)
	d3 := cross(t.C, t.A, p)
	if d1 == 0 || d2 == 0 || d3 == 0 {
		return false
	}
	return (d1 > 0) == (d2 > 0) && (d2 > 0) == (d3 > 0)
}

func cross(a, b, p Point) int64 {
	return int64(b.X-a.X)*int64(p.Y-a.Y) - int64(b.Y-a.Y)*int64(p.X-a.X)
}
