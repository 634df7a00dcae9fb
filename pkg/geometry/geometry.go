// Package geometry provides basic planar geometric types used throughout
// the application. Coordinates are local planar meters unless noted.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Norm returns the vector length of p treated as a vector from the origin.
func (p Point2D) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Unit returns p scaled to unit length. Returns the zero vector when p is
// too short to normalize.
func (p Point2D) Unit() Point2D {
	n := p.Norm()
	if n < 1e-12 {
		return Point2D{}
	}
	return Point2D{X: p.X / n, Y: p.Y / n}
}

// Dot returns the dot product of p and other treated as vectors.
func (p Point2D) Dot(other Point2D) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Lerp returns the point a + t*(b-a).
func Lerp(a, b Point2D, t float64) Point2D {
	return Point2D{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

// BearingDeg returns the direction of the vector a→b in degrees,
// counter-clockwise from the positive X axis, in [0, 360).
func BearingDeg(a, b Point2D) float64 {
	deg := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngleBetweenDeg returns the unsigned angle between vectors u and v in
// degrees, in [0, 180]. Degenerate (zero-length) vectors yield 0.
func AngleBetweenDeg(u, v Point2D) float64 {
	nu, nv := u.Norm(), v.Norm()
	if nu < 1e-12 || nv < 1e-12 {
		return 0
	}
	cos := u.Dot(v) / (nu * nv)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// DirectionDiffDeg returns how far the directions of u and v diverge,
// ignoring orientation: two vectors pointing along the same line in either
// direction have a difference of 0. Result is in [0, 90].
func DirectionDiffDeg(u, v Point2D) float64 {
	d := AngleBetweenDeg(u, v)
	if d > 90 {
		d = 180 - d
	}
	return d
}
