// Package geo converts between geographic coordinates and the local planar
// working frame, and snaps planar coordinates to a millimeter grid.
package geo

import (
	"math"

	"fence-planner/pkg/geometry"
)

// earthRadiusM is the WGS84 equatorial radius in meters.
const earthRadiusM = 6378137.0

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Projector maps geographic points into a local planar frame of meters,
// using an equirectangular projection about a fixed reference origin.
// The projection is linear, so its inverse is exact; all engine geometry
// happens in the planar frame and round-trips through geographic storage
// without accumulating error beyond float noise.
type Projector struct {
	origin Point
	cosLat float64
}

// NewProjector creates a projector anchored at the given origin.
func NewProjector(origin Point) *Projector {
	return &Projector{
		origin: origin,
		cosLat: math.Cos(origin.Lat * math.Pi / 180),
	}
}

// Origin returns the projector's reference origin.
func (p *Projector) Origin() Point {
	return p.origin
}

// ToPlanar projects a geographic point into local planar meters.
// X grows east, Y grows north.
func (p *Projector) ToPlanar(g Point) geometry.Point2D {
	return geometry.Point2D{
		X: (g.Lng - p.origin.Lng) * math.Pi / 180 * earthRadiusM * p.cosLat,
		Y: (g.Lat - p.origin.Lat) * math.Pi / 180 * earthRadiusM,
	}
}

// ToGeographic is the inverse of ToPlanar.
func (p *Projector) ToGeographic(pt geometry.Point2D) Point {
	return Point{
		Lat: p.origin.Lat + pt.Y/earthRadiusM*180/math.Pi,
		Lng: p.origin.Lng + pt.X/(earthRadiusM*p.cosLat)*180/math.Pi,
	}
}

// DistanceM returns the projected distance between two geographic points
// in planar meters.
func (p *Projector) DistanceM(a, b Point) float64 {
	return p.ToPlanar(a).Distance(p.ToPlanar(b))
}
