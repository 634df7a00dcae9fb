package geo

import (
	"math"

	"fence-planner/pkg/geometry"
)

// Quantize snaps a geographic point to a fixed millimeter grid in the local
// planar frame. stepMM is the grid pitch in real-world millimeters; scale
// converts planar meters to real-world meters (1.0 when the drawing is at
// true scale).
//
// Quantize is idempotent: quantizing an already-quantized point returns it
// bit-identically, so repeated edits converge to shared coordinates and
// endpoint coincidence can be tested with a small epsilon instead of exact
// equality.
func Quantize(p *Projector, g Point, stepMM, scale float64) Point {
	if stepMM <= 0 || scale <= 0 {
		return g
	}
	stepM := stepMM / 1000.0 / scale

	pt := p.ToPlanar(g)
	pt.X = math.Round(pt.X/stepM) * stepM
	pt.Y = math.Round(pt.Y/stepM) * stepM
	return p.ToGeographic(pt)
}

// QuantizePlanar snaps a planar point to the millimeter grid without the
// geographic round trip.
func QuantizePlanar(pt geometry.Point2D, stepMM, scale float64) geometry.Point2D {
	if stepMM <= 0 || scale <= 0 {
		return pt
	}
	stepM := stepMM / 1000.0 / scale
	return geometry.Point2D{
		X: math.Round(pt.X/stepM) * stepM,
		Y: math.Round(pt.Y/stepM) * stepM,
	}
}
