package geometry

import "math"

// SegmentProjection describes where a point lands relative to a segment.
type SegmentProjection struct {
	// T is the parametric position of the closest point on the infinite
	// line through the segment: 0 at A, 1 at B. Not clamped.
	T float64
	// Closest is the closest point on the segment (T clamped to [0,1]).
	Closest Point2D
	// Distance is the distance from the query point to Closest.
	Distance float64
}

// ProjectOntoSegment projects p onto the segment a-b.
func ProjectOntoSegment(p, a, b Point2D) SegmentProjection {
	d := b.Sub(a)
	len2 := d.Dot(d)
	if len2 < 1e-18 {
		// Segment is a point
		return SegmentProjection{T: 0, Closest: a, Distance: p.Distance(a)}
	}

	t := p.Sub(a).Dot(d) / len2

	tc := t
	if tc < 0 {
		tc = 0
	} else if tc > 1 {
		tc = 1
	}
	closest := Lerp(a, b, tc)

	return SegmentProjection{T: t, Closest: closest, Distance: p.Distance(closest)}
}

// PointToSegmentDistance returns the minimum distance from p to segment a-b.
func PointToSegmentDistance(p, a, b Point2D) float64 {
	return ProjectOntoSegment(p, a, b).Distance
}

// PerpendicularDistance returns the distance from p to the infinite line
// through a and b.
func PerpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}
	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	return num / math.Hypot(dx, dy)
}
