package fence

import (
	"fence-planner/internal/geo"
	"fence-planner/pkg/geometry"
)

// projectOnLine projects a geographic point onto a line's planar segment.
func projectOnLine(l Line, p geo.Point, env Env) geometry.SegmentProjection {
	return geometry.ProjectOntoSegment(env.Planar(p), env.Planar(l.A), env.Planar(l.B))
}

// lerpPlanar returns the planar point at parametric position t along l.
func lerpPlanar(l Line, t float64, env Env) geometry.Point2D {
	return geometry.Lerp(env.Planar(l.A), env.Planar(l.B), t)
}

// direction returns l's unit direction vector A→B in the planar frame.
func direction(l Line, env Env) geometry.Point2D {
	return env.Planar(l.B).Sub(env.Planar(l.A)).Unit()
}

// endpoint returns the geographic point of the named end.
func endpoint(l Line, end LineEnd) geo.Point {
	if end == EndA {
		return l.A
	}
	return l.B
}

// otherEnd returns the opposite end name.
func otherEnd(end LineEnd) LineEnd {
	if end == EndA {
		return EndB
	}
	return EndA
}

// setEndpoint writes the geographic point of the named end.
func setEndpoint(l *Line, end LineEnd, p geo.Point) {
	if end == EndA {
		l.A = p
	} else {
		l.B = p
	}
}

// nearPoint reports whether two geographic points coincide within the weld
// tolerance.
func nearPoint(a, b geo.Point, env Env) bool {
	return env.Proj.DistanceM(a, b) <= env.WeldToleranceM()
}
