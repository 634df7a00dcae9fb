package fence

import (
	"fmt"

	"fence-planner/internal/geo"
	"fence-planner/pkg/geometry"
)

var testOrigin = geo.Point{Lat: -33.865, Lng: 151.2094}

func testEnv() Env {
	return NewEnv(geo.NewProjector(testOrigin), DefaultParams(), 1)
}

// gp converts planar meters to a quantized geographic point.
func gp(env Env, x, y float64) geo.Point {
	return env.Quantize(env.Geographic(geometry.Point2D{X: x, Y: y}))
}

func testLine(env Env, id string, x1, y1, x2, y2 float64) Line {
	return env.Refresh(Line{ID: id, A: gp(env, x1, y1), B: gp(env, x2, y2)})
}

func counterIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func findPostAt(posts []Post, env Env, x, y float64) *Post {
	want := geometry.Point2D{X: x, Y: y}
	for i := range posts {
		if env.Planar(posts[i].Position).Distance(want) < 0.01 {
			return &posts[i]
		}
	}
	return nil
}
