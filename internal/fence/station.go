package fence

import (
	"sort"

	"fence-planner/pkg/geometry"
)

// DeriveResult is the ordered station/span view of the post set.
type DeriveResult struct {
	Stations []Station
	Spans    []PostSpan

	// AnglesDeg maps post ids to the walked-path direction at each post's
	// station. Span-only consumers ignore it; there is a single deriver
	// rather than a stations-only and an angles-plus-stations variant.
	AnglesDeg map[string]float64
}

// DeriveStations walks the line graph from a degree-1 endpoint (or an
// arbitrary node when the network is a closed loop), accumulating
// cumulative distance per traversed line. Every post is projected onto the
// closest walked segment to receive a station; posts sort by station with
// id as the tie-break, and consecutive pairs further apart than the noise
// floor become spans.
func DeriveStations(lines []Line, posts []Post, env Env) DeriveResult {
	res := DeriveResult{AnglesDeg: make(map[string]float64)}
	if len(lines) == 0 || len(posts) == 0 {
		return res
	}

	net := BuildNetwork(lines, env)

	var start geometry.Point2D
	if leaves := net.LeafNodes(); len(leaves) > 0 {
		start = leaves[0]
	} else if first, ok := net.FirstNode(); ok {
		start = first
	} else {
		return res
	}

	segs := net.Walk(start)
	if len(segs) == 0 {
		return res
	}

	// Station each post at its closest point among all walked segments.
	for _, post := range posts {
		pt := env.Planar(post.Position)
		bestDist := -1.0
		var bestStation, bestAngle float64
		for _, s := range segs {
			sp := geometry.ProjectOntoSegment(pt, s.a, s.b)
			if bestDist < 0 || sp.Distance < bestDist {
				bestDist = sp.Distance
				t := sp.T
				if t < 0 {
					t = 0
				} else if t > 1 {
					t = 1
				}
				bestStation = s.baseMM + t*s.lenMM
				bestAngle = geometry.BearingDeg(s.a, s.b)
			}
		}
		res.Stations = append(res.Stations, Station{PostID: post.ID, StationMM: bestStation})
		res.AnglesDeg[post.ID] = bestAngle
	}

	sort.Slice(res.Stations, func(i, j int) bool {
		a, b := res.Stations[i], res.Stations[j]
		if a.StationMM != b.StationMM {
			return a.StationMM < b.StationMM
		}
		return a.PostID < b.PostID
	})

	for i := 1; i < len(res.Stations); i++ {
		prev, cur := res.Stations[i-1], res.Stations[i]
		if cur.StationMM-prev.StationMM <= env.Params.SpanNoiseFloorMM {
			continue
		}
		res.Spans = append(res.Spans, PostSpan{
			FromID:   prev.PostID,
			ToID:     cur.PostID,
			LengthMM: cur.StationMM - prev.StationMM,
		})
	}
	return res
}
