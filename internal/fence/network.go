package fence

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"fence-planner/pkg/geometry"
)

// netNode is a welded endpoint in the line network.
type netNode struct {
	id int64
	pt geometry.Point2D
}

func (n netNode) ID() int64 { return n.id }

// netEdge records which line produced a graph edge. One line is one edge;
// parallel duplicate lines collapse onto the first.
type netEdge struct {
	from, to int64
	lineID   string
}

// Network is the welded endpoint graph of the line set. It answers the
// degree, traversal and connectivity questions the merger, post generator
// and station deriver share.
type Network struct {
	g       *simple.WeightedUndirectedGraph
	byKey   map[string]int64
	nodes   map[int64]netNode
	edgeMap map[[2]int64]netEdge
	env     Env
}

// pointKey buckets planar coordinates at a tenth of a millimeter. Welded
// endpoints are bit-identical, so this only has to absorb float noise.
func (e Env) pointKey(pt geometry.Point2D) string {
	q := e.Meters(0.1)
	return fmt.Sprintf("%d:%d", int64(math.Round(pt.X/q)), int64(math.Round(pt.Y/q)))
}

// BuildNetwork constructs the endpoint graph for a line set. Lines are
// expected to have been welded; endpoints are matched by coordinate.
func BuildNetwork(lines []Line, env Env) *Network {
	n := &Network{
		g:       simple.NewWeightedUndirectedGraph(0, 0),
		byKey:   make(map[string]int64),
		nodes:   make(map[int64]netNode),
		edgeMap: make(map[[2]int64]netEdge),
		env:     env,
	}

	for _, l := range lines {
		from := n.node(env.Planar(l.A))
		to := n.node(env.Planar(l.B))
		if from == to {
			// Zero-length line; contributes a node but no edge.
			continue
		}
		key := edgeKey(from, to)
		if _, dup := n.edgeMap[key]; dup {
			continue
		}
		n.edgeMap[key] = netEdge{from: from, to: to, lineID: l.ID}
		n.g.SetWeightedEdge(simple.WeightedEdge{
			F: n.nodes[from], T: n.nodes[to], W: l.LengthMM,
		})
	}
	return n
}

func (n *Network) node(pt geometry.Point2D) int64 {
	key := n.env.pointKey(pt)
	if id, ok := n.byKey[key]; ok {
		return id
	}
	id := int64(len(n.byKey) + 1)
	n.byKey[key] = id
	node := netNode{id: id, pt: pt}
	n.nodes[id] = node
	n.g.AddNode(node)
	return id
}

func edgeKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

// Degree returns the number of lines meeting at the given planar point,
// or 0 if the point is not a network node.
func (n *Network) Degree(pt geometry.Point2D) int {
	id, ok := n.byKey[n.env.pointKey(pt)]
	if !ok {
		return 0
	}
	return n.g.From(id).Len()
}

// LeafNodes returns the planar points of all degree-1 endpoints, ordered
// deterministically.
func (n *Network) LeafNodes() []geometry.Point2D {
	var leaves []geometry.Point2D
	var ids []int64
	for id := range n.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if n.g.From(id).Len() == 1 {
			leaves = append(leaves, n.nodes[id].pt)
		}
	}
	return leaves
}

// ComponentCount returns the number of connected components in the network.
// A value above 1 means the drawing contains disjoint fence sections.
func (n *Network) ComponentCount() int {
	if n.g.Nodes().Len() == 0 {
		return 0
	}
	return len(topo.ConnectedComponents(n.g))
}

// walkedSegment is one traversed line with its cumulative start station.
type walkedSegment struct {
	a, b   geometry.Point2D
	baseMM float64
	lenMM  float64
	lineID string
}

// Walk traverses every edge once, depth-first from the given start node,
// accumulating cumulative distance (station) per traversed line. Branches
// restart from the station of the branch node, so each walked segment knows
// its distance from the walk origin along the path that reached it.
func (n *Network) Walk(start geometry.Point2D) []walkedSegment {
	startID, ok := n.byKey[n.env.pointKey(start)]
	if !ok {
		return nil
	}

	var segs []walkedSegment
	visited := make(map[[2]int64]bool)

	type frame struct {
		node   int64
		baseMM float64
	}
	stack := []frame{{node: startID}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// Deterministic neighbor order.
		var next []int64
		it := n.g.From(f.node)
		for it.Next() {
			next = append(next, it.Node().ID())
		}
		sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })

		for _, to := range next {
			key := edgeKey(f.node, to)
			if visited[key] {
				continue
			}
			visited[key] = true

			e := n.edgeMap[key]
			w, _ := n.g.Weight(f.node, to)
			segs = append(segs, walkedSegment{
				a:      n.nodes[f.node].pt,
				b:      n.nodes[to].pt,
				baseMM: f.baseMM,
				lenMM:  w,
				lineID: e.lineID,
			})
			stack = append(stack, frame{node: to, baseMM: f.baseMM + w})
		}
	}
	return segs
}

// FirstNode returns an arbitrary but deterministic node point, used as the
// walk origin when the network is a closed loop with no degree-1 endpoint.
func (n *Network) FirstNode() (geometry.Point2D, bool) {
	if len(n.nodes) == 0 {
		return geometry.Point2D{}, false
	}
	var minID int64 = -1
	for id := range n.nodes {
		if minID < 0 || id < minID {
			minID = id
		}
	}
	return n.nodes[minID].pt, true
}
