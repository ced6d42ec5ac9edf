package scene

import (
	"math"
	"sort"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

// Edge is a directed arc of one shape's boundary between two consecutive
// intersection nodes in theta-order on that shape, or a full boundary loop
// if the shape has no intersections (N0 == N1 == -1).
type Edge struct {
	Idx                 int
	Set                 int
	N0, N1              int
	Theta0, Theta1      dual.Dual
	Containers          []int
	IsComponentBoundary bool
	ComponentIdx        int
}

type nodeTheta struct {
	nodeIdx int
	theta   dual.Dual
}

// buildEdges slices every shape's boundary at its incident nodes (in
// theta-order) into edges, and records each edge's container set: the other
// shapes whose interior contains a sample point at the edge's theta-midpoint.
func buildEdges(shapes []shape.Shape, nodes []*Node) []*Edge {
	var edges []*Edge
	for s, sh := range shapes {
		var incident []nodeTheta
		for _, n := range nodes {
			if th, ok := n.Thetas[s]; ok {
				incident = append(incident, nodeTheta{n.Idx, th})
			}
		}
		sort.Slice(incident, func(i, j int) bool { return incident[i].theta.V < incident[j].theta.V })

		if len(incident) < 2 {
			edges = append(edges, newEdge(len(edges), s, -1, -1,
				dual.Const(0, gradLen(sh)), dual.Const(2*math.Pi, gradLen(sh)), shapes, sh))
			continue
		}

		n := len(incident)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			a, b := incident[i], incident[j]
			theta1 := b.theta
			if j == 0 {
				// Wraps past a full revolution: keep theta1 > theta0 so
				// downstream angle-swept arithmetic (secantArea, sampling)
				// stays monotonic instead of spuriously negative.
				theta1 = dual.AddF(b.theta, 2*math.Pi)
			}
			mid := dual.DivF(dual.Add(a.theta, theta1), 2)
			e := newEdgeAt(len(edges), s, a.nodeIdx, b.nodeIdx, a.theta, theta1, mid, shapes, sh)
			edges = append(edges, e)
		}
	}
	return edges
}

func gradLen(sh shape.Shape) int {
	for _, p := range sh.Params() {
		return p.Len()
	}
	return 0
}

func newEdge(idx, set, n0, n1 int, theta0, theta1 dual.Dual, shapes []shape.Shape, self shape.Shape) *Edge {
	mid := dual.DivF(dual.Add(theta0, theta1), 2)
	return newEdgeAt(idx, set, n0, n1, theta0, theta1, mid, shapes, self)
}

func newEdgeAt(idx, set, n0, n1 int, theta0, theta1, mid dual.Dual, shapes []shape.Shape, self shape.Shape) *Edge {
	sample := self.PointAtTheta(mid)
	var containers []int
	for t, other := range shapes {
		if t == set {
			continue
		}
		if other.Contains(sample) {
			containers = append(containers, t)
		}
	}
	return &Edge{
		Idx: idx, Set: set, N0: n0, N1: n1,
		Theta0: theta0, Theta1: theta1,
		Containers: containers,
	}
}

// direction returns the unit tangent direction departing node fromNode along
// e, used only to order candidate edges during face tracing.
func (e *Edge) direction(fromNode int, sh shape.Shape) shape.Point {
	const eps = 1e-4
	var p0, p1 shape.Point
	if fromNode == e.N0 {
		p0 = sh.PointAtTheta(e.Theta0)
		p1 = sh.PointAtTheta(dual.AddF(e.Theta0, eps))
	} else {
		p0 = sh.PointAtTheta(e.Theta1)
		p1 = sh.PointAtTheta(dual.AddF(e.Theta1, -eps))
	}
	dx, dy := p1.X.V-p0.X.V, p1.Y.V-p0.Y.V
	n := math.Hypot(dx, dy)
	if n == 0 {
		return shape.Point{}
	}
	return shape.Point{X: dual.Const(dx/n, 0), Y: dual.Const(dy/n, 0)}
}

// arrivalDirection returns the unit tangent direction of travel at the
// moment of arriving at toNode, used to compute the reference angle a face
// trace turns from.
func (e *Edge) arrivalDirection(toNode int, sh shape.Shape) shape.Point {
	const eps = 1e-4
	var p0, p1 shape.Point
	if toNode == e.N1 {
		p0 = sh.PointAtTheta(dual.AddF(e.Theta1, -eps))
		p1 = sh.PointAtTheta(e.Theta1)
	} else {
		p0 = sh.PointAtTheta(dual.AddF(e.Theta0, eps))
		p1 = sh.PointAtTheta(e.Theta0)
	}
	dx, dy := p1.X.V-p0.X.V, p1.Y.V-p0.Y.V
	n := math.Hypot(dx, dy)
	if n == 0 {
		return shape.Point{}
	}
	return shape.Point{X: dual.Const(dx/n, 0), Y: dual.Const(dy/n, 0)}
}

// isLoop reports whether e is a full boundary loop with no intersections.
func (e *Edge) isLoop() bool { return e.N0 == -1 && e.N1 == -1 }
