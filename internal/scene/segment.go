package scene

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

// Segment is a directed traversal of one Edge: Fwd true walks it from N0 to
// N1 (theta increasing), false walks it the other way.
type Segment struct {
	EdgeIdx int
	Fwd     bool
}

func (s Segment) startNode(edges []*Edge) int {
	e := edges[s.EdgeIdx]
	if s.Fwd {
		return e.N0
	}
	return e.N1
}

func (s Segment) endNode(edges []*Edge) int {
	e := edges[s.EdgeIdx]
	if s.Fwd {
		return e.N1
	}
	return e.N0
}

func (s Segment) thetas(edges []*Edge) (dual.Dual, dual.Dual) {
	e := edges[s.EdgeIdx]
	if s.Fwd {
		return e.Theta0, e.Theta1
	}
	return e.Theta1, e.Theta0
}

func (s Segment) points(edges []*Edge, nodes []*Node, sh shape.Shape) (shape.Point, shape.Point) {
	e := edges[s.EdgeIdx]
	if e.isLoop() {
		t0, t1 := s.thetas(edges)
		return sh.PointAtTheta(t0), sh.PointAtTheta(t1)
	}
	return nodes[s.startNode(edges)].P, nodes[s.endNode(edges)].P
}

// chordArea is the shoelace contribution of the straight line between a
// segment's endpoints, about the origin.
func chordArea(p0, p1 shape.Point) dual.Dual {
	return dual.MulF(dual.Sub(dual.Mul(p0.X, p1.Y), dual.Mul(p0.Y, p1.X)), 0.5)
}

// secantArea is the correction between that straight chord and the true
// boundary arc between the same two points: the signed area swept by the
// curve x(theta),y(theta) from theta0 to theta1, about the origin, minus the
// chord's own shoelace term. It relies on the ellipse-sector identity
// x*y' - y*x' = rx*ry (constant along the parametrization, rotation- and
// translation-invariant), so it needs only the shape's Center and Area — not
// its concrete rx/ry/rotation fields — and is exactly 0 for a Polygon, whose
// edges already are straight lines.
func secantArea(sh shape.Shape, theta0, theta1 dual.Dual, p0, p1 shape.Point) dual.Dual {
	if sh.Kind() == shape.KindPolygon {
		return dual.Const(0, theta0.Len())
	}
	center := sh.Center()
	rxry := dual.DivF(sh.Area(), math.Pi)
	dtheta := dual.Sub(theta1, theta0)
	arc := dual.MulF(
		dual.Add(
			dual.Sub(dual.Mul(center.X, dual.Sub(p1.Y, p0.Y)), dual.Mul(center.Y, dual.Sub(p1.X, p0.X))),
			dual.Mul(rxry, dtheta),
		),
		0.5,
	)
	return dual.Sub(arc, chordArea(p0, p1))
}

// area returns this segment's full contribution (chord + secant) to its
// region's signed area.
func (s Segment) area(edges []*Edge, nodes []*Node, shapes []shape.Shape) dual.Dual {
	e := edges[s.EdgeIdx]
	sh := shapes[e.Set]
	t0, t1 := s.thetas(edges)
	p0, p1 := s.points(edges, nodes, sh)
	return dual.Add(chordArea(p0, p1), secantArea(sh, t0, t1, p0, p1))
}

// successors returns every directed segment departing the node this segment
// ends at, other than the reverse of this segment itself.
func successors(cur Segment, edges []*Edge, nodeEdgeIdxs []int) []Segment {
	endNode := cur.endNode(edges)
	var out []Segment
	for _, ei := range nodeEdgeIdxs {
		e := edges[ei]
		if e.N0 == endNode {
			if !(ei == cur.EdgeIdx && !cur.Fwd) {
				out = append(out, Segment{EdgeIdx: ei, Fwd: true})
			}
		}
		if e.N1 == endNode {
			if !(ei == cur.EdgeIdx && cur.Fwd) {
				out = append(out, Segment{EdgeIdx: ei, Fwd: false})
			}
		}
	}
	return out
}
