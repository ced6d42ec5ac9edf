package shape

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
)

// Polygon is a simple (possibly non-convex) polygon with at least 3 vertices,
// wound counterclockwise for a positive Area.
type Polygon struct {
	Vertices []Point
	Mask2    []bool // one entry per vertex; both x and y of a vertex share trainability
}

// NewPolygon builds a Polygon with every vertex trainable. It panics if
// fewer than three vertices are given, matching the original's invariant.
func NewPolygon(vertices []Point) Polygon {
	if len(vertices) < 3 {
		panic("shape: polygon must have at least 3 vertices")
	}
	mask := make([]bool, len(vertices))
	for i := range mask {
		mask[i] = true
	}
	return Polygon{Vertices: vertices, Mask2: mask}
}

func (p Polygon) Kind() Kind { return KindPolygon }

func (p Polygon) Params() []dual.Dual {
	out := make([]dual.Dual, 0, 2*len(p.Vertices))
	for _, v := range p.Vertices {
		out = append(out, v.X, v.Y)
	}
	return out
}

func (p Polygon) Mask() []bool {
	out := make([]bool, 0, 2*len(p.Vertices))
	for _, m := range p.Mask2 {
		out = append(out, m, m)
	}
	return out
}

// WithParams rebuilds the polygon's vertices from a flat (x0,y0,x1,y1,...)
// slice, same length as Params.
func (p Polygon) WithParams(params []dual.Dual) Shape {
	vertices := make([]Point, len(p.Vertices))
	for i := range vertices {
		vertices[i] = Point{X: params[2*i], Y: params[2*i+1]}
	}
	p.Vertices = vertices
	return p
}

func (p Polygon) Center() Point {
	n := float64(len(p.Vertices))
	sum := p.Vertices[0]
	for _, v := range p.Vertices[1:] {
		sum = Add(sum, v)
	}
	return Point{X: dual.DivF(sum.X, n), Y: dual.DivF(sum.Y, n)}
}

// Area computes the shoelace-formula area, signed positive for a
// counterclockwise winding.
func (p Polygon) Area() dual.Dual {
	n := len(p.Vertices)
	sum := dual.Const(0, p.Vertices[0].X.Len())
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		term := dual.Sub(dual.Mul(p.Vertices[i].X, p.Vertices[j].Y), dual.Mul(p.Vertices[j].X, p.Vertices[i].Y))
		sum = dual.Add(sum, term)
	}
	return dual.MulF(sum, 0.5)
}

// PointAtTheta returns the polygon boundary point whose angle from the
// centroid is theta, found by locating the edge theta falls within and
// interpolating. Matches the original's reliance on centroid-relative
// angle for boundary ordering (polygons have no natural "unit parameter").
func (p Polygon) PointAtTheta(theta dual.Dual) Point {
	c := p.Center()
	n := len(p.Vertices)
	target := wrapAngle(theta.V)
	for i := 0; i < n; i++ {
		v0 := p.Vertices[i]
		v1 := p.Vertices[(i+1)%n]
		a0 := wrapAngle(math.Atan2(v0.Y.V-c.Y.V, v0.X.V-c.X.V))
		a1 := wrapAngle(math.Atan2(v1.Y.V-c.Y.V, v1.X.V-c.X.V))
		if angleInArc(a0, a1, target) {
			span := a1 - a0
			if span < 0 {
				span += 2 * math.Pi
			}
			delta := target - a0
			if delta < 0 {
				delta += 2 * math.Pi
			}
			t := 0.0
			if span > 1e-12 {
				t = delta / span
			}
			return Point{
				X: dual.Add(v0.X, dual.MulF(dual.Sub(v1.X, v0.X), t)),
				Y: dual.Add(v0.Y, dual.MulF(dual.Sub(v1.Y, v0.Y), t)),
			}
		}
	}
	return p.Vertices[0]
}

func angleInArc(a0, a1, target float64) bool {
	span := a1 - a0
	if span < 0 {
		span += 2 * math.Pi
	}
	delta := target - a0
	if delta < 0 {
		delta += 2 * math.Pi
	}
	return delta <= span
}

// ThetaOfPoint returns p's angle relative to the polygon's centroid.
func (p Polygon) ThetaOfPoint(pt Point) dual.Dual {
	c := p.Center()
	return dual.Atan2(dual.Sub(pt.Y, c.Y), dual.Sub(pt.X, c.X))
}

// Contains reports whether pt lies within the polygon via the standard
// ray-casting parity test.
func (p Polygon) Contains(pt Point) bool {
	n := len(p.Vertices)
	inside := false
	x, y := pt.X.V, pt.Y.V
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := p.Vertices[i].X.V, p.Vertices[i].Y.V
		xj, yj := p.Vertices[j].X.V, p.Vertices[j].Y.V
		if (yi > y) != (yj > y) {
			xIntersect := xi + (y-yi)/(yj-yi)*(xj-xi)
			if x < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// UnitIntersections returns the points where this polygon's edges cross the
// unit circle x^2+y^2=1, used by the intersection engine when one member of
// a pair is a polygon transformed into the other shape's unit-circle frame.
func (p Polygon) UnitIntersections() []Point {
	n := len(p.Vertices)
	var out []Point
	for i := 0; i < n; i++ {
		p0 := p.Vertices[i]
		p1 := p.Vertices[(i+1)%n]
		dx := dual.Sub(p1.X, p0.X)
		dy := dual.Sub(p1.Y, p0.Y)

		a := dual.Add(dual.Mul(dx, dx), dual.Mul(dy, dy))
		b := dual.MulF(dual.Add(dual.Mul(p0.X, dx), dual.Mul(p0.Y, dy)), 2)
		cc := dual.SubF(dual.Add(dual.Mul(p0.X, p0.X), dual.Mul(p0.Y, p0.Y)), 1)

		disc := dual.Sub(dual.Mul(b, b), dual.MulF(dual.Mul(a, cc), 4))
		if disc.V < 0 {
			continue
		}
		sqrtDisc := dual.Sqrt(disc)
		a2 := dual.MulF(a, 2)

		for _, t := range []dual.Dual{
			dual.Div(dual.Sub(dual.Neg(b), sqrtDisc), a2),
			dual.Div(dual.Add(dual.Neg(b), sqrtDisc), a2),
		} {
			if t.V < -1e-12 || t.V > 1+1e-12 {
				continue
			}
			pt := Point{X: dual.Add(p0.X, dual.Mul(t, dx)), Y: dual.Add(p0.Y, dual.Mul(t, dy))}
			if pt.X.IsNormal() && pt.Y.IsNormal() {
				out = append(out, pt)
			}
		}
	}
	return out
}

// EdgeIntersect returns every point where one of this polygon's edges
// crosses one of another polygon's edges, via pairwise line-segment solves.
func (p Polygon) EdgeIntersect(o Polygon) []Point {
	n1, n2 := len(p.Vertices), len(o.Vertices)
	var out []Point
	for i := 0; i < n1; i++ {
		a0, a1 := p.Vertices[i], p.Vertices[(i+1)%n1]
		for j := 0; j < n2; j++ {
			b0, b1 := o.Vertices[j], o.Vertices[(j+1)%n2]
			if pt, ok := segmentIntersect(a0, a1, b0, b1); ok {
				out = append(out, pt)
			}
		}
	}
	return out
}

func segmentIntersect(a0, a1, b0, b1 Point) (Point, bool) {
	daX, daY := dual.Sub(a1.X, a0.X), dual.Sub(a1.Y, a0.Y)
	dbX, dbY := dual.Sub(b1.X, b0.X), dual.Sub(b1.Y, b0.Y)
	denom := dual.Sub(dual.Mul(daX, dbY), dual.Mul(daY, dbX))
	if math.Abs(denom.V) < 1e-10 {
		return Point{}, false
	}
	diffX, diffY := dual.Sub(b0.X, a0.X), dual.Sub(b0.Y, a0.Y)
	s := dual.Div(dual.Sub(dual.Mul(diffX, dbY), dual.Mul(diffY, dbX)), denom)
	t := dual.Div(dual.Sub(dual.Mul(diffX, daY), dual.Mul(diffY, daX)), denom)
	if s.V < 0 || s.V > 1 || t.V < 0 || t.V > 1 {
		return Point{}, false
	}
	pt := Point{X: dual.Add(a0.X, dual.Mul(s, daX)), Y: dual.Add(a0.Y, dual.Mul(s, daY))}
	if !pt.X.IsNormal() || !pt.Y.IsNormal() {
		return Point{}, false
	}
	return pt, true
}

// RegularityPenalty penalizes non-uniform edge lengths and concave vertices,
// used as a training-loss term that discourages degenerate polygon shapes.
func (p Polygon) RegularityPenalty() dual.Dual {
	n := len(p.Vertices)
	nParams := p.Vertices[0].X.Len()
	if n < 3 {
		return dual.Const(0, nParams)
	}

	edges := make([]dual.Dual, n)
	for i := 0; i < n; i++ {
		v0, v1 := p.Vertices[i], p.Vertices[(i+1)%n]
		dx := dual.Sub(v1.X, v0.X)
		dy := dual.Sub(v1.Y, v0.Y)
		edges[i] = dual.Sqrt(dual.Add(dual.Mul(dx, dx), dual.Mul(dy, dy)))
	}
	meanEdge := dual.DivF(dual.Sum(edges), float64(n))

	penalty := dual.Const(0, nParams)
	for _, edge := range edges {
		diff := dual.Sub(edge, meanEdge)
		penalty = dual.Add(penalty, dual.Mul(diff, diff))
	}

	for i := 0; i < n; i++ {
		v0 := p.Vertices[(i+n-1)%n]
		v1 := p.Vertices[i]
		v2 := p.Vertices[(i+1)%n]
		dx1, dy1 := dual.Sub(v1.X, v0.X), dual.Sub(v1.Y, v0.Y)
		dx2, dy2 := dual.Sub(v2.X, v1.X), dual.Sub(v2.Y, v1.Y)
		cross := dual.Sub(dual.Mul(dx1, dy2), dual.Mul(dy1, dx2))
		if cross.V < 0 {
			penalty = dual.Sub(penalty, dual.MulF(cross, 0.1))
		}
	}
	return penalty
}

// SelfIntersectionPenalty returns a soft penalty, growing with the depth of
// any actual crossing between non-adjacent edges; zero for a simple polygon.
func (p Polygon) SelfIntersectionPenalty() dual.Dual {
	n := len(p.Vertices)
	nParams := p.Vertices[0].X.Len()
	penalty := dual.Const(0, nParams)
	if n < 4 {
		return penalty
	}
	for i := 0; i < n; i++ {
		a0, a1 := p.Vertices[i], p.Vertices[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if j == (i+n-1)%n || (i == 0 && j == n-1) {
				continue
			}
			b0, b1 := p.Vertices[j], p.Vertices[(j+1)%n]
			bx, by := dual.Sub(b1.X, b0.X), dual.Sub(b1.Y, b0.Y)
			d1 := dual.Sub(dual.Mul(bx, dual.Sub(a0.Y, b0.Y)), dual.Mul(by, dual.Sub(a0.X, b0.X)))
			d2 := dual.Sub(dual.Mul(bx, dual.Sub(a1.Y, b0.Y)), dual.Mul(by, dual.Sub(a1.X, b0.X)))
			if !((d1.V > 0 && d2.V < 0) || (d1.V < 0 && d2.V > 0)) {
				continue
			}
			ax, ay := dual.Sub(a1.X, a0.X), dual.Sub(a1.Y, a0.Y)
			d3 := dual.Sub(dual.Mul(ax, dual.Sub(b0.Y, a0.Y)), dual.Mul(ay, dual.Sub(b0.X, a0.X)))
			d4 := dual.Sub(dual.Mul(ax, dual.Sub(b1.Y, a0.Y)), dual.Mul(ay, dual.Sub(b1.X, a0.X)))
			if !((d3.V > 0 && d4.V < 0) || (d3.V < 0 && d4.V > 0)) {
				continue
			}
			minD := dual.Abs(d1)
			for _, d := range []dual.Dual{d2, d3, d4} {
				if ad := dual.Abs(d); ad.V < minD.V {
					minD = ad
				}
			}
			penalty = dual.Add(penalty, dual.MulF(minD, 10))
		}
	}
	return penalty
}

// IsSelfIntersecting reports whether any non-adjacent edge pair crosses.
func (p Polygon) IsSelfIntersecting() bool {
	return p.SelfIntersectionPenalty().V > 0
}
