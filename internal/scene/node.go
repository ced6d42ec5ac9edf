package scene

import (
	"math"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

// Node is a distinct intersection point, merged by 2D proximity from the raw
// pairwise intersection list. Thetas records, for each shape meeting here,
// the parametric boundary angle at which it does so.
type Node struct {
	Idx      int
	P        shape.Point
	Thetas   map[int]dual.Dual
	EdgeIdxs []int

	mergedCount int
}

// mergeThreshold is the default proximity tolerance for coalescing raw
// intersection points into a single Node.
const mergeThreshold = 1e-10

func dist(a, b shape.Point) float64 {
	dx := a.X.V - b.X.V
	dy := a.Y.V - b.Y.V
	return math.Sqrt(dx*dx + dy*dy)
}

// rawPoint is one boundary crossing between two shapes, before merging.
type rawPoint struct {
	p          shape.Point
	s0, s1     int
	t0, t1     dual.Dual
}

// mergeNodes coalesces raw intersection points within mergeThreshold of each
// other into Nodes, averaging their positions and unioning their per-shape
// theta entries.
func mergeNodes(raw []rawPoint) []*Node {
	var nodes []*Node
	for _, r := range raw {
		var target *Node
		for _, n := range nodes {
			if dist(n.P, r.p) < mergeThreshold {
				target = n
				break
			}
		}
		if target == nil {
			target = &Node{Idx: len(nodes), Thetas: map[int]dual.Dual{}}
			nodes = append(nodes, target)
		}
		target.P = averagePoint(target, float64(target.mergedCount), r.p)
		target.mergedCount++
		target.Thetas[r.s0] = r.t0
		target.Thetas[r.s1] = r.t1
	}
	return nodes
}

// averagePoint folds a new sample into a node's running-average position.
func averagePoint(n *Node, priorCount float64, p shape.Point) shape.Point {
	if priorCount == 0 {
		return p
	}
	total := priorCount + 1
	return shape.Point{
		X: dual.DivF(dual.Add(dual.MulF(n.P.X, priorCount), p.X), total),
		Y: dual.DivF(dual.Add(dual.MulF(n.P.Y, priorCount), p.Y), total),
	}
}
