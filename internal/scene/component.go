package scene

import (
	"math"
	"sort"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
)

// Component is a maximal connected set of edges linked through shared
// nodes, or an isolated shape with no intersections.
type Component struct {
	Idx                int
	SetIdxs            []int
	NodeIdxs           []int
	EdgeIdxs           []int
	Regions            []*Region
	Hull               []Segment
	ContainerSetIdxs   []int
	ChildComponentIdxs []int
}

// Region is a connected open area of the plane enclosed by a directed
// segment cycle, identified by its membership key.
type Region struct {
	Key                 string
	Segments            []Segment
	ContainerIdxs       []int
	Area                dual.Dual
	ChildComponentIdxs  []int
}

func keyChar(i int) byte {
	if i < 10 {
		return byte('0' + i)
	}
	return byte('a' + i - 10)
}

func buildKey(n int, idxs []int) string {
	key := make([]byte, n)
	for i := range key {
		key[i] = '-'
	}
	for _, i := range idxs {
		key[i] = keyChar(i)
	}
	return string(key)
}

// buildComponent traces every face of one connected group of edges into
// Regions (positive signed area) plus the single outer Hull (negative,
// per spec.md's sign convention: CCW faces are regions, the one CW face is
// the component's outer boundary).
func buildComponent(idx int, setIdxs []int, shapes []shape.Shape, nodes []*Node, edges []*Edge) (*Component, error) {
	c := &Component{Idx: idx, SetIdxs: setIdxs}

	if len(setIdxs) == 1 {
		s := setIdxs[0]
		var loopEdge *Edge
		for _, e := range edges {
			if e.Set == s && e.isLoop() {
				loopEdge = e
				break
			}
		}
		if loopEdge != nil {
			loopEdge.IsComponentBoundary = true
			seg := Segment{EdgeIdx: loopEdge.Idx, Fwd: true}
			area := seg.area(edges, nodes, shapes)
			c.EdgeIdxs = []int{loopEdge.Idx}
			c.Regions = []*Region{{
				Key:           buildKey(len(shapes), []int{s}),
				Segments:      []Segment{seg},
				ContainerIdxs: []int{s},
				Area:          area,
			}}
			c.Hull = []Segment{{EdgeIdx: loopEdge.Idx, Fwd: false}}
			return c, nil
		}
	}

	nodeSet := map[int]bool{}
	var edgeIdxs []int
	for _, e := range edges {
		if !containsInt(setIdxs, e.Set) {
			continue
		}
		edgeIdxs = append(edgeIdxs, e.Idx)
		if !e.isLoop() {
			nodeSet[e.N0] = true
			nodeSet[e.N1] = true
		}
	}
	for n := range nodeSet {
		c.NodeIdxs = append(c.NodeIdxs, n)
	}
	sort.Ints(c.NodeIdxs)
	c.EdgeIdxs = edgeIdxs

	nodeEdges := map[int][]int{}
	for _, ei := range edgeIdxs {
		e := edges[ei]
		nodeEdges[e.N0] = append(nodeEdges[e.N0], ei)
		if e.N1 != e.N0 {
			nodeEdges[e.N1] = append(nodeEdges[e.N1], ei)
		}
	}

	visited := map[Segment]bool{}
	var allFaces [][]Segment
	for _, ei := range edgeIdxs {
		for _, fwd := range []bool{true, false} {
			start := Segment{EdgeIdx: ei, Fwd: fwd}
			if visited[start] {
				continue
			}
			face, err := traceFace(start, edges, shapes, nodeEdges, visited)
			if err != nil {
				return nil, err
			}
			allFaces = append(allFaces, face)
		}
	}

	hullCount := 0
	for _, face := range allFaces {
		area := dual.Const(0, gradLen(shapes[0]))
		var idxSet map[int]bool
		for _, seg := range face {
			area = dual.Add(area, seg.area(edges, nodes, shapes))
			e := edges[seg.EdgeIdx]
			edgeSet := map[int]bool{e.Set: true}
			for _, other := range e.Containers {
				edgeSet[other] = true
			}
			if idxSet == nil {
				idxSet = edgeSet
				continue
			}
			for i := range idxSet {
				if !edgeSet[i] {
					delete(idxSet, i)
				}
			}
		}
		if area.V < 0 {
			hullCount++
			c.Hull = face
			for _, seg := range face {
				edges[seg.EdgeIdx].IsComponentBoundary = true
			}
			continue
		}
		var idxs []int
		for i := range idxSet {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		if len(idxs) == 0 {
			return nil, newError(MalformedBoundary, "face traced with empty membership key")
		}
		c.Regions = append(c.Regions, &Region{
			Key:           buildKey(len(shapes), idxs),
			Segments:      face,
			ContainerIdxs: idxs,
			Area:          area,
		})
	}
	if hullCount != 1 {
		return nil, newError(MalformedBoundary, "component %d traced %d outer faces, want exactly 1", idx, hullCount)
	}
	return c, nil
}

// traceFace walks a face cycle starting from start, keeping the face's
// interior on the left of travel: at each node it turns into the outgoing
// segment that is the smallest clockwise turn from the direction it just
// arrived on, per spec.md 4.4 step 5.
func traceFace(start Segment, edges []*Edge, shapes []shape.Shape, nodeEdges map[int][]int, visited map[Segment]bool) ([]Segment, error) {
	var face []Segment
	cur := start
	for {
		if visited[cur] {
			return nil, newError(MalformedBoundary, "face trace revisited segment edge=%d fwd=%v before closing", cur.EdgeIdx, cur.Fwd)
		}
		visited[cur] = true
		face = append(face, cur)

		endNode := cur.endNode(edges)
		cands := successors(cur, edges, nodeEdges[endNode])
		if len(cands) == 0 {
			return nil, newError(MalformedBoundary, "no successor segment at node %d", endNode)
		}

		curEdge := edges[cur.EdgeIdx]
		sh := shapes[curEdge.Set]
		inDir := curEdge.arrivalDirection(endNode, sh)
		refAngle := math.Atan2(-inDir.Y.V, -inDir.X.V)

		// Among the candidates, the one that bounds this face keeps the
		// face's interior on the left of travel: the smallest clockwise
		// turn from the reversed incoming direction, i.e. the largest CCW
		// delta from it.
		best := cands[0]
		bestDelta := ccwDelta(refAngle, angleOf(best, edges, shapes))
		for _, cand := range cands[1:] {
			d := ccwDelta(refAngle, angleOf(cand, edges, shapes))
			if d > bestDelta {
				best, bestDelta = cand, d
			}
		}
		cur = best
		if cur == start {
			break
		}
	}
	return face, nil
}

func angleOf(s Segment, edges []*Edge, shapes []shape.Shape) float64 {
	e := edges[s.EdgeIdx]
	sh := shapes[e.Set]
	node := s.startNode(edges)
	d := e.direction(node, sh)
	return math.Atan2(d.Y.V, d.X.V)
}

func ccwDelta(ref, a float64) float64 {
	const tau = 2 * math.Pi
	d := math.Mod(a-ref, tau)
	if d < 0 {
		d += tau
	}
	if d == 0 {
		d = tau
	}
	return d
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
