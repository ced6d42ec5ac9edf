// Package scene builds the immutable region decomposition of a shape
// configuration: pairwise intersections coalesced into nodes, shape
// boundaries sliced into edges at those nodes, edges grouped into connected
// components, and each component's faces traced into signed-area regions.
package scene

import (
	"sort"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/intersect"
	"github.com/runsascoded/shapes/internal/shape"
)

// Scene is the immutable analysis of one shape configuration.
type Scene struct {
	Shapes     []shape.Shape
	Nodes      []*Node
	Edges      []*Edge
	Components []*Component
}

// New runs the full pipeline in one pass: pairwise intersect, merge nodes,
// slice edges, union-find components, trace regions, assign containment.
func New(shapes []shape.Shape) (*Scene, error) {
	var raw []rawPoint
	for i := 0; i < len(shapes); i++ {
		for j := i + 1; j < len(shapes); j++ {
			for _, p := range intersect.Pair(shapes[i], shapes[j]) {
				raw = append(raw, rawPoint{
					p:  p,
					s0: i, s1: j,
					t0: shapes[i].ThetaOfPoint(p),
					t1: shapes[j].ThetaOfPoint(p),
				})
			}
		}
	}

	nodes := mergeNodes(raw)
	edges := buildEdges(shapes, nodes)
	for _, e := range edges {
		if e.isLoop() {
			continue
		}
		nodes[e.N0].EdgeIdxs = append(nodes[e.N0].EdgeIdxs, e.Idx)
		if e.N1 != e.N0 {
			nodes[e.N1].EdgeIdxs = append(nodes[e.N1].EdgeIdxs, e.Idx)
		}
	}

	groups := groupShapes(len(shapes), nodes)

	var components []*Component
	for ci, g := range groups {
		c, err := buildComponent(ci, g, shapes, nodes, edges)
		if err != nil {
			return nil, err
		}
		for _, r := range c.Regions {
			if len(r.ContainerIdxs) == 0 {
				return nil, newError(MalformedBoundary, "region with empty key in component %d", ci)
			}
		}
		components = append(components, c)
	}
	for _, e := range edges {
		for ci, c := range components {
			if containsInt(c.SetIdxs, e.Set) {
				e.ComponentIdx = ci
				break
			}
		}
	}

	s := &Scene{Shapes: shapes, Nodes: nodes, Edges: edges, Components: components}
	if err := s.assignContainment(); err != nil {
		return nil, err
	}
	return s, nil
}

// groupShapes union-finds shape indices that share at least one node,
// returning each connected group in sorted order (isolated shapes form
// singleton groups).
func groupShapes(n int, nodes []*Node) [][]int {
	uf := newUnionFind(n)
	for _, node := range nodes {
		var members []int
		for s := range node.Thetas {
			members = append(members, s)
		}
		for i := 1; i < len(members); i++ {
			uf.union(members[0], members[i])
		}
	}
	byRoot := map[int][]int{}
	for i := 0; i < n; i++ {
		r := uf.find(i)
		byRoot[r] = append(byRoot[r], i)
	}
	var roots []int
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Ints(roots)
	groups := make([][]int, 0, len(roots))
	for _, r := range roots {
		g := byRoot[r]
		sort.Ints(g)
		groups = append(groups, g)
	}
	return groups
}

type unionFind struct{ parent []int }

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// assignContainment determines, for every component, which other
// components' regions its representative point sits inside, registering the
// nesting relation both ways (Region.ChildComponentIdxs / Component's own
// ContainerSetIdxs).
func (s *Scene) assignContainment() error {
	for bi, b := range s.Components {
		rep := s.representativePoint(b)
		for ai, a := range s.Components {
			if ai == bi {
				continue
			}
			var inside []int
			for _, si := range a.SetIdxs {
				if s.Shapes[si].Contains(rep) {
					inside = append(inside, si)
				}
			}
			if len(inside) == 0 {
				continue
			}
			sort.Ints(inside)
			region := findRegion(a.Regions, inside)
			if region == nil {
				return newError(MissingContainerRegion, "component %d's point lies inside shapes %v of component %d but no matching region", bi, inside, ai)
			}
			region.ChildComponentIdxs = append(region.ChildComponentIdxs, bi)
			b.ContainerSetIdxs = append(b.ContainerSetIdxs, inside...)
		}
	}
	return nil
}

func (s *Scene) representativePoint(c *Component) shape.Point {
	if len(c.NodeIdxs) > 0 {
		return s.Nodes[c.NodeIdxs[0]].P
	}
	return s.Shapes[c.SetIdxs[0]].Center()
}

func findRegion(regions []*Region, idxs []int) *Region {
	for _, r := range regions {
		if len(r.ContainerIdxs) != len(idxs) {
			continue
		}
		match := true
		for i, v := range r.ContainerIdxs {
			if idxs[i] != v {
				match = false
				break
			}
		}
		if match {
			return r
		}
	}
	return nil
}

// Area returns the sum of every region's area whose key is compatible with
// key (which may contain '*' wildcards), across every component.
func (s *Scene) Area(key string) (dual.Dual, error) {
	if len(key) != len(s.Shapes) {
		return dual.Dual{}, newError(MalformedBoundary, "key length %d does not match %d shapes", len(key), len(s.Shapes))
	}
	var total dual.Dual
	found := false
	for _, c := range s.Components {
		for _, r := range c.Regions {
			if !keyMatches(key, r.Key) {
				continue
			}
			if !found {
				total = r.Area
				found = true
			} else {
				total = dual.Add(total, r.Area)
			}
		}
	}
	if !found {
		n := 0
		if len(s.Shapes) > 0 {
			n = gradLen(s.Shapes[0])
		}
		return dual.Const(0, n), nil
	}
	return total, nil
}

// keyMatches reports whether every non-wildcard character of query matches
// the corresponding character of candidate exactly.
func keyMatches(query, candidate string) bool {
	for i := 0; i < len(query); i++ {
		if query[i] == '*' {
			continue
		}
		if query[i] != candidate[i] {
			return false
		}
	}
	return true
}
