// Package wire projects the Dual-valued internal model (shape, scene,
// train) into plain JSON-friendly data: every Dual collapses to its .V,
// every pointer-linked graph collapses to index slices. This is the stable
// boundary a websocket viewer, HTTP handler, or the wasm binding sits
// behind, grounded on the teacher's internal/engine/commands.go
// (DrawCommandsToJSON's flat command-struct-plus-JSON-marshal pattern) and
// on original_source/apvd-core/src/analysis/regions.rs's From<&T> projection
// structs.
package wire

import (
	"encoding/json"
	"strings"

	"github.com/runsascoded/shapes/internal/scene"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
	"github.com/runsascoded/shapes/internal/train"
)

// Point is a plain 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(p shape.Point) Point { return Point{X: p.X.V, Y: p.Y.V} }

// Shape is a tagged union over the four primitives, fields populated
// according to Kind and the rest left zero, mirroring the teacher's
// DrawCommand's one-struct-many-ops-with-omitempty shape.
type Shape struct {
	Kind     string  `json:"kind"`
	Cx       float64 `json:"cx,omitempty"`
	Cy       float64 `json:"cy,omitempty"`
	R        float64 `json:"r,omitempty"`
	Rx       float64 `json:"rx,omitempty"`
	Ry       float64 `json:"ry,omitempty"`
	T        float64 `json:"t,omitempty"`
	Vertices []Point `json:"vertices,omitempty"`
}

// FromShape projects a shape.Shape into its plain-data form.
func FromShape(s shape.Shape) Shape {
	switch v := s.(type) {
	case shape.Circle:
		return Shape{Kind: string(shape.KindCircle), Cx: v.Cx.V, Cy: v.Cy.V, R: v.R.V}
	case shape.XYRR:
		return Shape{Kind: string(shape.KindXYRR), Cx: v.Cx.V, Cy: v.Cy.V, Rx: v.Rx.V, Ry: v.Ry.V}
	case shape.XYRRT:
		return Shape{Kind: string(shape.KindXYRRT), Cx: v.Cx.V, Cy: v.Cy.V, Rx: v.Rx.V, Ry: v.Ry.V, T: v.T.V}
	case shape.Polygon:
		vertices := make([]Point, len(v.Vertices))
		for i, p := range v.Vertices {
			vertices[i] = pointOf(p)
		}
		return Shape{Kind: string(shape.KindPolygon), Vertices: vertices}
	default:
		return Shape{Kind: string(s.Kind())}
	}
}

// Node is a merged intersection point plus the edges incident to it.
type Node struct {
	P        Point `json:"p"`
	EdgeIdxs []int `json:"edgeIdxs"`
}

// Edge is one directed arc of a shape's boundary between two nodes.
type Edge struct {
	Set                 int     `json:"set"`
	Node0Idx            int     `json:"node0Idx"`
	Node1Idx            int     `json:"node1Idx"`
	Theta0              float64 `json:"theta0"`
	Theta1              float64 `json:"theta1"`
	ContainerIdxs       []int   `json:"containerIdxs"`
	IsComponentBoundary bool    `json:"isComponentBoundary"`
}

// Segment is a directed traversal of one Edge.
type Segment struct {
	EdgeIdx int  `json:"edgeIdx"`
	Fwd     bool `json:"fwd"`
}

func segmentsOf(segs []scene.Segment) []Segment {
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i] = Segment{EdgeIdx: s.EdgeIdx, Fwd: s.Fwd}
	}
	return out
}

// Region is a connected open area of the plane with its signed area and
// membership key.
type Region struct {
	Key                string    `json:"key"`
	Segments           []Segment `json:"segments"`
	Area               float64   `json:"area"`
	ContainerIdxs      []int     `json:"containerIdxs"`
	ChildComponentIdxs []int     `json:"childComponentIdxs"`
}

// Component is a maximal connected set of edges, its regions, and its outer
// hull.
type Component struct {
	Key                string    `json:"key"`
	SetIdxs            []int     `json:"setIdxs"`
	NodeIdxs           []int     `json:"nodeIdxs"`
	EdgeIdxs           []int     `json:"edgeIdxs"`
	Regions            []Region  `json:"regions"`
	Hull               []Segment `json:"hull"`
	ContainerSetIdxs   []int     `json:"containerSetIdxs"`
	ChildComponentIdxs []int     `json:"childComponentIdxs"`
}

// componentKey renders a Component's SetIdxs as a region key with no
// wildcards, e.g. {0,2} of 3 shapes -> "0-2".
func componentKey(setIdxs []int, n int) string {
	key := make([]byte, n)
	for i := range key {
		key[i] = '-'
	}
	for _, i := range setIdxs {
		key[i] = targets.IndexChar(i)
	}
	return string(key)
}

// Scene is the plain-data projection of a scene.Scene.
type Scene struct {
	Shapes     []Shape     `json:"shapes"`
	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
	Components []Component `json:"components"`
}

// FromScene projects a scene.Scene.
func FromScene(sc *scene.Scene) Scene {
	n := len(sc.Shapes)

	shapes := make([]Shape, n)
	for i, s := range sc.Shapes {
		shapes[i] = FromShape(s)
	}

	nodes := make([]Node, len(sc.Nodes))
	for i, node := range sc.Nodes {
		nodes[i] = Node{P: pointOf(node.P), EdgeIdxs: append([]int{}, node.EdgeIdxs...)}
	}

	edges := make([]Edge, len(sc.Edges))
	for i, e := range sc.Edges {
		edges[i] = Edge{
			Set: e.Set, Node0Idx: e.N0, Node1Idx: e.N1,
			Theta0: e.Theta0.V, Theta1: e.Theta1.V,
			ContainerIdxs:       append([]int{}, e.Containers...),
			IsComponentBoundary: e.IsComponentBoundary,
		}
	}

	components := make([]Component, len(sc.Components))
	for i, c := range sc.Components {
		regions := make([]Region, len(c.Regions))
		for j, r := range c.Regions {
			regions[j] = Region{
				Key:                r.Key,
				Segments:           segmentsOf(r.Segments),
				Area:               r.Area.V,
				ContainerIdxs:      append([]int{}, r.ContainerIdxs...),
				ChildComponentIdxs: append([]int{}, r.ChildComponentIdxs...),
			}
		}
		components[i] = Component{
			Key:                componentKey(c.SetIdxs, n),
			SetIdxs:            append([]int{}, c.SetIdxs...),
			NodeIdxs:           append([]int{}, c.NodeIdxs...),
			EdgeIdxs:           append([]int{}, c.EdgeIdxs...),
			Regions:            regions,
			Hull:               segmentsOf(c.Hull),
			ContainerSetIdxs:   append([]int{}, c.ContainerSetIdxs...),
			ChildComponentIdxs: append([]int{}, c.ChildComponentIdxs...),
		}
	}

	return Scene{Shapes: shapes, Nodes: nodes, Edges: edges, Components: components}
}

// RegionError is the plain-data projection of a train.RegionError.
type RegionError struct {
	Key        string  `json:"key"`
	ActualArea float64 `json:"actualArea"`
	ActualFrac float64 `json:"actualFrac"`
	TargetArea float64 `json:"targetArea"`
	TargetFrac float64 `json:"targetFrac"`
	Error      float64 `json:"error"`
}

// Step is the plain-data projection of a train.Step.
type Step struct {
	Shapes    []Shape                `json:"shapes"`
	Scene     Scene                  `json:"scene"`
	TotalArea float64                `json:"totalArea"`
	Errors    map[string]RegionError `json:"errors"`
	Error     float64                `json:"error"`
	Converged bool                   `json:"converged"`
}

// FromStep projects a train.Step.
func FromStep(s *train.Step) Step {
	shapes := make([]Shape, len(s.Shapes))
	for i, sh := range s.Shapes {
		shapes[i] = FromShape(sh)
	}
	errs := make(map[string]RegionError, len(s.Errors))
	for k, e := range s.Errors {
		errs[k] = RegionError{
			Key: e.Key, ActualArea: e.ActualArea, ActualFrac: e.ActualFrac,
			TargetArea: e.TargetArea, TargetFrac: e.TargetFrac, Error: e.Error.V,
		}
	}
	return Step{
		Shapes:    shapes,
		Scene:     FromScene(s.Scene),
		TotalArea: s.TotalArea.V,
		Errors:    errs,
		Error:     s.Error.V,
		Converged: s.Converged,
	}
}

// Model is the plain-data projection of a train.Model.
type Model struct {
	Steps     []Step  `json:"steps"`
	MinIdx    int     `json:"minIdx"`
	MinError  float64 `json:"minError"`
	RepeatIdx int     `json:"repeatIdx"`
}

// FromModel projects a train.Model.
func FromModel(m *train.Model) Model {
	steps := make([]Step, len(m.Steps))
	for i, s := range m.Steps {
		steps[i] = FromStep(s)
	}
	return Model{Steps: steps, MinIdx: m.MinIdx, MinError: m.MinError, RepeatIdx: m.RepeatIdx}
}

// TargetsMap projects a targets.Targets' disjoint (no-wildcard) entries into
// a plain key -> area map, the wire-level TargetsMap the external interface
// accepts and this type mirrors in reverse.
func TargetsMap(tg *targets.Targets) map[string]float64 {
	out := make(map[string]float64, len(tg.All))
	for k, v := range tg.All {
		if strings.ContainsRune(k, '*') {
			continue
		}
		out[k] = v.V
	}
	return out
}

// StepToJSON serializes a Step to JSON, following the teacher's
// DrawCommandsToJSON convention of returning a best-effort string alongside
// the error rather than leaving the caller with nothing to log.
func StepToJSON(s Step) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}

// ModelToJSON serializes a Model to JSON.
func ModelToJSON(m Model) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
