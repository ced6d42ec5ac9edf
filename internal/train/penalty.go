package train

import (
	"strings"

	"github.com/runsascoded/shapes/internal/dual"
	"github.com/runsascoded/shapes/internal/shape"
	"github.com/runsascoded/shapes/internal/targets"
)

// addMissingRegionPenalty adds a gradient-only correction (it never moves
// Error's value, only its slope) for every disjoint target region that
// should exist but has zero area in the current Scene: shapes that should
// overlap but don't are pulled toward their shared centroid; a region
// nested one level too deep inside an existing parent is pushed apart from
// that parent's shapes instead, scaled by how much of the total target
// mass the missing regions represent.
func addMissingRegionPenalty(errSum dual.Dual, shapes []shape.Shape, errs map[string]RegionError, disjoint targets.Map, totalTargetArea float64) dual.Dual {
	type missingRegion struct {
		key    string
		target float64
	}
	var missing []missingRegion
	for key, target := range disjoint {
		if target.V <= 0 {
			continue
		}
		if e, ok := errs[key]; ok && !e.exists() {
			missing = append(missing, missingRegion{key, target.V})
		}
	}
	if len(missing) == 0 {
		return errSum
	}

	n := errSum.Len()
	disjointPenalty := dual.Const(0, n)
	containedPenalty := dual.Const(0, n)
	var totalMissingDisjoint, totalMissingContained float64

	for _, m := range missing {
		setIdxs := setIndices(m.key)
		centroid := centroidOf(shapes, setIdxs)
		parentsKey := strings.ReplaceAll(m.key, "-", "*")
		if parentsErr, ok := errs[parentsKey]; ok && parentsErr.exists() {
			var parentIdxs []int
			for idx := 0; idx < len(parentsKey); idx++ {
				if parentsKey[idx] != '*' {
					continue
				}
				parentKey := m.key[:idx] + string(targets.IndexChar(idx)) + m.key[idx+1:]
				if e, ok := errs[parentKey]; ok && e.exists() {
					parentIdxs = append(parentIdxs, idx)
				}
			}
			np := float64(len(parentIdxs))
			for _, pIdx := range parentIdxs {
				dist := shape.Norm(shape.Sub(shapes[pIdx].Center(), centroid))
				if dist.V == 0 {
					continue
				}
				containedPenalty = dual.Add(containedPenalty, dual.MulF(dual.Recip(dist), m.target/np))
			}
			totalMissingContained += m.target
		} else {
			nf := float64(len(setIdxs))
			for _, idx := range setIdxs {
				dist := shape.Norm(shape.Sub(shapes[idx].Center(), centroid))
				disjointPenalty = dual.Add(disjointPenalty, dual.MulF(dist, m.target/nf))
			}
			totalMissingDisjoint += m.target
		}
	}

	if disjointPenalty.V > 0 {
		scale := totalMissingDisjoint / disjointPenalty.V / totalTargetArea
		errSum = dual.Add(errSum, dual.New(0, dual.MulF(disjointPenalty, scale).D))
	}
	if containedPenalty.V > 0 {
		scale := totalMissingContained / containedPenalty.V / totalTargetArea
		errSum = dual.Add(errSum, dual.New(0, dual.MulF(containedPenalty, scale).D))
	}
	return errSum
}

func setIndices(key string) []int {
	var idxs []int
	for i := 0; i < len(key); i++ {
		if key[i] != '-' && key[i] != '*' {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func centroidOf(shapes []shape.Shape, idxs []int) shape.Point {
	sum := shapes[idxs[0]].Center()
	for _, idx := range idxs[1:] {
		sum = shape.Add(sum, shapes[idx].Center())
	}
	nf := float64(len(idxs))
	return shape.Point{X: dual.DivF(sum.X, nf), Y: dual.DivF(sum.Y, nf)}
}

// addPolygonPenalty adds a gradient-only correction discouraging
// self-intersecting or highly irregular polygons, weighted down relative
// to the area error so it guides rather than dominates optimization.
func addPolygonPenalty(errSum dual.Dual, shapes []shape.Shape) dual.Dual {
	n := errSum.Len()
	total := dual.Const(0, n)
	for _, s := range shapes {
		poly, ok := s.(shape.Polygon)
		if !ok {
			continue
		}
		if p := poly.SelfIntersectionPenalty(); p.V > 0 {
			total = dual.Add(total, p)
		}
		if p := poly.RegularityPenalty(); p.V > 0 {
			total = dual.Add(total, dual.MulF(p, 0.01))
		}
	}
	if total.V > 0 {
		errSum = dual.Add(errSum, dual.New(0, total.D))
	}
	return errSum
}
