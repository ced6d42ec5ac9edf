// Package targets expands a sparse set of desired region areas into the
// full ternary map over every subset of the scene's shapes, using the
// inclusion-exclusion identity area(*) = area(-) + area(digit) at each
// character position of a region key.
package targets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/runsascoded/shapes/internal/dual"
)

// Map holds one area per region key. A key is a string with one character
// per shape: '-' (excluded), '*' (don't care, i.e. the union of excluded and
// included), or the shape's own index digit/letter (included).
type Map map[string]dual.Dual

// Targets is the fully expanded map of every region key to its target area,
// built from a sparse set of given areas.
type Targets struct {
	All       Map
	Given     map[string]bool
	N         int
	TotalArea dual.Dual
}

type neighborPair struct {
	ch1, ch2 byte
	k1, k2   string
}

// idxChar renders a shape index as the single character used in region
// keys: digits 0-9, then lowercase letters for indices 10-35.
func IndexChar(idx int) byte { return idxChar(idx) }

func idxChar(idx int) byte {
	if idx < 10 {
		return byte('0' + idx)
	}
	if idx < 36 {
		return byte('a' + idx - 10)
	}
	panic(fmt.Sprintf("targets: index %d out of range, at most 36 shapes supported", idx))
}

func neighbors(key string) []neighborPair {
	n := len(key)
	out := make([]neighborPair, n)
	for idx := 0; idx < n; idx++ {
		prefix, suffix := key[:idx], key[idx+1:]
		var c1, c2 byte
		switch key[idx] {
		case '-':
			c1, c2 = '*', idxChar(idx)
		case '*':
			c1, c2 = '-', idxChar(idx)
		default:
			c1, c2 = '-', '*'
		}
		out[idx] = neighborPair{
			ch1: c1, k1: prefix + string(c1) + suffix,
			ch2: c2, k2: prefix + string(c2) + suffix,
		}
	}
	return out
}

// orderedSet is a small sorted-insert queue standing in for a BTreeSet's
// pop-smallest-first iteration order.
type orderedSet struct{ keys []string }

func (s *orderedSet) insert(k string) {
	i := sort.SearchStrings(s.keys, k)
	if i < len(s.keys) && s.keys[i] == k {
		return
	}
	s.keys = append(s.keys, "")
	copy(s.keys[i+1:], s.keys[i:])
	s.keys[i] = k
}

func (s *orderedSet) popFirst() (string, bool) {
	if len(s.keys) == 0 {
		return "", false
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, true
}

// New expands given into the full map of 3^n region keys, via repeated
// application of area(*) = area(-) + area(digit) at each position until no
// more keys can be inferred.
func New(given Map) (*Targets, error) {
	if len(given) == 0 {
		return nil, fmt.Errorf("targets: at least one key required")
	}
	all := make(Map, len(given))
	var nParams int
	n := -1
	for k, v := range given {
		if n == -1 {
			n = len(k)
		} else if len(k) != n {
			return nil, fmt.Errorf("targets: key %q has length %d, want %d", k, len(k), n)
		}
		all[k] = v
		nParams = v.Len()
	}

	emptyKey := strings.Repeat("-", n)
	if _, ok := all[emptyKey]; !ok {
		all[emptyKey] = dual.Const(0, nParams)
	}

	queue := &orderedSet{}
	for k := range all {
		queue.insert(k)
	}

	max := 1
	for i := 0; i < n; i++ {
		max *= 3
	}

	for {
		k0, ok := queue.popFirst()
		if !ok {
			break
		}
		v0, haveV0 := all[k0]
		pairs := neighbors(k0)
		for idx := 0; idx < n; idx++ {
			ch0 := k0[idx]
			p := pairs[idx]
			v1, haveV1 := all[p.k1]
			v2, haveV2 := all[p.k2]

			type entry struct {
				ch     byte
				key    string
				v      dual.Dual
				known  bool
			}
			entries := []entry{
				{ch0, k0, v0, haveV0},
				{p.ch1, p.k1, v1, haveV1},
				{p.ch2, p.k2, v2, haveV2},
			}
			var somes, nones []entry
			for _, e := range entries {
				if e.known {
					somes = append(somes, e)
				} else {
					nones = append(nones, e)
				}
			}
			if len(somes) != 2 || len(nones) != 1 {
				continue
			}
			none := nones[0]
			var v dual.Dual
			if none.ch == '*' {
				v = dual.Add(somes[0].v, somes[1].v)
			} else {
				var allEntry, otherEntry entry
				if somes[0].ch == '*' {
					allEntry, otherEntry = somes[0], somes[1]
				} else {
					allEntry, otherEntry = somes[1], somes[0]
				}
				v = dual.Sub(allEntry.v, otherEntry.v)
			}
			all[none.key] = v
			queue.insert(none.key)
		}
	}

	if len(all) < max {
		return nil, fmt.Errorf("targets: only expanded to %d of 3^%d = %d keys", len(all), n, max)
	}

	allKey := strings.Repeat("*", n)
	totalArea, ok := all[allKey]
	if !ok {
		return nil, fmt.Errorf("targets: %q not found among %d expanded keys", allKey, len(all))
	}

	givenKeys := make(map[string]bool, len(given))
	for k := range given {
		givenKeys[k] = true
	}

	return &Targets{All: all, Given: givenKeys, N: n, TotalArea: totalArea}, nil
}

func (t *Targets) noneKey() string { return strings.Repeat("-", t.N) }

// Disjoints returns the basic (non-overlapping) region areas: every key with
// no '*' wildcard, excluding the all-excluded region.
func (t *Targets) Disjoints() Map {
	out := Map{}
	t.disjointsRec("", out)
	delete(out, t.noneKey())
	return out
}

func (t *Targets) disjointsRec(prefix string, out Map) {
	idx := len(prefix)
	if idx == t.N {
		out[prefix] = t.All[prefix]
		return
	}
	t.disjointsRec(prefix+"-", out)
	t.disjointsRec(prefix+string(idxChar(idx)), out)
}
