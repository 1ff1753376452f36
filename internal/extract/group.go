package extract

import (
	"github.com/pagecarve/pagecarve/internal/geom"
	"github.com/pagecarve/pagecarve/internal/svg"
)

// clipEqualEps is the coordinate tolerance when comparing effective clip
// bounds; clips resolved from the same drawing state can differ by float
// noise.
const clipEqualEps = 0.01

// GroupShapes merges candidates into shape groups by connectivity: two
// candidates join the same group iff their effective clips are equal (or
// both absent) and their absolute boxes overlap (touching counts).
// Merging is transitive via a disjoint-set structure, so the final
// partition does not depend on discovery order. Raster candidates never
// merge — neither with vector shapes (different compositing paths) nor
// with each other, since distinct placements of the same source image are
// legitimately separate artifacts.
//
// Groups whose box is smaller than minDim in both dimensions are dropped
// as decorative noise and never reach the compositor.
func GroupShapes(cands []ShapeCandidate, minDim float64) []ShapeGroup {
	n := len(cands)
	if n == 0 {
		return nil
	}

	ds := newDisjointSet(n)
	for i := range n {
		if cands[i].Kind == svg.KindRaster {
			continue
		}
		for j := i + 1; j < n; j++ {
			if cands[j].Kind == svg.KindRaster {
				continue
			}
			if !clipsEqual(cands[i].Clip, cands[j].Clip) {
				continue
			}
			if cands[i].Box.Overlaps(cands[j].Box) {
				ds.union(i, j)
			}
		}
	}

	// Assemble groups in first-member discovery order.
	groupIdx := make(map[int]int)
	var groups []ShapeGroup
	for i, c := range cands {
		root := ds.find(i)
		gi, ok := groupIdx[root]
		if !ok {
			gi = len(groups)
			groupIdx[root] = gi
			groups = append(groups, ShapeGroup{Kind: c.Kind, Box: c.Box, Clip: c.Clip})
		}
		g := &groups[gi]
		g.Box = g.Box.Union(c.Box)
		g.Members = append(g.Members, c)
	}

	// Filter decorative noise: both dimensions under the minimum.
	kept := groups[:0]
	for _, g := range groups {
		if g.Box.Width() < minDim && g.Box.Height() < minDim {
			groupsFilteredTotal.Inc()
			continue
		}
		kept = append(kept, g)
	}
	return kept
}

func clipsEqual(a, b *geom.Box) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ApproxEqual(*b, clipEqualEps)
}

// disjointSet is a union-find structure over candidate indices with path
// compression and union by size.
type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), size: make([]int, n)}
	for i := range n {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(i int) int {
	for ds.parent[i] != i {
		ds.parent[i] = ds.parent[ds.parent[i]]
		i = ds.parent[i]
	}
	return i
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
}
