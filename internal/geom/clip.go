package geom

// ClipPrimitive is one level of a clip chain: a path or rectangle plus the
// transform that places it in absolute space. Primitives come from nested
// drawing scopes; the chain is ordered outermost first.
type ClipPrimitive struct {
	// PathData holds the path description when the primitive is a path.
	PathData string
	// Rect holds the rectangle when the primitive is a rect element.
	Rect    Box
	HasRect bool
	// Transform places the primitive in the containing space; empty means
	// identity.
	Transform string
}

// Bounds resolves the primitive to an absolute-space bounding box.
func (p ClipPrimitive) Bounds() (Box, bool) {
	var local Box
	if p.HasRect {
		local = p.Rect
	} else {
		b, ok := PathBounds(p.PathData)
		if !ok {
			return Box{}, false
		}
		local = b
	}
	return ApplyTransform(local, p.Transform), true
}

// ResolveClipBounds reduces a clip chain to a single absolute-space
// bounding box by intersecting the bounds of every level. Primitives that
// carry no usable geometry are ignored; ok is false when nothing in the
// chain resolves. Disjoint levels yield a degenerate zero-area box, which
// downstream filtering discards naturally.
func ResolveClipBounds(chain []ClipPrimitive) (Box, bool) {
	var (
		acc Box
		ok  bool
	)
	for _, prim := range chain {
		b, resolved := prim.Bounds()
		if !resolved {
			continue
		}
		if !ok {
			acc = b
			ok = true
			continue
		}
		acc, _ = acc.Intersect(b)
	}
	return acc, ok
}

// IsPageLevelClip reports whether a clip effectively covers the whole page.
// Many PDFs wrap unrelated content in a full-page clip for compliance
// reasons; treating such a clip as "no clip" avoids spuriously masking
// unrelated shapes. The clip counts as page-level when its intersection
// with the page rectangle [0,0,pageW,pageH] is at least coverage (a
// fraction, e.g. 0.9) of the page area. A nil clip or one that misses the
// page entirely is never page-level.
func IsPageLevelClip(clip *Box, pageW, pageH, coverage float64) bool {
	if clip == nil || pageW <= 0 || pageH <= 0 {
		return false
	}
	page := Box{MaxX: pageW, MaxY: pageH}
	inter := clip.IntersectionArea(page)
	if inter <= 0 {
		return false
	}
	return inter >= coverage*page.Area()
}
