package extract

import (
	"bytes"
	"hash/fnv"
	"image"
	"log/slog"

	"github.com/pagecarve/pagecarve/internal/geom"
	"github.com/pagecarve/pagecarve/internal/svg"
)

// CollectShapes turns a page's paint operations into shape candidates in
// absolute page coordinates. Operations whose geometry cannot be resolved
// are skipped, raster payloads that fail to decode are dropped
// (shape-local, never page-fatal), page-level clips are treated as no
// clip, and exact duplicate raster placements collapse to one candidate.
func CollectShapes(ops []svg.PaintOp, pageW, pageH, pageCoverage float64) []ShapeCandidate {
	var (
		out  []ShapeCandidate
		seen = make(map[uint64]bool)
	)
	for _, op := range ops {
		local, ok := op.LocalBounds()
		if !ok {
			continue
		}
		box := op.Matrix.ApplyBox(local)

		if op.Kind == svg.KindRaster {
			if _, _, err := image.DecodeConfig(bytes.NewReader(op.ImageData)); err != nil {
				slog.Debug("dropping undecodable embedded image", "error", err)
				continue
			}
		}

		var clip *geom.Box
		if b, resolved := geom.ResolveClipBounds(op.Clips); resolved {
			clip = &b
			if geom.IsPageLevelClip(clip, pageW, pageH, pageCoverage) {
				clip = nil
			}
		}

		cand := ShapeCandidate{Kind: op.Kind, Box: box, Clip: clip, Op: op}
		if op.Kind == svg.KindRaster {
			key := rasterKey(cand)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, cand)
	}
	return out
}

// rasterKey fingerprints a raster placement by source pixels, position and
// clip, so identical duplicate placements collapse.
func rasterKey(c ShapeCandidate) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(c.Op.ImageData)
	writeBox := func(b geom.Box) {
		var buf [32]byte
		putFloat := func(off int, v float64) {
			u := uint64(int64(v * 100))
			for i := range 8 {
				buf[off+i] = byte(u >> (8 * i))
			}
		}
		putFloat(0, b.MinX)
		putFloat(8, b.MinY)
		putFloat(16, b.MaxX)
		putFloat(24, b.MaxY)
		_, _ = h.Write(buf[:])
	}
	writeBox(c.Box)
	if c.Clip != nil {
		writeBox(*c.Clip)
	}
	return h.Sum64()
}
