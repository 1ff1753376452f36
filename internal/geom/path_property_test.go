package geom

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type pathPoint struct {
	X, Y float64
}

func genPathPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(-500, 500),
		gen.Float64Range(-500, 500),
	).Map(func(vals []interface{}) pathPoint {
		return pathPoint{X: vals[0].(float64), Y: vals[1].(float64)}
	})
}

func genPathPoints(n int) gopter.Gen {
	return gen.SliceOfN(n, genPathPoint())
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// absolutePath renders the points as "M x0 y0 L x1 y1 ...".
func absolutePath(pts []pathPoint) string {
	var b strings.Builder
	b.WriteString("M")
	b.WriteString(formatCoord(pts[0].X))
	b.WriteString(" ")
	b.WriteString(formatCoord(pts[0].Y))
	for _, p := range pts[1:] {
		b.WriteString(" L")
		b.WriteString(formatCoord(p.X))
		b.WriteString(" ")
		b.WriteString(formatCoord(p.Y))
	}
	return b.String()
}

// relativePath renders the same polyline with relative lineto deltas.
func relativePath(pts []pathPoint) string {
	var b strings.Builder
	b.WriteString("M")
	b.WriteString(formatCoord(pts[0].X))
	b.WriteString(" ")
	b.WriteString(formatCoord(pts[0].Y))
	prev := pts[0]
	for _, p := range pts[1:] {
		b.WriteString(" l")
		b.WriteString(formatCoord(p.X - prev.X))
		b.WriteString(" ")
		b.WriteString(formatCoord(p.Y - prev.Y))
		prev = p
	}
	return b.String()
}

func TestPathBounds_RelativeMatchesAbsolute(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("relative linetos yield the same bounds as absolute", prop.ForAll(
		func(pts []pathPoint) bool {
			abs, okAbs := PathBounds(absolutePath(pts))
			rel, okRel := PathBounds(relativePath(pts))
			if !okAbs || !okRel {
				return false
			}
			// Deltas accumulate rounding, so the tolerance scales with
			// the number of segments.
			eps := 1e-9 * float64(len(pts))
			return abs.ApproxEqual(rel, eps)
		},
		genPathPoints(8),
	))

	properties.Property("bounds contain every vertex", prop.ForAll(
		func(pts []pathPoint) bool {
			box, ok := PathBounds(absolutePath(pts))
			if !ok {
				return false
			}
			for _, p := range pts {
				if p.X < box.MinX-1e-9 || p.X > box.MaxX+1e-9 ||
					p.Y < box.MinY-1e-9 || p.Y > box.MaxY+1e-9 {
					return false
				}
			}
			return true
		},
		genPathPoints(8),
	))

	properties.TestingRun(t)
}
