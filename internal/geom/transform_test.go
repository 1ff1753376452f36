package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMatrix(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
		want Matrix
	}{
		{"commas", "matrix(1,2,3,4,5,6)", true, Matrix{1, 2, 3, 4, 5, 6}},
		{"spaces", "matrix(1 2 3 4 5 6)", true, Matrix{1, 2, 3, 4, 5, 6}},
		{"mixed", "matrix(1, 2  3,4, 5 6)", true, Matrix{1, 2, 3, 4, 5, 6}},
		{"padded", "  matrix(2,0,0,2,10,20)  ", true, Matrix{2, 0, 0, 2, 10, 20}},
		{"empty", "", false, Identity()},
		{"translate", "translate(3,4)", false, Identity()},
		{"wrong-arity", "matrix(1,2,3)", false, Identity()},
		{"bad-number", "matrix(1,2,x,4,5,6)", false, Identity()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, ok := ParseMatrix(c.in)
			require.Equal(t, c.ok, ok)
			require.Equal(t, c.want, m)
		})
	}
}

func TestApplyTransformIdentityFallback(t *testing.T) {
	b := NewBox(1, 2, 3, 4)
	for _, tr := range []string{"", "rotate(45)", "scale(2)", "nonsense"} {
		require.Equal(t, b, ApplyTransform(b, tr))
	}
}

func TestApplyTransformYFlip(t *testing.T) {
	// matrix(1,0,0,-1,0,H) must map [x0,y0,x1,y1] -> [x0,H-y1,x1,H-y0].
	const h = 792.0
	b := NewBox(10, 20, 110, 50)
	got := ApplyTransform(b, "matrix(1,0,0,-1,0,792)")
	require.InDelta(t, 10, got.MinX, 1e-9)
	require.InDelta(t, h-50, got.MinY, 1e-9)
	require.InDelta(t, 110, got.MaxX, 1e-9)
	require.InDelta(t, h-20, got.MaxY, 1e-9)
}

func TestApplyTransformRotation(t *testing.T) {
	// 90 degree rotation: matrix(0,1,-1,0,0,0) maps (x,y) -> (-y,x).
	b := NewBox(0, 0, 10, 5)
	got := ApplyTransform(b, "matrix(0,1,-1,0,0,0)")
	require.InDelta(t, -5, got.MinX, 1e-9)
	require.InDelta(t, 0, got.MinY, 1e-9)
	require.InDelta(t, 0, got.MaxX, 1e-9)
	require.InDelta(t, 10, got.MaxY, 1e-9)
}

func TestMatrixMulComposition(t *testing.T) {
	scale := Matrix{A: 2, D: 2}
	shift := Matrix{A: 1, D: 1, E: 5, F: 7}
	p := Point{X: 1, Y: 1}

	// shift-then-scale vs scale-then-shift.
	got := scale.Mul(shift).Apply(p)
	require.Equal(t, Point{X: 12, Y: 16}, got)
	got = shift.Mul(scale).Apply(p)
	require.Equal(t, Point{X: 7, Y: 9}, got)
}

func TestMatrixStringRoundTrip(t *testing.T) {
	m := Matrix{A: 1, B: 0, C: 0, D: -1, E: 0.5, F: 792}
	parsed, ok := ParseMatrix(m.String())
	require.True(t, ok)
	require.Equal(t, m, parsed)
}
