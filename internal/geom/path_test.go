package geom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPathBoundsLinear(t *testing.T) {
	cases := []struct {
		name string
		d    string
		want Box
	}{
		{"move-line", "M10 20 L30 5", Box{MinX: 10, MinY: 5, MaxX: 30, MaxY: 20}},
		{"multi-line", "M0 0 L10 0 L10 10 L0 10 Z", Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}},
		{"implicit-lineto", "M1 1 2 2 3 0", Box{MinX: 1, MinY: 0, MaxX: 3, MaxY: 2}},
		{"horizontal-vertical", "M5 5 H20 V30", Box{MinX: 5, MinY: 5, MaxX: 20, MaxY: 30}},
		{"comma-separated", "M1,2L3,4", Box{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}},
		{"negative", "M-5 -10 L5 10", Box{MinX: -5, MinY: -10, MaxX: 5, MaxY: 10}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := PathBounds(c.d)
			require.True(t, ok)
			require.InDelta(t, c.want.MinX, got.MinX, 1e-9)
			require.InDelta(t, c.want.MinY, got.MinY, 1e-9)
			require.InDelta(t, c.want.MaxX, got.MaxX, 1e-9)
			require.InDelta(t, c.want.MaxY, got.MaxY, 1e-9)
		})
	}
}

func TestPathBoundsPackedNumbers(t *testing.T) {
	// ".073-.195" must scan as two numbers: 0.073 and -0.195.
	got, ok := PathBounds("M.073-.195L1 1")
	require.True(t, ok)
	require.InDelta(t, 0.073, got.MinX, 1e-9)
	require.InDelta(t, -0.195, got.MinY, 1e-9)
	require.InDelta(t, 1, got.MaxX, 1e-9)
	require.InDelta(t, 1, got.MaxY, 1e-9)

	// A second '.' inside a run also starts a new number: "1.5.3"
	// is 1.5 followed by 0.3.
	got, ok = PathBounds("M1.5.3L2 2")
	require.True(t, ok)
	require.InDelta(t, 1.5, got.MinX, 1e-9)
	require.InDelta(t, 0.3, got.MinY, 1e-9)
	require.InDelta(t, 2, got.MaxX, 1e-9)
	require.InDelta(t, 2, got.MaxY, 1e-9)
}

func TestPathBoundsCubicControlPoints(t *testing.T) {
	// The control points bound the curve; the true extremum is not
	// computed, so the control point at y=40 widens the box.
	got, ok := PathBounds("M0 0 C10 40 20 40 30 0")
	require.True(t, ok)
	require.InDelta(t, 0, got.MinX, 1e-9)
	require.InDelta(t, 0, got.MinY, 1e-9)
	require.InDelta(t, 30, got.MaxX, 1e-9)
	require.InDelta(t, 40, got.MaxY, 1e-9)

	abs, _ := PathBounds("M0 0 C10 40 20 40 30 0")
	rel, okRel := PathBounds("m0 0 c10 40 20 40 30 0")
	require.True(t, okRel)
	require.True(t, abs.ApproxEqual(rel, 1e-9))
}

func TestPathBoundsCloseAddsNoExtrema(t *testing.T) {
	open, _ := PathBounds("M0 0 L10 10")
	closed, _ := PathBounds("M0 0 L10 10 Z")
	require.True(t, open.ApproxEqual(closed, 1e-9))

	// After Z the pen is back at the subpath start for relative commands.
	got, ok := PathBounds("M5 5 L10 5 Z l0 10")
	require.True(t, ok)
	require.InDelta(t, 15, got.MaxY, 1e-9)
}

func TestPathBoundsMalformed(t *testing.T) {
	cases := []struct {
		name string
		d    string
		ok   bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"no-coordinates", "Z", false},
		{"lone-command", "M", false},
		{"garbage", "hello world", false},
		{"partial-pair", "M10", false},
		{"recovers-after-junk", "M10 20 L## L30 40", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := PathBounds(c.d)
			require.Equal(t, c.ok, ok)
		})
	}
}

func TestPathBoundsExponent(t *testing.T) {
	got, ok := PathBounds("M1e1 2e-1 L1.5e2 0")
	require.True(t, ok)
	require.InDelta(t, 10, got.MinX, 1e-9)
	require.InDelta(t, 0.2, got.MaxY, 1e-9)
	require.InDelta(t, 150, got.MaxX, 1e-9)
}
