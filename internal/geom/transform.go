package geom

import (
	"strconv"
	"strings"
)

// Matrix is a 2D affine transform mapping local to parent coordinates:
//
//	x' = a*x + c*y + e
//	y' = b*x + d*y + f
type Matrix struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{A: 1, D: 1} }

// IsIdentity reports whether m is exactly the identity transform.
func (m Matrix) IsIdentity() bool {
	return m == Matrix{A: 1, D: 1}
}

// Apply maps a point through the transform.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Mul composes transforms: (m.Mul(n)).Apply(p) == m.Apply(n.Apply(p)).
// Nested drawing scopes compose outer.Mul(inner).
func (m Matrix) Mul(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// ApplyBox maps all four corners of b and returns the axis-aligned box
// spanning the images. This handles rotation and reflection, notably the
// Y-flip matrix(1,0,0,-1,0,H) used pervasively by PDF's bottom-up
// coordinate convention.
func (m Matrix) ApplyBox(b Box) Box {
	corners := []Point{
		{b.MinX, b.MinY},
		{b.MaxX, b.MinY},
		{b.MinX, b.MaxY},
		{b.MaxX, b.MaxY},
	}
	for i, p := range corners {
		corners[i] = m.Apply(p)
	}
	return BoundingBox(corners)
}

// String formats m in the matrix(a,b,c,d,e,f) syntax.
func (m Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("matrix(")
	for i, v := range [6]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}

// ParseMatrix parses a matrix(a,b,c,d,e,f) transform descriptor. Numbers
// may be separated by commas or whitespace. ok is false for any other
// syntax.
func ParseMatrix(s string) (Matrix, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "matrix") {
		return Identity(), false
	}
	open := strings.IndexByte(s, '(')
	closing := strings.LastIndexByte(s, ')')
	if open < 0 || closing < open {
		return Identity(), false
	}
	fields := strings.FieldsFunc(s[open+1:closing], func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 6 {
		return Identity(), false
	}
	var vals [6]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Identity(), false
		}
		vals[i] = v
	}
	return Matrix{A: vals[0], B: vals[1], C: vals[2], D: vals[3], E: vals[4], F: vals[5]}, true
}

// ApplyTransform maps b through the given transform descriptor. Only the
// matrix(...) form is recognised; an empty or unrecognised transform is a
// no-op returning b unchanged. This fallback is intentional: pages contain
// redundant or malformed transform attributes that must not block
// extraction.
func ApplyTransform(b Box, transform string) Box {
	m, ok := ParseMatrix(transform)
	if !ok {
		return b
	}
	return m.ApplyBox(b)
}
