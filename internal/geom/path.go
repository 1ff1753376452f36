package geom

import (
	"strconv"
)

// PathBounds parses an SVG-style path description and returns the bounding
// box of its coordinates in local space. Supported commands are M/m, L/l,
// H/h, V/v, C/c and Z/z. Cubic Beziers contribute their control points and
// end point, bounding the curve by its control polygon rather than the true
// extremum; this is a deliberate approximation, not a defect, since only a
// conservative bound is needed downstream.
//
// Malformed tokens are skipped. ok is false when the input yields no
// coordinates at all.
func PathBounds(d string) (Box, bool) {
	toks := scanPath(d)
	if len(toks) == 0 {
		return Box{}, false
	}

	var (
		pts        []Point
		cur, start Point
		i          = 0
	)

	// take pulls the next n numbers; it reports false when fewer remain
	// before the next command letter.
	take := func(n int) ([]float64, bool) {
		if i+n > len(toks) {
			return nil, false
		}
		out := make([]float64, 0, n)
		for _, t := range toks[i : i+n] {
			if t.isCmd {
				return nil, false
			}
			out = append(out, t.num)
		}
		i += n
		return out, true
	}

	for i < len(toks) {
		t := toks[i]
		if !t.isCmd {
			// Stray number with no command context; skip it.
			i++
			continue
		}
		cmd := t.cmd
		i++
		switch cmd {
		case 'M', 'm', 'L', 'l':
			first := true
			for {
				xy, ok := take(2)
				if !ok {
					break
				}
				p := Point{X: xy[0], Y: xy[1]}
				if cmd == 'm' || cmd == 'l' {
					p.X += cur.X
					p.Y += cur.Y
				}
				cur = p
				pts = append(pts, p)
				if first && (cmd == 'M' || cmd == 'm') {
					start = p
					first = false
				}
			}
		case 'H', 'h':
			for {
				x, ok := take(1)
				if !ok {
					break
				}
				if cmd == 'h' {
					cur.X += x[0]
				} else {
					cur.X = x[0]
				}
				pts = append(pts, cur)
			}
		case 'V', 'v':
			for {
				y, ok := take(1)
				if !ok {
					break
				}
				if cmd == 'v' {
					cur.Y += y[0]
				} else {
					cur.Y = y[0]
				}
				pts = append(pts, cur)
			}
		case 'C', 'c':
			for {
				n, ok := take(6)
				if !ok {
					break
				}
				c1 := Point{X: n[0], Y: n[1]}
				c2 := Point{X: n[2], Y: n[3]}
				end := Point{X: n[4], Y: n[5]}
				if cmd == 'c' {
					c1.X += cur.X
					c1.Y += cur.Y
					c2.X += cur.X
					c2.Y += cur.Y
					end.X += cur.X
					end.Y += cur.Y
				}
				pts = append(pts, c1, c2, end)
				cur = end
			}
		case 'Z', 'z':
			// Close contributes no new extrema; the pen returns to the
			// subpath start for any following relative command.
			cur = start
		default:
			// Unknown command: skip its numbers.
			for i < len(toks) && !toks[i].isCmd {
				i++
			}
		}
	}

	if len(pts) == 0 {
		return Box{}, false
	}
	return BoundingBox(pts), true
}

type pathToken struct {
	isCmd bool
	cmd   byte
	num   float64
}

// scanPath tokenizes a path string into command letters and numbers.
// Numbers may be separated by whitespace, commas, or nothing but a leading
// minus sign (".073-.195" is two numbers). Unparseable runs are dropped.
func scanPath(d string) []pathToken {
	var toks []pathToken
	n := len(d)
	for i := 0; i < n; {
		c := d[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			toks = append(toks, pathToken{isCmd: true, cmd: c})
			i++
		default:
			j := i
			if d[j] == '+' || d[j] == '-' {
				j++
			}
			// A second '.' starts a new number ("1.5.3" is two numbers),
			// same as a bare '-' between packed coordinates.
			seenDot := false
			for j < n && (isDigit(d[j]) || d[j] == '.') {
				if d[j] == '.' {
					if seenDot {
						break
					}
					seenDot = true
				}
				j++
			}
			// Exponent part keeps its own sign attached.
			if j < n && (d[j] == 'e' || d[j] == 'E') {
				k := j + 1
				if k < n && (d[k] == '+' || d[k] == '-') {
					k++
				}
				if k < n && isDigit(d[k]) {
					j = k
					for j < n && isDigit(d[j]) {
						j++
					}
				}
			}
			if j == i {
				// Not a number start; drop the byte.
				i++
				continue
			}
			v, err := strconv.ParseFloat(d[i:j], 64)
			if err == nil {
				toks = append(toks, pathToken{num: v})
			}
			i = j
		}
	}
	return toks
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
