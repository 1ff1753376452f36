// Package svg parses the drawing program of a PDF page, as exported by the
// document container in SVG form, into a flat list of paint operations.
// Nested group scopes (transforms and clip references) are carried through
// the walk as an explicit context value rather than mutable drawing state,
// so each resulting operation is self-contained: a composed local-to-page
// matrix plus the full clip chain that applied at its scope.
package svg

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pagecarve/pagecarve/internal/geom"
)

// Kind distinguishes raster from vector paint operations.
type Kind int

const (
	// KindVector is a stroked or filled path.
	KindVector Kind = iota
	// KindRaster is an embedded image placement.
	KindRaster
)

func (k Kind) String() string {
	if k == KindRaster {
		return "raster"
	}
	return "vector"
}

// Paint captures the fill/stroke attributes needed to re-render a vector
// operation faithfully.
type Paint struct {
	Fill        string
	FillRule    string
	FillOpacity string
	Stroke      string
	StrokeWidth string
	LineCap     string
	LineJoin    string
	Opacity     string
}

// PaintOp is one paint operation discovered on a page.
type PaintOp struct {
	Kind Kind

	// PathData is the path description for vector ops, in local
	// coordinates.
	PathData string
	Paint    Paint

	// Matrix composes every transform between the op's local space and
	// page space.
	Matrix geom.Matrix

	// Clips is the chain of clip primitives in scope, outermost first.
	Clips []geom.ClipPrimitive

	// ImageData holds the decoded embedded image bytes for raster ops.
	ImageData []byte
	// ImageW and ImageH are the image element's declared extent in local
	// units; the matrix maps the (0,0)-(ImageW,ImageH) rectangle to page
	// space. Zero means a unit square placement.
	ImageW float64
	ImageH float64
}

// LocalBounds returns the op's bounding box in its local coordinate space.
func (op PaintOp) LocalBounds() (geom.Box, bool) {
	if op.Kind == KindRaster {
		w, h := op.ImageW, op.ImageH
		if w <= 0 || h <= 0 {
			w, h = 1, 1
		}
		return geom.NewBox(0, 0, w, h), true
	}
	return geom.PathBounds(op.PathData)
}

// drawCtx is the immutable per-scope drawing context threaded through the
// group walk.
type drawCtx struct {
	m     geom.Matrix
	clips []string // clipPath ids, outermost first
}

func (c drawCtx) push(transform, clipRef string) drawCtx {
	next := drawCtx{m: c.m, clips: c.clips}
	if m, ok := geom.ParseMatrix(transform); ok {
		next.m = c.m.Mul(m)
	}
	if id := clipID(clipRef); id != "" {
		next.clips = append(append([]string(nil), c.clips...), id)
	}
	return next
}

// ParsePage parses an SVG fragment into paint operations. Text runs, glyph
// definitions and any unknown elements are ignored; the structured text of
// a page travels separately. Parsing never fails on malformed drawing
// state: unusable attributes degrade to identity transforms, absent clips,
// or skipped operations.
func ParsePage(svgText string) ([]PaintOp, error) {
	defs, err := collectClipDefs(svgText)
	if err != nil {
		return nil, err
	}
	return walkBody(svgText, defs)
}

// collectClipDefs gathers every clipPath definition in the document, keyed
// by id. Definitions normally precede their use, but a full pre-pass keeps
// the walk independent of emission order.
func collectClipDefs(svgText string) (map[string][]geom.ClipPrimitive, error) {
	defs := make(map[string][]geom.ClipPrimitive)
	dec := xml.NewDecoder(strings.NewReader(svgText))
	dec.Strict = false

	var (
		curID string
		depth int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			if curID == "" {
				if name == "clipPath" {
					curID = attr(el, "id")
					depth = 1
				}
				continue
			}
			depth++
			switch name {
			case "path":
				defs[curID] = append(defs[curID], geom.ClipPrimitive{
					PathData:  attr(el, "d"),
					Transform: attr(el, "transform"),
				})
			case "rect":
				x := attrFloat(el, "x")
				y := attrFloat(el, "y")
				w := attrFloat(el, "width")
				h := attrFloat(el, "height")
				defs[curID] = append(defs[curID], geom.ClipPrimitive{
					Rect:      geom.NewBox(x, y, x+w, y+h),
					HasRect:   true,
					Transform: attr(el, "transform"),
				})
			}
		case xml.EndElement:
			if curID != "" {
				depth--
				if depth == 0 {
					curID = ""
				}
			}
		}
	}
	return defs, nil
}

// walkBody walks the visible drawing elements, skipping defs subtrees, and
// emits paint operations in document order.
func walkBody(svgText string, defs map[string][]geom.ClipPrimitive) ([]PaintOp, error) {
	dec := xml.NewDecoder(strings.NewReader(svgText))
	dec.Strict = false

	var (
		ops      []PaintOp
		stack    = []drawCtx{{m: geom.Identity()}}
		skipDeep int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if skipDeep > 0 {
				skipDeep++
				continue
			}
			name := el.Name.Local
			switch name {
			case "defs", "clipPath", "symbol", "mask", "text", "tspan", "use":
				// Glyph runs and reusable definitions are not paint
				// operations.
				skipDeep = 1
			case "g", "svg":
				top := stack[len(stack)-1]
				stack = append(stack, top.push(attr(el, "transform"), attr(el, "clip-path")))
			case "path":
				top := stack[len(stack)-1].push(attr(el, "transform"), attr(el, "clip-path"))
				d := attr(el, "d")
				if d == "" {
					stack = append(stack, top)
					continue
				}
				ops = append(ops, PaintOp{
					Kind:     KindVector,
					PathData: d,
					Paint:    paintAttrs(el),
					Matrix:   top.m,
					Clips:    resolveClips(top.clips, defs),
				})
				stack = append(stack, top)
			case "image":
				top := stack[len(stack)-1].push(attr(el, "transform"), attr(el, "clip-path"))
				data, ok := decodeDataURI(attrHref(el))
				if !ok {
					slog.Debug("skipping image with unusable payload")
					stack = append(stack, top)
					continue
				}
				ops = append(ops, PaintOp{
					Kind:      KindRaster,
					Matrix:    top.m,
					Clips:     resolveClips(top.clips, defs),
					ImageData: data,
					ImageW:    attrFloat(el, "width"),
					ImageH:    attrFloat(el, "height"),
				})
				stack = append(stack, top)
			default:
				// Unknown element: keep walking its children with the
				// parent context.
				stack = append(stack, stack[len(stack)-1])
			}
		case xml.EndElement:
			if skipDeep > 0 {
				skipDeep--
				continue
			}
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return ops, nil
}

func resolveClips(ids []string, defs map[string][]geom.ClipPrimitive) []geom.ClipPrimitive {
	if len(ids) == 0 {
		return nil
	}
	var chain []geom.ClipPrimitive
	for _, id := range ids {
		chain = append(chain, defs[id]...)
	}
	return chain
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func attrFloat(el xml.StartElement, name string) float64 {
	s := strings.TrimSuffix(strings.TrimSpace(attr(el, name)), "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// attrHref returns the image payload reference, accepting both href and
// the legacy xlink:href.
func attrHref(el xml.StartElement) string {
	for _, a := range el.Attr {
		if a.Name.Local == "href" {
			return a.Value
		}
	}
	return ""
}

func paintAttrs(el xml.StartElement) Paint {
	return Paint{
		Fill:        attr(el, "fill"),
		FillRule:    attr(el, "fill-rule"),
		FillOpacity: attr(el, "fill-opacity"),
		Stroke:      attr(el, "stroke"),
		StrokeWidth: attr(el, "stroke-width"),
		LineCap:     attr(el, "stroke-linecap"),
		LineJoin:    attr(el, "stroke-linejoin"),
		Opacity:     attr(el, "opacity"),
	}
}

// clipID extracts the id from a clip-path="url(#cp3)" reference.
func clipID(ref string) string {
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "url(") {
		return ""
	}
	ref = strings.TrimPrefix(ref, "url(")
	ref = strings.TrimSuffix(ref, ")")
	ref = strings.Trim(ref, `'" `)
	return strings.TrimPrefix(ref, "#")
}

// decodeDataURI decodes a base64 data: URI payload. External references
// are not resolved; the container embeds all image data inline.
func decodeDataURI(uri string) ([]byte, bool) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, false
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, false
	}
	meta, payload := uri[5:comma], uri[comma+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}
