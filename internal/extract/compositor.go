package extract

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	stddraw "image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"

	"github.com/pagecarve/pagecarve/internal/geom"
	"github.com/pagecarve/pagecarve/internal/svg"
)

// Compositor rasterizes shape groups into standalone RGBA PNGs at the
// extraction scale. The scale matches the full-page raster so pixel
// alignment between the page image and sub-images is exact.
type Compositor struct {
	// Scale converts page points to pixels (2.0 is roughly 144 DPI).
	Scale float64
}

// PngImage is a finished RGBA PNG.
type PngImage struct {
	WidthPx  int
	HeightPx int
	PNG      []byte
}

// Composite renders a shape group onto a transparent canvas sized to the
// group's bounding box. Raster groups copy the embedded source pixels
// through their placement transform and zero the alpha channel outside
// the clip region; vector groups re-render their paint operations.
func (c *Compositor) Composite(g ShapeGroup) (*PngImage, error) {
	w := pixelSize(g.Box.Width(), c.Scale)
	h := pixelSize(g.Box.Height(), c.Scale)
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	var err error
	if g.Kind == svg.KindRaster {
		err = c.compositeRaster(canvas, g)
	} else {
		err = c.compositeVector(canvas, g)
	}
	if err != nil {
		return nil, err
	}

	if g.Clip != nil {
		c.applyClipMask(canvas, g, g.Kind == svg.KindRaster)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode group png: %w", err)
	}
	return &PngImage{WidthPx: w, HeightPx: h, PNG: buf.Bytes()}, nil
}

// compositeRaster resamples each member's source image into its placement
// box on the canvas.
func (c *Compositor) compositeRaster(canvas *image.RGBA, g ShapeGroup) error {
	drawn := 0
	for _, m := range g.Members {
		src, _, err := image.Decode(bytes.NewReader(m.Op.ImageData))
		if err != nil {
			// Shape-local: a corrupt embedded image must not abort the
			// page.
			slog.Debug("skipping undecodable raster member", "error", err)
			continue
		}
		// A negative determinant component means the placement mirrors
		// the source.
		if m.Op.Matrix.A < 0 {
			src = imaging.FlipH(src)
		}
		if m.Op.Matrix.D < 0 {
			src = imaging.FlipV(src)
		}
		dst := c.canvasRect(g.Box, m.Box)
		if dst.Empty() {
			continue
		}
		xdraw.CatmullRom.Scale(canvas, dst, src, src.Bounds(), xdraw.Over, nil)
		drawn++
	}
	if drawn == 0 {
		return errors.New("no raster member could be decoded")
	}
	return nil
}

// compositeVector re-renders the group's paint operations against a
// transparent background, with the group origin mapped to canvas (0,0).
func (c *Compositor) compositeVector(canvas *image.RGBA, g ShapeGroup) error {
	doc := serializeGroupSVG(g, canvas.Bounds().Dx(), canvas.Bounds().Dy())
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("prepare vector re-render: %w", err)
	}
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	icon.SetTarget(0, 0, float64(w), float64(h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return nil
}

// applyClipMask forces alpha to zero outside the clip region.
// Non-rectangular clips are approximated by their bounding box. Raster
// scans carry no meaningful alpha of their own, so forceOpaqueInside makes
// them fully opaque within the clip; vector renders keep the coverage the
// rasterizer produced, leaving unpainted canvas transparent.
func (c *Compositor) applyClipMask(canvas *image.RGBA, g ShapeGroup, forceOpaqueInside bool) {
	clipRect := c.canvasRect(g.Box, *g.Clip)
	b := canvas.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := canvas.Pix[canvas.PixOffset(b.Min.X, y):canvas.PixOffset(b.Max.X, y)]
		inRow := y >= clipRect.Min.Y && y < clipRect.Max.Y
		for x := b.Min.X; x < b.Max.X; x++ {
			a := (x-b.Min.X)*4 + 3
			if inRow && x >= clipRect.Min.X && x < clipRect.Max.X {
				if forceOpaqueInside {
					row[a] = 0xff
				}
			} else {
				row[a] = 0
			}
		}
	}
}

// canvasRect maps an absolute-space box into canvas pixel coordinates
// relative to the group origin.
func (c *Compositor) canvasRect(origin geom.Box, b geom.Box) image.Rectangle {
	return image.Rect(
		int(math.Round((b.MinX-origin.MinX)*c.Scale)),
		int(math.Round((b.MinY-origin.MinY)*c.Scale)),
		int(math.Round((b.MaxX-origin.MinX)*c.Scale)),
		int(math.Round((b.MaxY-origin.MinY)*c.Scale)),
	)
}

// serializeGroupSVG rebuilds a minimal SVG document holding the group's
// paint operations, with a viewBox anchored at the group bbox so the
// origin maps to canvas (0,0).
func serializeGroupSVG(g ShapeGroup, wPx, hPx int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%g %g %g %g">`,
		wPx, hPx, g.Box.MinX, g.Box.MinY, g.Box.Width(), g.Box.Height())
	sb.WriteByte('\n')
	for _, m := range g.Members {
		op := m.Op
		sb.WriteString(`<path transform="`)
		sb.WriteString(op.Matrix.String())
		sb.WriteString(`" d="`)
		sb.WriteString(op.PathData)
		sb.WriteByte('"')
		writeAttr(&sb, "fill", op.Paint.Fill)
		writeAttr(&sb, "fill-rule", op.Paint.FillRule)
		writeAttr(&sb, "fill-opacity", op.Paint.FillOpacity)
		writeAttr(&sb, "stroke", op.Paint.Stroke)
		writeAttr(&sb, "stroke-width", op.Paint.StrokeWidth)
		writeAttr(&sb, "stroke-linecap", op.Paint.LineCap)
		writeAttr(&sb, "stroke-linejoin", op.Paint.LineJoin)
		writeAttr(&sb, "opacity", op.Paint.Opacity)
		sb.WriteString("/>\n")
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writeAttr(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(value)
	sb.WriteByte('"')
}

// EncodePageRaster converts the rendered page image to an opaque RGB PNG.
func EncodePageRaster(img image.Image) (*PngImage, error) {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(rgba, rgba.Bounds(), img, b.Min, stddraw.Src)
	// The page raster has no transparency; force full opacity so the PNG
	// encoder emits plain truecolor.
	for i := 3; i < len(rgba.Pix); i += 4 {
		rgba.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode page png: %w", err)
	}
	return &PngImage{WidthPx: b.Dx(), HeightPx: b.Dy(), PNG: buf.Bytes()}, nil
}

func pixelSize(points, scale float64) int {
	px := int(math.Ceil(points * scale))
	if px < 1 {
		px = 1
	}
	return px
}
