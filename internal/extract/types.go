// Package extract implements the visual-content extraction engine: it
// walks a page's paint operations, groups overlapping shapes under their
// clip regions, discards decorative noise, and composites each surviving
// group into a standalone RGBA PNG alongside the full-page raster and
// text.
package extract

import (
	"fmt"
	"image"

	"github.com/pagecarve/pagecarve/internal/geom"
	"github.com/pagecarve/pagecarve/internal/svg"
)

// Document is the page container consumed by the extractor. The concrete
// implementation lives in internal/pdf; tests substitute synthetic pages.
type Document interface {
	Filename() string
	PageCount() int
	Page(i int) (Page, error)
	Close() error
}

// Page exposes the per-page operations the extractor needs.
type Page interface {
	Number() int
	Size() (w, h float64, err error)
	Raster(scale float64) (image.Image, error)
	Text() (string, error)
	DrawingSVG() (string, error)
}

// ShapeCandidate is one paint operation found on a page, resolved to
// absolute page coordinates: its bounding box, the effective clip bound in
// scope (nil when unclipped or page-level), and the source operation for
// compositing.
type ShapeCandidate struct {
	Kind svg.Kind
	Box  geom.Box
	Clip *geom.Box
	Op   svg.PaintOp
}

// ShapeGroup is a set of overlap-merged candidates sharing one effective
// clip, the unit handed to the compositor.
type ShapeGroup struct {
	Kind    svg.Kind
	Box     geom.Box
	Clip    *geom.Box
	Members []ShapeCandidate
}

// ImageArtifact is a finished raster artifact for one page.
type ImageArtifact struct {
	ID       string `json:"id"`
	WidthPx  int    `json:"width_px"`
	HeightPx int    `json:"height_px"`
	PNG      []byte `json:"-"`
}

// PageResult is the unit handed to downstream stages.
type PageResult struct {
	PageID     string          `json:"page_id"`
	PageNumber int             `json:"page_number"`
	Text       string          `json:"-"`
	PageImage  ImageArtifact   `json:"page_image"`
	Images     []ImageArtifact `json:"images"`
	Processing struct {
		TotalNs int64 `json:"total_ns"`
	} `json:"processing"`
}

// DocumentResult summarizes a whole extraction run.
type DocumentResult struct {
	Filename   string       `json:"filename"`
	TotalPages int          `json:"total_pages"`
	Pages      []PageResult `json:"pages"`
	Processing struct {
		TotalNs int64 `json:"total_ns"`
	} `json:"processing"`
}

// ProgressEvent is emitted once per completed page.
type ProgressEvent struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Label      string `json:"label"`
}

// ProgressFunc receives progress events. It is called synchronously from
// the page loop and must not block for long.
type ProgressFunc func(ProgressEvent)

// PageID formats the stable identifier of a page, e.g. "pg007".
func PageID(pageNumber int) string {
	return fmt.Sprintf("pg%03d", pageNumber)
}

// ImageID formats the stable identifier of an image artifact. Index 0 is
// reserved for the full-page raster; surviving groups are numbered from 1
// in discovery order.
func ImageID(pageNumber, index int) string {
	return fmt.Sprintf("pg%03d_im%03d", pageNumber, index)
}
