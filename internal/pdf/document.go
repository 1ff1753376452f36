// Package pdf wraps the PDF container: it opens documents, renders page
// rasters, extracts structured text, and exposes each page's drawing
// program. All PDF-format parsing (xref tables, object streams, font
// encoding) lives behind this boundary.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrInvalidPDF reports that the input is not a valid PDF document.
// Failures of this class are document-fatal.
var ErrInvalidPDF = errors.New("invalid PDF document")

// Document is an open PDF document.
type Document struct {
	doc      *fitz.Document
	filename string
}

// Open validates and opens a PDF file.
func Open(path string) (*Document, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPDF, path, err)
	}
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPDF, path, err)
	}
	// Cross-check the two parsers' page counts; a disagreement means one of
	// them misread the page tree.
	if n, err := api.PageCountFile(path); err == nil && n != doc.NumPage() {
		slog.Warn("page count mismatch between validators",
			"file", path, "pdfcpu", n, "fitz", doc.NumPage())
	}
	return &Document{doc: doc, filename: path}, nil
}

// OpenBytes validates and opens a PDF held in memory.
func OpenBytes(b []byte) (*Document, error) {
	if len(b) == 0 {
		return nil, errors.New("document bytes cannot be empty")
	}
	if err := api.Validate(bytes.NewReader(b), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	doc, err := fitz.NewFromMemory(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}
	return &Document{doc: doc}, nil
}

// Filename returns the source path, empty for in-memory documents.
func (d *Document) Filename() string { return d.filename }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.doc.NumPage() }

// Page loads the page at index i (0-based).
func (d *Document) Page(i int) (*Page, error) {
	if i < 0 || i >= d.doc.NumPage() {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", i, d.doc.NumPage())
	}
	return &Page{doc: d.doc, num: i}, nil
}

// Close releases the underlying document.
func (d *Document) Close() error {
	if d.doc == nil {
		return nil
	}
	err := d.doc.Close()
	d.doc = nil
	return err
}

// Page is a single page of an open document.
type Page struct {
	doc *fitz.Document
	num int
}

// Number returns the 0-based page index.
func (p *Page) Number() int { return p.num }

// Size returns the page dimensions in points.
func (p *Page) Size() (w, h float64, err error) {
	bounds, err := p.doc.Bound(p.num)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d bounds: %w", p.num, err)
	}
	return float64(bounds.Dx()), float64(bounds.Dy()), nil
}

// Raster renders the page to an image at the given scale relative to page
// points (scale 2.0 is roughly 144 DPI).
func (p *Page) Raster(scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("raster scale must be positive, got %g", scale)
	}
	img, err := p.doc.ImageDPI(p.num, scale*72)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", p.num, err)
	}
	return img, nil
}

// Text extracts the structured text of the page.
func (p *Page) Text() (string, error) {
	text, err := p.doc.Text(p.num)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", p.num, err)
	}
	return text, nil
}

// DrawingSVG exports the page's drawing program as an SVG fragment: every
// paint operation with its path data, transforms, clip references and
// embedded image payloads.
func (p *Page) DrawingSVG() (string, error) {
	s, err := p.doc.SVG(p.num)
	if err != nil {
		return "", fmt.Errorf("export drawing program of page %d: %w", p.num, err)
	}
	return s, nil
}
