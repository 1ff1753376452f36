package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pagecarve/pagecarve/internal/pdf"
	"github.com/pagecarve/pagecarve/internal/svg"
)

// Config holds extraction parameters.
type Config struct {
	// Scale converts page points to pixels for all rasters (2.0 is
	// roughly 144 DPI).
	Scale float64
	// MinVectorDimension is the minimum width/height in page points
	// below which a shape group is discarded as decorative noise.
	MinVectorDimension float64
	// PageCoverage is the fraction of the page a clip must cover to be
	// treated as page-level, i.e. equivalent to no clip.
	PageCoverage float64
	// OutputDir, when set, receives per-page artifacts on disk.
	OutputDir string
	// Progress, when set, receives one event per completed page.
	Progress ProgressFunc
}

// DefaultConfig returns the default extraction parameters.
func DefaultConfig() Config {
	return Config{
		Scale:              2.0,
		MinVectorDimension: 20,
		PageCoverage:       0.9,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %g", c.Scale)
	}
	if c.MinVectorDimension < 0 {
		return fmt.Errorf("min vector dimension must not be negative, got %g", c.MinVectorDimension)
	}
	if c.PageCoverage <= 0 || c.PageCoverage > 1 {
		return fmt.Errorf("page coverage must be in (0,1], got %g", c.PageCoverage)
	}
	return nil
}

// Extractor runs the per-page extraction pipeline: render the page
// raster, extract text, collect shapes, group and filter them, composite
// each surviving group, and assign stable image identifiers.
type Extractor struct {
	cfg Config
}

// New creates an extractor with the given configuration.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg}, nil
}

// ExtractFile opens and extracts a PDF file. pageRange follows the
// "1-5,8" syntax; empty means all pages.
func (e *Extractor) ExtractFile(path, pageRange string) (*DocumentResult, error) {
	return e.ExtractFileContext(context.Background(), path, pageRange)
}

// ExtractFileContext opens and extracts a PDF file with cancellation
// support.
func (e *Extractor) ExtractFileContext(ctx context.Context, path, pageRange string) (*DocumentResult, error) {
	pages, err := pdf.ParsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = doc.Close() }()
	return e.ExtractDocument(ctx, &fitzDocument{doc}, pages)
}

// ExtractDocument extracts the selected pages of an open document. pages
// holds ascending 1-based page numbers; nil selects every page. Pages are
// processed strictly in order and each page runs to completion before its
// progress event is emitted, so image identifiers are stable across
// re-runs. Cancellation is honored at the per-page boundary.
func (e *Extractor) ExtractDocument(ctx context.Context, doc Document, pages []int) (*DocumentResult, error) {
	start := time.Now()

	indices, err := pdf.SelectPages(doc.PageCount(), pages)
	if err != nil {
		return nil, err
	}
	total := len(indices)

	result := &DocumentResult{
		Filename:   doc.Filename(),
		TotalPages: total,
		Pages:      make([]PageResult, 0, total),
	}

	var writer *Writer
	if e.cfg.OutputDir != "" {
		writer = &Writer{Dir: e.cfg.OutputDir}
	}

	for seq, idx := range indices {
		// The per-page boundary is the cooperative suspension point:
		// cancellation is checked here, and nothing mid-page blocks on
		// other pages.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := doc.Page(idx)
		if err != nil {
			return nil, err
		}
		res, err := e.extractPage(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", idx+1, err)
		}
		if writer != nil {
			if err := writer.WritePage(res); err != nil {
				return nil, err
			}
		}
		result.Pages = append(result.Pages, *res)

		pagesProcessedTotal.Inc()
		if e.cfg.Progress != nil {
			e.cfg.Progress(ProgressEvent{
				Page:       seq + 1,
				TotalPages: total,
				Label:      res.PageID,
			})
		}
	}

	result.Processing.TotalNs = time.Since(start).Nanoseconds()
	return result, nil
}

// extractPage runs the pipeline for a single page. Failure to render the
// page raster is fatal; everything else degrades locally.
func (e *Extractor) extractPage(page Page) (*PageResult, error) {
	pageStart := time.Now()
	pageNum := page.Number() + 1

	raster, err := page.Raster(e.cfg.Scale)
	if err != nil {
		return nil, fmt.Errorf("render page raster: %w", err)
	}
	pageImg, err := EncodePageRaster(raster)
	if err != nil {
		return nil, err
	}

	text, err := page.Text()
	if err != nil {
		slog.Warn("text extraction failed, continuing with empty text",
			"page", pageNum, "error", err)
		text = ""
	}

	res := &PageResult{
		PageID:     PageID(pageNum),
		PageNumber: pageNum,
		Text:       text,
		PageImage: ImageArtifact{
			ID:       ImageID(pageNum, 0),
			WidthPx:  pageImg.WidthPx,
			HeightPx: pageImg.HeightPx,
			PNG:      pageImg.PNG,
		},
	}

	res.Images = e.extractGroups(page, pageNum)
	res.Processing.TotalNs = time.Since(pageStart).Nanoseconds()
	pageDuration.Observe(time.Since(pageStart).Seconds())
	artifactsTotal.WithLabelValues("page").Inc()
	return res, nil
}

// extractGroups collects, groups and composites the page's shapes.
// Drawing-program anomalies never fail the page: an unusable program
// yields no artifacts beyond the page raster.
func (e *Extractor) extractGroups(page Page, pageNum int) []ImageArtifact {
	drawing, err := page.DrawingSVG()
	if err != nil {
		slog.Warn("drawing program unavailable", "page", pageNum, "error", err)
		return nil
	}
	ops, err := svg.ParsePage(drawing)
	if err != nil {
		slog.Warn("drawing program unparseable", "page", pageNum, "error", err)
		return nil
	}

	pageW, pageH, err := page.Size()
	if err != nil {
		slog.Warn("page size unavailable", "page", pageNum, "error", err)
		return nil
	}

	cands := CollectShapes(ops, pageW, pageH, e.cfg.PageCoverage)
	groups := GroupShapes(cands, e.cfg.MinVectorDimension)

	comp := &Compositor{Scale: e.cfg.Scale}
	var artifacts []ImageArtifact
	next := 1
	for _, g := range groups {
		img, err := comp.Composite(g)
		if err != nil {
			slog.Debug("dropping uncompositable group", "page", pageNum, "error", err)
			continue
		}
		artifacts = append(artifacts, ImageArtifact{
			ID:       ImageID(pageNum, next),
			WidthPx:  img.WidthPx,
			HeightPx: img.HeightPx,
			PNG:      img.PNG,
		})
		artifactsTotal.WithLabelValues(g.Kind.String()).Inc()
		next++
	}
	return artifacts
}

// fitzDocument adapts *pdf.Document to the Document interface.
type fitzDocument struct {
	doc *pdf.Document
}

func (d *fitzDocument) Filename() string { return d.doc.Filename() }
func (d *fitzDocument) PageCount() int   { return d.doc.PageCount() }
func (d *fitzDocument) Close() error     { return d.doc.Close() }

func (d *fitzDocument) Page(i int) (Page, error) {
	p, err := d.doc.Page(i)
	if err != nil {
		return nil, err
	}
	return p, nil
}

var _ Document = (*fitzDocument)(nil)
var _ Page = (*pdf.Page)(nil)
