package extract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubDrawing = `<svg xmlns="http://www.w3.org/2000/svg" width="612" height="792">
<g transform="matrix(1,0,0,1,0,0)">
<path d="M 50 50 L 250 50 L 250 250 L 50 250 Z" fill="#ff0000"/>
<path d="M 400 400 L 560 400 L 560 560 L 400 560 Z" fill="#00ff00"/>
</g>
</svg>`

// stubPage is a synthetic page for exercising the orchestrator without a
// real document.
type stubPage struct {
	num        int
	text       string
	drawing    string
	rasterErr  error
	textErr    error
	drawingErr error
}

func (p *stubPage) Number() int { return p.num }

func (p *stubPage) Size() (float64, float64, error) { return 612, 792, nil }

func (p *stubPage) Raster(scale float64) (image.Image, error) {
	if p.rasterErr != nil {
		return nil, p.rasterErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 61, 79))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func (p *stubPage) Text() (string, error) {
	if p.textErr != nil {
		return "", p.textErr
	}
	return p.text, nil
}

func (p *stubPage) DrawingSVG() (string, error) {
	if p.drawingErr != nil {
		return "", p.drawingErr
	}
	return p.drawing, nil
}

type stubDocument struct {
	pages []*stubPage
}

func newStubDocument(n int) *stubDocument {
	d := &stubDocument{}
	for i := 0; i < n; i++ {
		d.pages = append(d.pages, &stubPage{
			num:     i,
			text:    fmt.Sprintf("text of page %d", i+1),
			drawing: stubDrawing,
		})
	}
	return d
}

func (d *stubDocument) Filename() string { return "stub.pdf" }
func (d *stubDocument) PageCount() int   { return len(d.pages) }
func (d *stubDocument) Close() error     { return nil }

func (d *stubDocument) Page(i int) (Page, error) {
	if i < 0 || i >= len(d.pages) {
		return nil, fmt.Errorf("page index %d out of range", i)
	}
	return d.pages[i], nil
}

func newTestExtractor(t *testing.T, cfg Config) *Extractor {
	t.Helper()
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func TestExtractDocumentProgressEvents(t *testing.T) {
	var events []ProgressEvent
	cfg := DefaultConfig()
	cfg.Progress = func(ev ProgressEvent) { events = append(events, ev) }
	e := newTestExtractor(t, cfg)

	result, err := e.ExtractDocument(context.Background(), newStubDocument(3), nil)

	require.NoError(t, err)
	require.Len(t, result.Pages, 3)
	require.Len(t, events, 3)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Page)
		assert.Equal(t, 3, ev.TotalPages)
		assert.Equal(t, fmt.Sprintf("pg%03d", i+1), ev.Label)
	}
}

func TestExtractDocumentStableIdentifiers(t *testing.T) {
	e := newTestExtractor(t, DefaultConfig())

	first, err := e.ExtractDocument(context.Background(), newStubDocument(2), nil)
	require.NoError(t, err)
	second, err := e.ExtractDocument(context.Background(), newStubDocument(2), nil)
	require.NoError(t, err)

	require.Len(t, first.Pages, 2)
	assert.Equal(t, "pg001", first.Pages[0].PageID)
	assert.Equal(t, "pg001_im000", first.Pages[0].PageImage.ID)
	require.Len(t, first.Pages[0].Images, 2)
	assert.Equal(t, "pg001_im001", first.Pages[0].Images[0].ID)
	assert.Equal(t, "pg001_im002", first.Pages[0].Images[1].ID)
	assert.Equal(t, "pg002_im001", first.Pages[1].Images[0].ID)

	for i := range first.Pages {
		assert.Equal(t, first.Pages[i].PageID, second.Pages[i].PageID)
		require.Len(t, second.Pages[i].Images, len(first.Pages[i].Images))
		for j := range first.Pages[i].Images {
			assert.Equal(t, first.Pages[i].Images[j].ID, second.Pages[i].Images[j].ID)
		}
	}
}

func TestExtractDocumentPageSelection(t *testing.T) {
	var events []ProgressEvent
	cfg := DefaultConfig()
	cfg.Progress = func(ev ProgressEvent) { events = append(events, ev) }
	e := newTestExtractor(t, cfg)

	result, err := e.ExtractDocument(context.Background(), newStubDocument(5), []int{2, 4})

	require.NoError(t, err)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, "pg002", result.Pages[0].PageID)
	assert.Equal(t, "pg004", result.Pages[1].PageID)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Page)
	assert.Equal(t, 2, events[0].TotalPages)
	assert.Equal(t, "pg004", events[1].Label)
}

func TestExtractDocumentRasterFailureIsFatal(t *testing.T) {
	doc := newStubDocument(3)
	doc.pages[1].rasterErr = errors.New("render exploded")
	e := newTestExtractor(t, DefaultConfig())

	_, err := e.ExtractDocument(context.Background(), doc, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Contains(t, err.Error(), "render exploded")
}

func TestExtractDocumentTextFailureDegrades(t *testing.T) {
	doc := newStubDocument(2)
	doc.pages[0].textErr = errors.New("text layer corrupt")
	e := newTestExtractor(t, DefaultConfig())

	result, err := e.ExtractDocument(context.Background(), doc, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Pages[0].Text)
	assert.Equal(t, "text of page 2", result.Pages[1].Text)
}

func TestExtractDocumentDrawingFailureDegrades(t *testing.T) {
	doc := newStubDocument(1)
	doc.pages[0].drawingErr = errors.New("export failed")
	e := newTestExtractor(t, DefaultConfig())

	result, err := e.ExtractDocument(context.Background(), doc, nil)

	require.NoError(t, err)
	assert.Empty(t, result.Pages[0].Images)
	assert.NotEmpty(t, result.Pages[0].PageImage.PNG)
}

func TestExtractDocumentContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := newTestExtractor(t, DefaultConfig())

	_, err := e.ExtractDocument(ctx, newStubDocument(3), nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractDocumentCancelMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	cfg := DefaultConfig()
	cfg.Progress = func(ProgressEvent) {
		count++
		if count == 2 {
			cancel()
		}
	}
	e := newTestExtractor(t, cfg)

	_, err := e.ExtractDocument(ctx, newStubDocument(5), nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, count)
}

func TestExtractDocumentWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	e := newTestExtractor(t, cfg)

	result, err := e.ExtractDocument(context.Background(), newStubDocument(1), nil)
	require.NoError(t, err)
	require.Len(t, result.Pages, 1)

	pageDir := filepath.Join(dir, "pg001")
	assert.FileExists(t, filepath.Join(pageDir, "page.png"))
	assert.FileExists(t, filepath.Join(pageDir, "text.txt"))
	for _, img := range result.Pages[0].Images {
		assert.FileExists(t, filepath.Join(pageDir, "images", img.ID+".png"))
	}

	text, err := os.ReadFile(filepath.Join(pageDir, "text.txt"))
	require.NoError(t, err)
	assert.Equal(t, "text of page 1", string(text))
}

func TestExtractDocumentTimings(t *testing.T) {
	e := newTestExtractor(t, DefaultConfig())

	result, err := e.ExtractDocument(context.Background(), newStubDocument(1), nil)

	require.NoError(t, err)
	assert.Positive(t, result.Processing.TotalNs)
	assert.Positive(t, result.Pages[0].Processing.TotalNs)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero-scale", func(c *Config) { c.Scale = 0 }, true},
		{"negative-min-dim", func(c *Config) { c.MinVectorDimension = -1 }, true},
		{"coverage-above-one", func(c *Config) { c.PageCoverage = 1.5 }, true},
		{"coverage-zero", func(c *Config) { c.PageCoverage = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
