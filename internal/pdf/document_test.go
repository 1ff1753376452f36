package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagecarve/pagecarve/internal/testutil"
)

// These tests run against an optional fixture under testdata/pdfs and are
// skipped when it is absent.

func TestOpenFixture(t *testing.T) {
	path := testutil.RequireTestPDF(t, "sample.pdf")

	doc, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = doc.Close() }()

	assert.Equal(t, path, doc.Filename())
	assert.Positive(t, doc.PageCount())

	_, err = doc.Page(-1)
	assert.Error(t, err)
	_, err = doc.Page(doc.PageCount())
	assert.Error(t, err)
}

func TestPageOperationsFixture(t *testing.T) {
	path := testutil.RequireTestPDF(t, "sample.pdf")

	doc, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = doc.Close() }()

	page, err := doc.Page(0)
	require.NoError(t, err)

	w, h, err := page.Size()
	require.NoError(t, err)
	assert.Positive(t, w)
	assert.Positive(t, h)

	img, err := page.Raster(2.0)
	require.NoError(t, err)
	// A 2x scale renders roughly two pixels per point.
	assert.InDelta(t, w*2, float64(img.Bounds().Dx()), 2)
	assert.InDelta(t, h*2, float64(img.Bounds().Dy()), 2)

	_, err = page.Raster(0)
	assert.Error(t, err)

	_, err = page.Text()
	require.NoError(t, err)

	drawing, err := page.DrawingSVG()
	require.NoError(t, err)
	assert.True(t, strings.Contains(drawing, "<svg"))
}
