package extract

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists page results under a root directory, one subdirectory
// per page:
//
//	<dir>/pg007/page.png
//	<dir>/pg007/text.txt
//	<dir>/pg007/images/pg007_im001.png
//
// Each file is written to a temporary name and renamed into place, so a
// re-run overwrites a page's prior outputs atomically from a consumer's
// point of view.
type Writer struct {
	Dir string
}

// WritePage persists one page's artifacts.
func (w *Writer) WritePage(res *PageResult) error {
	pageDir := filepath.Join(w.Dir, res.PageID)
	imagesDir := filepath.Join(pageDir, "images")
	if err := os.MkdirAll(imagesDir, 0o750); err != nil {
		return fmt.Errorf("create page directory: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(pageDir, "page.png"), res.PageImage.PNG); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(pageDir, "text.txt"), []byte(res.Text)); err != nil {
		return err
	}
	for _, img := range res.Images {
		path := filepath.Join(imagesDir, img.ID+".png")
		if err := writeFileAtomic(path, img.PNG); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
