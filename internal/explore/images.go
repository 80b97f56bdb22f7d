package explore

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/banshee-data/faceon/internal/featurestore"
)

// jpegQuality matches the OpenCV imwrite default.
const jpegQuality = 95

// exportImages copies the images of rows into dir as 0.jpg, 1.jpg, ... in
// row order. A missing or undecodable image is an error.
func (e *Explorer) exportImages(st *featurestore.Store, dir string, rows []int) error {
	if err := e.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for i, row := range rows {
		src := ImagePath(e.opts.ImagesDir, st.FileNames[row])
		dst := filepath.Join(dir, strconv.Itoa(i)+ImageExt)
		if err := e.copyImage(src, dst); err != nil {
			return err
		}
	}
	return nil
}

func (e *Explorer) copyImage(src, dst string) error {
	f, err := e.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open image %s: %w", src, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", src, err)
	}

	w, err := e.fs.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", dst, err)
	}
	if err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode image %s: %w", dst, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write image %s: %w", dst, err)
	}
	return nil
}
