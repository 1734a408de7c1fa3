package photos

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"time"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/treklog/treklog/database/repo/photos"
	"github.com/treklog/treklog/storage"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const processTimeout = 60 * time.Second

// processTask extracts image dimensions and generates a thumbnail for a
// freshly uploaded photo. Runs on the worker pool; failures are logged and
// the photo stays usable without dimensions or thumbnail.
type processTask struct {
	photoID       uint
	identifier    string
	storageKey    string
	repo          *photos.Repository
	storage       storage.Provider
	thumbnailSize int
	useVips       bool
}

func (t *processTask) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	reader, err := t.storage.GetWithContext(ctx, t.storageKey)
	if err != nil {
		log.Printf("Photo %d processing: failed to read original: %v", t.photoID, err)
		return
	}
	data, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		log.Printf("Photo %d processing: failed to read original: %v", t.photoID, err)
		return
	}

	var (
		width, height int
		thumb         []byte
	)
	if t.useVips {
		width, height, thumb, err = processWithVips(data, t.thumbnailSize)
	} else {
		width, height, thumb, err = processWithStdImage(data, t.thumbnailSize)
	}
	if err != nil {
		log.Printf("Photo %d processing failed: %v", t.photoID, err)
		return
	}

	if err := t.repo.WithContext(ctx).UpdateDimensions(t.photoID, width, height); err != nil {
		log.Printf("Photo %d processing: failed to save dimensions: %v", t.photoID, err)
	}

	thumbKey := "thumbnails/" + t.identifier + ".jpg"
	if err := t.storage.SaveWithContext(ctx, thumbKey, bytes.NewReader(thumb)); err != nil {
		log.Printf("Photo %d processing: failed to store thumbnail: %v", t.photoID, err)
		return
	}
	if err := t.repo.WithContext(ctx).UpdateThumbnailKey(t.photoID, thumbKey); err != nil {
		log.Printf("Photo %d processing: failed to save thumbnail key: %v", t.photoID, err)
	}
}

// processWithVips uses libvips for dimensions and a down-scaled jpeg
// thumbnail. Requires vips.Startup to have run.
func processWithVips(data []byte, size int) (int, int, []byte, error) {
	img, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("vips decode: %w", err)
	}
	defer img.Close()

	width := img.Width()
	height := img.Height()

	if err := img.ThumbnailWithSize(size, size, vips.InterestingNone, vips.SizeDown); err != nil {
		return 0, 0, nil, fmt.Errorf("vips thumbnail: %w", err)
	}
	thumb, _, err := img.ExportJpeg(vips.NewJpegExportParams())
	if err != nil {
		return 0, 0, nil, fmt.Errorf("vips export: %w", err)
	}
	return width, height, thumb, nil
}

// processWithStdImage is the pure-Go path for deployments without libvips.
func processWithStdImage(data []byte, size int) (int, int, []byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, fmt.Errorf("image decode: %w", err)
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	tw, th := fitWithin(width, height, size)
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return 0, 0, nil, fmt.Errorf("thumbnail encode: %w", err)
	}
	return width, height, buf.Bytes(), nil
}

// fitWithin scales (w, h) down to fit in a size x size box, never up.
func fitWithin(w, h, size int) (int, int) {
	if w <= size && h <= size {
		return w, h
	}
	if w >= h {
		return size, maxInt(1, h*size/w)
	}
	return maxInt(1, w*size/h), size
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
