package query

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/sona-ai/sona/pkg/models"
)

const (
	maxImageWidth  = 1920
	maxImageHeight = 1080
	jpegQuality    = 85
)

var supportedImageExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// LoadAttachments prepares image files for the backend call: each is
// decoded, downscaled to fit the size cap, and re-encoded as JPEG.
// Unsupported formats and unreadable files are dropped, matching the
// fingerprint behavior for unreadable paths.
func LoadAttachments(metas []models.ImageMeta) []models.Attachment {
	attachments := make([]models.Attachment, 0, len(metas))
	for _, m := range metas {
		if _, ok := supportedImageExt[strings.ToLower(filepath.Ext(m.Path))]; !ok {
			log.Printf("dropping image %s: unsupported format", m.Path)
			continue
		}
		data, err := optimizeImage(m.Path)
		if err != nil {
			log.Printf("dropping image %s: %v", m.Path, err)
			continue
		}
		attachments = append(attachments, models.Attachment{Data: data, MIME: "image/jpeg"})
	}
	return attachments
}

func optimizeImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	src = downscale(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale shrinks img to fit within maxImageWidth x maxImageHeight,
// keeping the aspect ratio. Images already within the cap pass through.
func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxImageWidth && h <= maxImageHeight {
		return img
	}

	scale := float64(maxImageWidth) / float64(w)
	if s := float64(maxImageHeight) / float64(h); s < scale {
		scale = s
	}
	dw, dh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
