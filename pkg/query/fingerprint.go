package query

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sona-ai/sona/pkg/models"
)

// Fingerprint derives the cache key for a query from the normalized
// question text and the metadata of each attached image. Identical
// inputs always produce the same key; any change to an image's
// modification time or size changes it.
func Fingerprint(question string, images []models.ImageMeta) string {
	h := sha256.New()
	io.WriteString(h, strings.TrimSpace(question))
	for _, img := range images {
		fmt.Fprintf(h, "||%s:%d:%d", img.Path, img.ModTime.UnixNano(), img.Size)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// StatImages resolves file metadata for the given paths. Unreadable
// images are dropped rather than failing the query.
func StatImages(paths []string) []models.ImageMeta {
	metas := make([]models.ImageMeta, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.Printf("dropping image %s: %v", path, err)
			continue
		}
		metas = append(metas, models.ImageMeta{
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return metas
}
