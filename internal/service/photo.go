package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"

	"campdir/internal/authz"
	"campdir/internal/middleware"
	"campdir/internal/models"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const thumbnailWidth = 320

// PhotoStore persists bootcamp photos on local disk. Every upload is
// re-encoded to JPEG, with a WebP thumbnail alongside for list views.
type PhotoStore struct {
	dir      string
	maxBytes int64
}

// NewPhotoStore returns a store writing under dir with the given size cap.
func NewPhotoStore(dir string, maxUploadMB int) *PhotoStore {
	return &PhotoStore{dir: dir, maxBytes: int64(maxUploadMB) * 1024 * 1024}
}

// MaxBytes returns the upload size cap in bytes.
func (p *PhotoStore) MaxBytes() int64 {
	return p.maxBytes
}

// Save validates and writes the uploaded image, returning the stored file
// name (photo_<bootcampID>.jpg).
func (p *PhotoStore) Save(ctx context.Context, bootcampID uint, data []byte) (string, error) {
	if int64(len(data)) > p.maxBytes {
		return "", models.NewValidationError(
			fmt.Sprintf("Please upload an image less than %d bytes", p.maxBytes))
	}

	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return "", models.NewValidationError("Please upload an image file")
	}

	img, _, err := decodeImage(data, contentType)
	if err != nil {
		return "", models.NewValidationError("Please upload an image file")
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}

	name := fmt.Sprintf("photo_%d.jpg", bootcampID)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(filepath.Join(p.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", models.NewInternalError(err)
	}

	// Thumbnail generation is best-effort; the full-size photo is the record.
	if err := p.writeThumbnail(bootcampID, img); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to write photo thumbnail",
			"bootcamp_id", bootcampID, "error", err)
	}

	return name, nil
}

func (p *PhotoStore) writeThumbnail(bootcampID uint, img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return fmt.Errorf("empty image")
	}

	height := bounds.Dy() * thumbnailWidth / bounds.Dx()
	if height < 1 {
		height = 1
	}
	thumb := image.NewRGBA(image.Rect(0, 0, thumbnailWidth, height))
	draw.CatmullRom.Scale(thumb, thumb.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, thumb, &webp.Options{Lossless: false, Quality: 80}); err != nil {
		return err
	}
	name := fmt.Sprintf("photo_%d_thumb.webp", bootcampID)
	return os.WriteFile(filepath.Join(p.dir, name), buf.Bytes(), 0o644)
}

func decodeImage(data []byte, contentType string) (image.Image, string, error) {
	if contentType == "image/webp" {
		img, err := webp.Decode(bytes.NewReader(data))
		return img, "webp", err
	}
	return image.Decode(bytes.NewReader(data))
}

// UploadPhoto stores a photo for the bootcamp and records its file name.
// Owner or admin only.
func (s *BootcampService) UploadPhoto(ctx context.Context, principal *models.User, id uint, store *PhotoStore, data []byte) (string, error) {
	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := authz.RequireOwner(principal, bootcamp.UserID, "update", "bootcamp"); err != nil {
		return "", err
	}

	name, err := store.Save(ctx, id, data)
	if err != nil {
		return "", err
	}

	bootcamp.Photo = name
	if err := s.repo.Update(ctx, bootcamp); err != nil {
		return "", err
	}
	return name, nil
}
