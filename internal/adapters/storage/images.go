package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"myforum/internal/core/apperr"

	"github.com/gofrs/uuid"
)

const (
	MaxImageSize = 10 << 20 // 10 MB
	PublicPrefix = "/images/"
)

var imageTypes = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ImageStore ذخیره تصاویر آپلود شده روی دیسک
type ImageStore struct {
	Dir     string
	MaxSize int64
	now     func() time.Time
}

func NewImageStore(dir string) *ImageStore {
	return &ImageStore{Dir: dir, MaxSize: MaxImageSize, now: time.Now}
}

// Save writes the upload under Dir and returns its public path, /images/<name>.
func (s *ImageStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > s.MaxSize {
		v := apperr.NewValidationError()
		v.Add("image", fmt.Sprintf("must be at most %d MB", s.MaxSize/(1<<20)))
		return "", v
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageTypes[ext] {
		v := apperr.NewValidationError()
		v.Add("image", fmt.Sprintf("unsupported file type %q", ext))
		return "", v
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s%s", s.now().Format("20060102"), uuid.Must(uuid.NewV4()).String(), ext)
	dst, err := os.Create(filepath.Join(s.Dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	// فایل ممکن است بزرگ‌تر از مقدار اعلام شده در هدر باشد
	n, err := io.Copy(dst, io.LimitReader(file, s.MaxSize+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if n > s.MaxSize {
		os.Remove(dst.Name())
		v := apperr.NewValidationError()
		v.Add("image", fmt.Sprintf("must be at most %d MB", s.MaxSize/(1<<20)))
		return "", v
	}

	return PublicPrefix + filename, nil
}

// Delete removes a file previously returned by Save. Missing files are ignored.
func (s *ImageStore) Delete(path string) error {
	filePath := filepath.Join(s.Dir, filepath.Base(path))
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
