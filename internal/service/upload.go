package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/civicfix/civicfix-api/internal/logger"
	"github.com/civicfix/civicfix-api/internal/metrics"
	"github.com/google/uuid"
)

// Image upload errors
var (
	ErrFileTooLarge    = errors.New("image exceeds the 5MB limit")
	ErrUnsupportedType = errors.New("unsupported image format (use JPEG, PNG, WebP or GIF)")
	ErrEmptyFile       = errors.New("uploaded file is empty")
)

// MaxImageSize is the maximum allowed image size (5MB)
const MaxImageSize = 5 * 1024 * 1024

// allowed image extensions mapped to their canonical content types
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// UploadService stores report photos on disk under random names and
// returns the public URL path they are served from.
type UploadService struct {
	dir       string
	publicDir string
}

// NewUploadService creates an upload service rooted at dir. Files are
// served under /uploads.
func NewUploadService(dir string) (*UploadService, error) {
	if dir == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadService{dir: dir, publicDir: "/uploads"}, nil
}

// Dir returns the directory uploads are stored in
func (s *UploadService) Dir() string {
	return s.dir
}

// SaveImage validates and stores an uploaded report photo, returning its
// public URL path. The original filename only contributes its extension.
func (s *UploadService) SaveImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header.Size == 0 {
		return "", ErrEmptyFile
	}
	if header.Size > MaxImageSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedImageTypes[ext]; !ok {
		return "", ErrUnsupportedType
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if written > MaxImageSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	metrics.Get().IncrementFileUpload(written)

	logger.Audit(ctx, logger.AuditEvent{
		Action:   logger.AuditActionFileUpload,
		Resource: "image",
		Success:  true,
		Details: map[string]interface{}{
			"filename": name,
			"size":     written,
		},
	})

	logger.Get(ctx).Info().
		Str("filename", name).
		Int64("size", written).
		Msg("Image uploaded")

	return s.publicDir + "/" + name, nil
}
