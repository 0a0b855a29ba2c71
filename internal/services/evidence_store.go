package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pgstays/pg-booking-backend/internal/config"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// allowedEvidenceExts are the image types accepted as payment or refund
// evidence and listing photos.
var allowedEvidenceExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// EvidenceStore persists uploaded evidence images to local disk and
// hands back an opaque public reference. Callers persist only the
// reference, never the bytes.
type EvidenceStore struct {
	dir        string
	publicPath string
	maxSize    int64
	logger     *logrus.Logger
}

// NewEvidenceStore creates the store and its backing directory
func NewEvidenceStore(cfg config.UploadConfig, logger *logrus.Logger) (*EvidenceStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &EvidenceStore{
		dir:        cfg.Dir,
		publicPath: strings.TrimSuffix(cfg.PublicPath, "/"),
		maxSize:    cfg.MaxSizeBytes,
		logger:     logger,
	}, nil
}

// Dir returns the backing directory, for static file serving
func (s *EvidenceStore) Dir() string {
	return s.dir
}

// Store writes one uploaded file and returns its public reference
// (e.g. "/uploads/3f2a....jpg").
func (s *EvidenceStore) Store(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxSize {
		return "", models.NewInvalid("file exceeds the %d MB upload limit", s.maxSize/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedEvidenceExts[ext] {
		return "", models.NewInvalid("unsupported file type %s, expected an image", ext)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + ext
	dstPath := filepath.Join(s.dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	ref := s.publicPath + "/" + name
	s.logger.WithFields(logrus.Fields{
		"ref":  ref,
		"size": fh.Size,
	}).Debug("Stored evidence upload")

	return ref, nil
}
