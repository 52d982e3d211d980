package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store persists uploaded lease documents and returns the path the
// record keeps.
type Store interface {
	SaveUpload(file *multipart.FileHeader, subdir string) (string, error)
}

// LocalStore implements Store on the local filesystem under a base
// directory. Saved paths are URL-style, rooted at /uploads/.
type LocalStore struct {
	basePath string
	logger   *logrus.Logger
}

// NewLocalStore creates a new local store
func NewLocalStore(basePath string, logger *logrus.Logger) (*LocalStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path is required for local store")
	}

	// Ensure base path exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base path: %w", err)
	}

	return &LocalStore{
		basePath: basePath,
		logger:   logger,
	}, nil
}

// SaveUpload writes one multipart file under subdir with a unique name
// derived from the original extension.
func (s *LocalStore) SaveUpload(file *multipart.FileHeader, subdir string) (string, error) {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), uuid.New().String()[:8], ext)
	fullPath := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", fmt.Errorf("failed to write content: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"subdir": subdir,
		"name":   name,
		"size":   file.Size,
	}).Info("Saved uploaded file")

	return "/uploads/" + subdir + "/" + name, nil
}
