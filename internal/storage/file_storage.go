package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// allowedExtensions are the upload types accepted for receipt scans.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
}

// FileStorage stores uploaded receipt files on the local filesystem.
type FileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewFileStorage creates a file storage rooted at baseDir.
func NewFileStorage(baseDir string, logger *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStorage{baseDir: baseDir, logger: logger}, nil
}

// Allowed reports whether the filename has an accepted extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save writes an uploaded file under a timestamped name and returns the
// stored path relative to the base directory.
func (s *FileStorage) Save(filename string, data []byte) (string, error) {
	if !Allowed(filename) {
		return "", fmt.Errorf("file type not allowed: %s", filepath.Ext(filename))
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(filename))
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Error("Failed to save upload", zap.Error(err))
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	s.logger.Info("Saved upload", zap.String("file", name), zap.Int("bytes", len(data)))
	return name, nil
}

// Read returns the contents of a stored file.
func (s *FileStorage) Read(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file. Missing files are not an error.
func (s *FileStorage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve joins a stored name with the base dir and rejects traversal
// outside it.
func (s *FileStorage) resolve(name string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.Clean("/"+name))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid file name: %s", name)
	}
	return path, nil
}

func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
