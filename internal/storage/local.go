package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempPrefix starts the name of every file written for an in-flight upload.
const TempPrefix = "temp_"

type LocalStorage struct {
	uploadDir string
}

func NewLocalStorage(uploadDir string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir}
}

func (s *LocalStorage) UploadDir() string {
	return s.uploadDir
}

func (s *LocalStorage) EnsureDirectories() error {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// TempFile is a file owned by a single request. The owner must call Remove.
type TempFile struct {
	Path string
	Size int64
}

// SaveTemp copies r into a uniquely named file in the upload directory. On
// error nothing is left behind.
func (s *LocalStorage) SaveTemp(name string, r io.Reader) (*TempFile, error) {
	filename := TempPrefix + uuid.NewString() + "_" + SanitizeFilename(name)
	path := filepath.Join(s.uploadDir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return &TempFile{Path: path, Size: size}, nil
}

// Remove deletes the file. A file that is already gone is not an error.
func (t *TempFile) Remove() error {
	if err := os.Remove(t.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ListTemp returns the temp files currently in the upload directory.
func (s *LocalStorage) ListTemp() ([]string, error) {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), TempPrefix) {
			continue
		}
		files = append(files, filepath.Join(s.uploadDir, entry.Name()))
	}

	return files, nil
}
