package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskFileStore writes uploaded documents to a local directory and returns
// URLs under the configured base path, which the HTTP server serves
// statically.
type DiskFileStore struct {
	dir     string
	baseURL string
}

func NewDiskFileStore(dir, baseURL string) (*DiskFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskFileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskFileStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stored := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	if err := os.WriteFile(filepath.Join(s.dir, stored), data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return s.baseURL + "/" + stored, nil
}

// Dir is the directory documents are written to, for static serving.
func (s *DiskFileStore) Dir() string {
	return s.dir
}
