package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PhotoStore persists an uploaded photo and returns a durable reference URL.
// The returned URL may only be handed out after the write is confirmed
// durable; a complaint record must never reference an unconfirmed upload.
type PhotoStore interface {
	SavePhoto(ctx context.Context, originalName string, r io.Reader) (string, error)
}

// DiskStore writes photos under a local directory and serves them under
// baseURL + "/uploads/".
type DiskStore struct {
	dir     string
	baseURL string
}

var _ PhotoStore = (*DiskStore)(nil)

func NewDiskStore(dir, baseURL string) *DiskStore {
	return &DiskStore{dir: dir, baseURL: baseURL}
}

// Dir returns the directory photos are written to.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) SavePhoto(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	ext := filepath.Ext(originalName)
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create photo file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write photo: %w", err)
	}

	// fsync before handing out the reference
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("sync photo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close photo: %w", err)
	}

	return s.baseURL + "/uploads/" + name, nil
}
