package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sagealpha/backend/blob"
)

var unsafeChars = regexp.MustCompile(`[^\w\-]`)

type fileStore struct {
	options blob.Options
}

func (s *fileStore) Upload(ctx context.Context, id string, html string) (string, error) {
	name := blobName(id)

	if err := os.WriteFile(s.path(name), []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", name, err)
	}

	return name, nil
}

func (s *fileStore) Get(ctx context.Context, id string) (string, error) {
	name := blobName(id)

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return "", blob.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", name, err)
	}

	return string(data), nil
}

func (s *fileStore) Delete(ctx context.Context, id string) error {
	name := blobName(id)

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return blob.ErrNotFound
	}

	return err
}

func (s *fileStore) path(name string) string {
	return filepath.Join(s.options.Location, name)
}

func blobName(id string) string {
	return unsafeChars.ReplaceAllString(id, "_") + ".html"
}

func NewStore(opts ...blob.Option) blob.Store {
	options := blob.NewOptions(opts...)

	if err := os.MkdirAll(options.Location, 0o755); err != nil {
		slog.Warn("blob directory not writable", "dir", options.Location, "error", err)
	}

	return &fileStore{
		options: options,
	}
}
