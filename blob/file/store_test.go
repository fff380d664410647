package file

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sagealpha/backend/blob"
)

func TestUploadGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blob.WithLocation(t.TempDir()))

	key, err := store.Upload(ctx, "report-1", "<html>hello</html>")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasSuffix(key, ".html") {
		t.Fatalf("key = %q, want .html suffix", key)
	}

	html, err := store.Get(ctx, "report-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if html != "<html>hello</html>" {
		t.Fatalf("got %q", html)
	}

	if err := store.Delete(ctx, "report-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "report-1"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestGetMissing(t *testing.T) {
	store := NewStore(blob.WithLocation(t.TempDir()))

	if _, err := store.Get(context.Background(), "never-uploaded"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestUploadSanitizesID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(blob.WithLocation(t.TempDir()))

	// Path traversal in the id must not escape the blob directory.
	if _, err := store.Upload(ctx, "../../etc/passwd", "x"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	html, err := store.Get(ctx, "../../etc/passwd")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if html != "x" {
		t.Fatalf("got %q", html)
	}
}
