package wkhtmltopdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sagealpha/backend/pdf"
)

type converter struct {
	binary string
}

func (c *converter) Convert(ctx context.Context, html string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "sagealpha-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "report.html")
	out := filepath.Join(dir, "report.pdf")

	if err := os.WriteFile(in, []byte(html), 0o600); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"--quiet",
		"--print-media-type",
		"--enable-local-file-access",
		in,
		out,
	)

	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w: %s", err, output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("read generated pdf: %w", err)
	}

	return data, nil
}

// NewConverter resolves the wkhtmltopdf binary, preferring an explicit path,
// then WKHTMLTOPDF_PATH, then PATH lookup.
func NewConverter(binary string) pdf.Converter {
	if binary == "" {
		binary = os.Getenv("WKHTMLTOPDF_PATH")
	}
	if binary == "" {
		if found, err := exec.LookPath("wkhtmltopdf"); err == nil {
			binary = found
		} else {
			binary = "wkhtmltopdf"
		}
	}

	return &converter{
		binary: binary,
	}
}
