package pdf

import "context"

// Converter renders an HTML document to PDF bytes.
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}
