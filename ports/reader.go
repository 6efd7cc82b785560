package ports

import (
	"context"
	"io"

	"autoclass/domain/dataset"
)

// DatasetReaderPort loads a parsed, typed tabular dataset from a source.
// Column typing (numeric vs categorical) is decided here; the core never
// re-sniffs raw bytes.
type DatasetReaderPort interface {
	ReadFile(ctx context.Context, path string) (*dataset.Dataset, error)
	// Read parses a stream; format is the file extension (".csv", ".xlsx").
	Read(ctx context.Context, name string, r io.Reader, format string) (*dataset.Dataset, error)
}
