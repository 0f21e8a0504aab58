package driver

import (
	"context"
	"os"

	"perlsense/internal/source"
)

// LoadFile reads a file for indexing. A UTF-8 byte order mark is dropped so
// offsets match what editors report. It has the workspace.Loader shape.
func LoadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content, _ = source.StripBOM(content)
	return string(content), nil
}
