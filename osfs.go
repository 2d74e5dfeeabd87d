package linkml

import (
	"context"
	"os"
	"path/filepath"
)

// OSFilesystemAdapter implements FilesystemAdapter over a real directory on
// disk, joining every relative path against Root so a schema's imports
// stay confined to the directory tree it was loaded from.
type OSFilesystemAdapter struct {
	Root string
}

// ReadFile reads path, already sandboxed by Loader.Load, relative to a.Root.
func (a *OSFilesystemAdapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return os.ReadFile(filepath.Join(a.Root, path))
}
