package linkml

import (
	"context"
	"path"
	"strings"
)

// FilesystemAdapter abstracts the byte source a Loader reads schema
// documents from, so callers can back it with an OS filesystem, an
// embed.FS of bundled schemas, or an in-memory map for tests — mirroring
// the way the teacher's Compiler takes a pluggable set of format Decoders
// rather than hard-wiring one encoding.
type FilesystemAdapter interface {
	// ReadFile returns the raw bytes at path, relative to the adapter's root.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// Loader resolves and reads schema source documents through a sandboxed
// FilesystemAdapter: every path must be relative and may not escape the
// adapter's root via "..", so an imported schema can never read arbitrary
// host files (spec.md §4.1/§4.2).
type Loader struct {
	adapter FilesystemAdapter
}

// NewLoader builds a Loader over the given adapter.
func NewLoader(adapter FilesystemAdapter) *Loader {
	return &Loader{adapter: adapter}
}

// Load reads and parses the schema document at the given relative path,
// inferring its format from the file extension.
func (l *Loader) Load(ctx context.Context, p string) (*SchemaDocument, error) {
	if l.adapter == nil {
		return nil, ErrNoLoaderRegistered
	}

	clean, err := sandboxPath(p)
	if err != nil {
		return nil, err
	}

	data, err := l.adapter.ReadFile(ctx, clean)
	if err != nil {
		return nil, &PathError{Path: p, Message: ErrDataRead.Error()}
	}

	format := formatFromExt(clean)
	doc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	doc.sourcePath = clean
	return doc, nil
}

// sandboxPath rejects absolute paths and any path whose cleaned form climbs
// above the adapter's root, the same sandboxing contract the teacher
// applies to URI resolution in ref.go's getBaseURI/resolveRelativeURI but
// here enforced as a hard rejection rather than a best-effort join.
func sandboxPath(p string) (string, error) {
	if p == "" {
		return "", &PathError{Path: p, Message: "empty path"}
	}
	if path.IsAbs(p) {
		return "", &PathError{Path: p, Message: "absolute paths are not permitted"}
	}

	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", &PathError{Path: p, Message: "path escapes sandbox root"}
	}
	return clean, nil
}

// formatFromExt infers the Format from a path's file extension, defaulting
// to YAML since that is LinkML's canonical source encoding.
func formatFromExt(p string) Format {
	switch {
	case strings.HasSuffix(p, ".json"):
		return FormatJSON
	default:
		return FormatYAML
	}
}
