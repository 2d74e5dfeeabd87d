package linkml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memAdapter is an in-memory FilesystemAdapter for exercising Loader and
// ResolveImports without touching the host filesystem.
type memAdapter struct {
	files map[string][]byte
}

func (m *memAdapter) ReadFile(ctx context.Context, path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, ErrDataRead
	}
	return data, nil
}

func TestResolveImportsMergesChildDefinitions(t *testing.T) {
	adapter := &memAdapter{files: map[string][]byte{
		"root.yaml": []byte(`
id: https://example.org/root
imports:
  - common
classes:
  Dog:
    is_a: Animal
`),
		"common.yaml": []byte(`
id: https://example.org/common
classes:
  Animal: {}
`),
	}}

	loader := NewLoader(adapter)
	doc, err := loader.ResolveImports(context.Background(), "root.yaml")
	require.NoError(t, err)

	assert.Contains(t, doc.Classes, "Dog")
	assert.Contains(t, doc.Classes, "Animal")
}

func TestResolveImportsDetectsCycle(t *testing.T) {
	adapter := &memAdapter{files: map[string][]byte{
		"a.yaml": []byte(`
id: https://example.org/a
imports:
  - b
`),
		"b.yaml": []byte(`
id: https://example.org/b
imports:
  - a
`),
	}}

	loader := NewLoader(adapter)
	_, err := loader.ResolveImports(context.Background(), "a.yaml")
	require.Error(t, err)
	_, ok := err.(*ImportError)
	assert.True(t, ok, "expected an *ImportError for a cyclic import, got %T", err)
}

func TestResolveImportsChildDefinitionDoesNotOverrideRoot(t *testing.T) {
	adapter := &memAdapter{files: map[string][]byte{
		"root.yaml": []byte(`
id: https://example.org/root2
imports:
  - common
classes:
  Animal:
    description: from root
`),
		"common.yaml": []byte(`
id: https://example.org/common2
classes:
  Animal:
    description: from common
`),
	}}

	loader := NewLoader(adapter)
	doc, err := loader.ResolveImports(context.Background(), "root.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from root", doc.Classes["Animal"].Description)
}

func TestResolveImportsResolvesBuiltinWithoutFilesystemRead(t *testing.T) {
	adapter := &memAdapter{files: map[string][]byte{
		"root.yaml": []byte(`
id: https://example.org/root3
imports:
  - linkml:types
`),
	}}

	loader := NewLoader(adapter)
	_, err := loader.ResolveImports(context.Background(), "root.yaml")
	require.NoError(t, err)
}

func TestLoaderRejectsPathEscapingSandboxRoot(t *testing.T) {
	loader := NewLoader(&memAdapter{files: map[string][]byte{}})
	_, err := loader.Load(context.Background(), "../outside.yaml")
	require.Error(t, err)
	_, ok := err.(*PathError)
	assert.True(t, ok, "expected a *PathError, got %T", err)
}

func TestLoaderRejectsAbsolutePath(t *testing.T) {
	loader := NewLoader(&memAdapter{files: map[string][]byte{}})
	_, err := loader.Load(context.Background(), "/etc/passwd")
	require.Error(t, err)
	_, ok := err.(*PathError)
	assert.True(t, ok, "expected a *PathError, got %T", err)
}
