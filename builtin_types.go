package linkml

import "embed"

//go:embed builtins/*.yaml
var builtinsFS embed.FS

// builtinSchemaNames maps the well-known import names LinkML schemas use to
// reference the core metamodel and type library without a network fetch, to
// their bundled file under builtins/.
var builtinSchemaNames = map[string]string{
	"linkml:types": "builtins/types.yaml",
	"linkml:meta":  "builtins/meta.yaml",
}

// loadBuiltinSchema parses one of the embedded builtin schemas by its
// well-known import name, or returns false if name does not name one.
func loadBuiltinSchema(name string) (*SchemaDocument, bool, error) {
	file, ok := builtinSchemaNames[name]
	if !ok {
		return nil, false, nil
	}
	data, err := builtinsFS.ReadFile(file)
	if err != nil {
		return nil, true, err
	}
	doc, err := Parse(data, FormatYAML)
	if err != nil {
		return nil, true, err
	}
	doc.sourcePath = name
	return doc, true, nil
}
