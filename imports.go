package linkml

import (
	"context"
)

// importResolver walks a schema document's import graph depth-first,
// merging every imported document's classes/slots/types/enums into a single
// namespace, detecting cycles, and resolving the linkml:types/linkml:meta
// well-known names to the bundled builtins instead of a filesystem read —
// the same DFS-with-visited-set shape the teacher's schema-merge code walks
// over $ref chains, generalized here to whole documents instead of subschemas.
type importResolver struct {
	loader *Loader

	// visiting/done track the DFS recursion stack (for cycle detection) and
	// the completed set (for dedup of diamond imports), keyed by resolved
	// source path or well-known import name.
	visiting map[string]bool
	done     map[string]*SchemaDocument
	order    []string // entry path first, for NewImportCycle's chain
}

// ResolveImports loads root and recursively merges every schema it
// (transitively) imports into one combined SchemaDocument. The returned
// document's Classes/Slots/Types/Enums maps are the union across the whole
// import graph, keyed by name exactly as LinkML's single flat namespace
// requires.
func (l *Loader) ResolveImports(ctx context.Context, rootPath string) (*SchemaDocument, error) {
	r := &importResolver{
		loader:   l,
		visiting: make(map[string]bool),
		done:     make(map[string]*SchemaDocument),
	}
	root, err := l.Load(ctx, rootPath)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, root)
}

// resolve keys the DFS visited/done sets on doc.sourcePath, the path the
// loader actually resolved it from — not the caller's import-name string —
// so the same file reached via two different import spellings (with or
// without an extension, the root path vs. a nested "imports:" entry) is
// recognized as the same node instead of being treated as distinct and
// re-walked, which would both defeat dedup and make a genuine cycle look
// like fresh, never-ending progress.
func (r *importResolver) resolve(ctx context.Context, doc *SchemaDocument) (*SchemaDocument, error) {
	key := doc.sourcePath
	if cached, ok := r.done[key]; ok {
		return cached, nil
	}
	if r.visiting[key] {
		return nil, NewImportCycle(append(append([]string{}, r.order...), key))
	}

	r.visiting[key] = true
	r.order = append(r.order, key)
	defer func() {
		delete(r.visiting, key)
		r.order = r.order[:len(r.order)-1]
	}()

	merged := cloneDocumentShallow(doc)

	for _, imp := range doc.Imports {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		child, err := r.loadImport(ctx, imp)
		if err != nil {
			return nil, err
		}

		resolvedChild, err := r.resolve(ctx, child)
		if err != nil {
			return nil, err
		}

		mergeDocumentInto(merged, resolvedChild)
	}

	r.done[key] = merged
	return merged, nil
}

// loadImport resolves a single import entry, preferring a bundled builtin
// over a filesystem read when the name matches one of the well-known
// linkml:* library names.
func (r *importResolver) loadImport(ctx context.Context, name string) (*SchemaDocument, error) {
	if doc, ok, err := loadBuiltinSchema(name); ok {
		if err != nil {
			return nil, &ImportError{Code: ImportErrorMissing, Path: name}
		}
		return doc, nil
	}

	doc, err := r.loader.Load(ctx, name+".yaml")
	if err != nil {
		return nil, &ImportError{Code: ImportErrorUnresolved, Path: name}
	}
	return doc, nil
}

// cloneDocumentShallow copies the top-level maps of doc so imports can be
// merged in without mutating the caller's original document.
func cloneDocumentShallow(doc *SchemaDocument) *SchemaDocument {
	out := *doc
	out.Classes = copyClassMap(doc.Classes)
	out.Slots = copySlotMap(doc.Slots)
	out.Types = copyTypeMap(doc.Types)
	out.Enums = copyEnumMap(doc.Enums)
	out.Prefixes = copyStringMap(doc.Prefixes)
	return &out
}

// mergeDocumentInto folds child's definitions into dst, with dst's own
// definitions taking precedence on key collision — the importer is always
// "closer" than what it imports, matching LinkML's override-by-proximity
// import semantics.
func mergeDocumentInto(dst, child *SchemaDocument) {
	for name, c := range child.Classes {
		if _, exists := dst.Classes[name]; !exists {
			dst.Classes[name] = c
		}
	}
	for name, s := range child.Slots {
		if _, exists := dst.Slots[name]; !exists {
			dst.Slots[name] = s
		}
	}
	for name, t := range child.Types {
		if _, exists := dst.Types[name]; !exists {
			dst.Types[name] = t
		}
	}
	for name, e := range child.Enums {
		if _, exists := dst.Enums[name]; !exists {
			dst.Enums[name] = e
		}
	}
	for prefix, expansion := range child.Prefixes {
		if _, exists := dst.Prefixes[prefix]; !exists {
			dst.Prefixes[prefix] = expansion
		}
	}
}

func copyClassMap(in map[string]*ClassDef) map[string]*ClassDef {
	out := make(map[string]*ClassDef, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySlotMap(in map[string]*SlotDef) map[string]*SlotDef {
	out := make(map[string]*SlotDef, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyTypeMap(in map[string]*TypeDef) map[string]*TypeDef {
	out := make(map[string]*TypeDef, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyEnumMap(in map[string]*EnumDef) map[string]*EnumDef {
	out := make(map[string]*EnumDef, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
