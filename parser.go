package linkml

import (
	goccyjson "github.com/goccy/go-json"
	goccyyaml "github.com/goccy/go-yaml"
)

// Format names the wire encoding of a schema source document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Parse decodes raw schema bytes into a SchemaDocument, the same two-format
// (YAML-or-JSON) acceptance the teacher's compiler applies to instance data,
// here applied to the schema source itself.
func Parse(data []byte, format Format) (*SchemaDocument, error) {
	doc := &SchemaDocument{}

	switch format {
	case FormatYAML:
		if err := goccyyaml.Unmarshal(data, doc); err != nil {
			return nil, wrapParseError(err)
		}
	case FormatJSON:
		if err := goccyjson.Unmarshal(data, doc); err != nil {
			return nil, wrapParseError(err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	indexNames(doc)
	return doc, nil
}

// wrapParseError adapts an underlying decoder error into a *ParseError. The
// goccy/go-yaml decoder annotates syntax errors with a line number; when one
// isn't available (e.g. a JSON error, or a semantic YAML error) the position
// is left at zero rather than guessed.
func wrapParseError(err error) *ParseError {
	if yerr, ok := err.(interface{ Line() int }); ok {
		return &ParseError{Line: yerr.Line(), Message: err.Error()}
	}
	return &ParseError{Message: err.Error()}
}

// indexNames back-fills the map-key name into each ClassDef/SlotDef so
// downstream code can pass one around without its enclosing map, and stamps
// fromSchema/className onto every slot and class, matching the pattern the
// teacher uses in schema.go to give nested definitions self-knowledge of
// their own key after unmarshaling.
func indexNames(doc *SchemaDocument) {
	for name, c := range doc.Classes {
		if c == nil {
			continue
		}
		c.className = name
		for slotName, usage := range c.SlotUsage {
			if usage != nil {
				usage.slotName = slotName
			}
		}
		for slotName, attr := range c.Attributes {
			if attr != nil {
				attr.slotName = slotName
				attr.fromSchema = doc.ID
			}
		}
	}
	for name, s := range doc.Slots {
		if s == nil {
			continue
		}
		s.slotName = name
		s.fromSchema = doc.ID
	}
}
