package linkml

import "strings"

// expandCURIE resolves a "prefix:local" identifier to its full IRI using the
// schema's prefix map, returning the input unchanged if it carries no known
// prefix (it may already be a bare IRI or a plain local name).
func expandCURIE(prefixes map[string]string, curie string) string {
	prefix, local, found := strings.Cut(curie, ":")
	if !found {
		return curie
	}
	expansion, ok := prefixes[prefix]
	if !ok {
		return curie
	}
	return expansion + local
}

// interpolatePrefixes substitutes every "{prefix}" token in a structured
// pattern's syntax with its expansion from the schema's prefix map, the
// mechanism behind structured_pattern's prefix interpolation (spec.md
// §4.7). An unknown prefix name is reported as a PatternError rather than
// left as a literal "{prefix}" in the compiled regex.
func interpolatePrefixes(prefixes map[string]string, syntax string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(syntax) {
		open := strings.IndexByte(syntax[i:], '{')
		if open < 0 {
			b.WriteString(syntax[i:])
			break
		}
		open += i
		b.WriteString(syntax[i:open])

		close := strings.IndexByte(syntax[open:], '}')
		if close < 0 {
			return "", &PatternError{Code: PatternErrorCompile, Pattern: syntax, Message: "unterminated {prefix} token"}
		}
		close += open

		name := syntax[open+1 : close]
		expansion, ok := prefixes[name]
		if !ok {
			return "", &PatternError{Code: PatternErrorUnknownPrefix, Pattern: syntax, Message: "unknown prefix " + name}
		}
		b.WriteString(expansion)
		i = close + 1
	}
	return b.String(), nil
}
