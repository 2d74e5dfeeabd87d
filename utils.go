package linkml

import (
	"fmt"
	"strings"
)

// replace substitutes {key} placeholders in a template string with params,
// the same mail-merge style the teacher's evaluation errors use to keep
// messages data-driven instead of building them with fmt.Sprintf call sites
// scattered across every validator.
func replace(template string, params map[string]any) string {
	if len(params) == 0 {
		return template
	}
	for key, value := range params {
		template = strings.ReplaceAll(template, "{"+key+"}", fmt.Sprint(value))
	}
	return template
}

// joinPath appends a segment to a document-order path, used consistently by
// every validator family so Issue.Path reads like "Patient.name[0].given".
func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	if strings.HasPrefix(segment, "[") {
		return base + segment
	}
	return base + "." + segment
}

// kindOf classifies a decoded instance value the way the validator bank's
// TypeValidator needs to: scalar kinds plus "list"/"mapping"/"null".
func kindOf(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "float"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	default:
		_ = val
		return "unknown"
	}
}
