package wizard

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Payload maps the collected values onto the API request keys of the
// definition's entity. Values of fields the definition does not declare are
// passed through under their snake_case name.
func Payload(def Definition, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for name, value := range values {
		field, ok := def.Field(name)
		if !ok {
			out[snakeCase(name)] = value
			continue
		}
		key := field.Key
		if key == "" {
			key = snakeCase(field.Name)
		}
		if field.Number {
			value = numberValue(value)
		}
		if field.Array {
			if items, ok := value.([]any); !ok || allStrings(items) {
				value = StringSlice(value)
			}
		}
		out[key] = value
	}
	return out
}

func numberValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return json.Number(s)
}

func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
