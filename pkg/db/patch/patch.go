// Package patch turns a partial JSON update into a column map for GORM's
// Updates, applying a per-entity column allowlist.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/pkg/timeutil"
	"gorm.io/datatypes"
)

// Columns maps accepted request keys to their column names.
type Columns map[string]string

// Allow builds a Columns set where every key is also the column name.
func Allow(columns ...string) Columns {
	out := make(Columns, len(columns))
	for _, c := range columns {
		out[c] = c
	}
	return out
}

// With adds key aliases that write to column.
func (c Columns) With(column string, aliases ...string) Columns {
	c[column] = column
	for _, alias := range aliases {
		c[alias] = column
	}
	return c
}

// Apply keeps allowlisted keys only. Empty or whitespace-only strings become
// NULL; arrays and objects are stored as JSON.
func (c Columns) Apply(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		column, ok := c[strings.TrimSpace(key)]
		if !ok {
			continue
		}
		out[column] = clean(value)
	}
	return out
}

func clean(value any) any {
	switch typed := value.(type) {
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return nil
		}
		return trimmed
	case []any, []string, map[string]any:
		b, err := json.Marshal(typed)
		if err != nil {
			return nil
		}
		return datatypes.JSON(b)
	default:
		return value
	}
}

// String reads a trimmed string from a decoded JSON object.
func String(input map[string]any, key string) (string, bool) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return "", ok
	}
	s, isString := raw.(string)
	if !isString {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Times replaces the named date columns of an applied update with parsed
// time values. Blank values were already turned into NULL by Apply.
func Times(updates map[string]any, columns ...string) error {
	for _, column := range columns {
		raw, ok := updates[column]
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			return fmt.Errorf("%w: %s", timeutil.ErrInvalidTime, column)
		}
		parsed, err := timeutil.ParseOptional(s, false)
		if err != nil {
			return fmt.Errorf("%w: %s", timeutil.ErrInvalidTime, column)
		}
		updates[column] = *parsed
	}
	return nil
}

var ErrInvalidDecimal = errors.New("invalid_decimal")

// Decimals replaces the named numeric columns with decimal values rounded to
// two places. Negative amounts are rejected.
func Decimals(updates map[string]any, columns ...string) error {
	for _, column := range columns {
		raw, ok := updates[column]
		if !ok || raw == nil {
			continue
		}
		var value decimal.Decimal
		switch typed := raw.(type) {
		case float64:
			value = decimal.NewFromFloat(typed)
		case int:
			value = decimal.NewFromInt(int64(typed))
		case string:
			parsed, err := decimal.NewFromString(typed)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDecimal, column)
			}
			value = parsed
		case decimal.Decimal:
			value = typed
		default:
			return fmt.Errorf("%w: %s", ErrInvalidDecimal, column)
		}
		if value.IsNegative() {
			return fmt.Errorf("%w: %s", ErrInvalidDecimal, column)
		}
		updates[column] = value.Round(2)
	}
	return nil
}
