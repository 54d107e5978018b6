// Package wizard drives multi-step intake forms. A Controller accumulates
// values across steps, validates the current step on Next and replays every
// step on Submit.
package wizard

import (
	"fmt"
	"strings"
)

const (
	KindLead    = "lead"
	KindAccount = "account"
	KindProduct = "product"
)

// Field is one input of a step.
type Field struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Array    bool   `json:"array,omitempty"`
	Required bool   `json:"required,omitempty"`
	// Message overrides the default "<Label> is required".
	Message string `json:"-"`
	// Key is the API field the value is submitted as; defaults to the
	// snake_case form of Name.
	Key string `json:"-"`
	// Number marks fields whose string input is submitted as a JSON number.
	Number bool `json:"number,omitempty"`
}

// RequiredMessage is the error reported when the field is empty.
func (f Field) RequiredMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return fmt.Sprintf("%s is required", f.Label)
}

// AnyOf requires at least one of Fields to be set. Its error is keyed by Key.
type AnyOf struct {
	Key     string   `json:"key"`
	Fields  []string `json:"fields"`
	Message string   `json:"message"`
}

// Step owns a disjoint subset of the form's fields.
type Step struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
	AnyOf  []AnyOf `json:"any_of,omitempty"`
}

// Definition is the ordered sequence of steps for one entity kind.
type Definition struct {
	Kind  string `json:"kind"`
	Steps []Step `json:"steps"`
}

// TotalSteps returns the number of steps.
func (d Definition) TotalSteps() int { return len(d.Steps) }

// Field looks up a field by name across all steps.
func (d Definition) Field(name string) (Field, bool) {
	for _, step := range d.Steps {
		for _, f := range step.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// ValidateStep returns the errors of step (1-based) for values. An empty map
// means the step is satisfied.
func (d Definition) ValidateStep(step int, values map[string]any) map[string]string {
	errs := map[string]string{}
	if step < 1 || step > len(d.Steps) {
		return errs
	}
	s := d.Steps[step-1]
	for _, f := range s.Fields {
		if f.Required && !Satisfied(values[f.Name]) {
			errs[f.Name] = f.RequiredMessage()
		}
	}
	for _, group := range s.AnyOf {
		if !group.satisfied(values) {
			errs[group.Key] = group.Message
		}
	}
	return errs
}

func (g AnyOf) satisfied(values map[string]any) bool {
	for _, name := range g.Fields {
		if Satisfied(values[name]) {
			return true
		}
	}
	return false
}

// Satisfied reports whether v counts as filled in: a string with
// non-whitespace content, a non-empty array or map, or any other non-nil value.
func Satisfied(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(typed) != ""
	case []string:
		return len(typed) > 0
	case []any:
		return len(typed) > 0
	case []map[string]any:
		return len(typed) > 0
	case map[string]any:
		return len(typed) > 0
	default:
		return true
	}
}

// Lookup returns the definition registered for kind.
func Lookup(kind string) (Definition, bool) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLead:
		return LeadDefinition(), true
	case KindAccount:
		return AccountDefinition(), true
	case KindProduct:
		return ProductDefinition(), true
	}
	return Definition{}, false
}
