package wizard

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFinalStep   = errors.New("not_final_step")
	ErrStepIncomplete = errors.New("step_incomplete")
)

// ValidationError carries the per-field errors that blocked a transition.
type ValidationError struct {
	Step   int
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "step incomplete: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrStepIncomplete }

// State is a serializable snapshot of a controller.
type State struct {
	Kind       string            `json:"kind"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"total_steps"`
	Values     map[string]any    `json:"values"`
	Errors     map[string]string `json:"errors"`
	CanSubmit  bool              `json:"can_submit"`
}

// PersistFunc stores the composed values once every step validates.
type PersistFunc func(ctx context.Context, values map[string]any) error

// Controller is the mutable draft of one wizard session. It is not safe for
// concurrent use.
type Controller struct {
	def     Definition
	values  map[string]any
	current int
	errors  map[string]string
}

// NewController starts a session at step 1.
func NewController(def Definition) *Controller {
	return &Controller{
		def:     def,
		values:  map[string]any{},
		current: 1,
		errors:  map[string]string{},
	}
}

// Restore rebuilds a session from a previous snapshot. The step is clamped to
// the definition's range. Values are replayed through Set after the errors,
// so an error whose field or group has since been filled in is dropped.
func Restore(def Definition, values map[string]any, step int, errs map[string]string) *Controller {
	c := NewController(def)
	for k, v := range errs {
		c.errors[k] = v
	}
	for k, v := range values {
		c.Set(k, v)
	}
	c.current = clampStep(step, def.TotalSteps())
	return c
}

func clampStep(step, total int) int {
	if step < 1 {
		return 1
	}
	if total > 0 && step > total {
		return total
	}
	return step
}

// Set stores a value and clears the error of that field, plus the error of
// any group the field now satisfies. Other errors are left untouched.
func (c *Controller) Set(name string, value any) {
	c.values[name] = value
	if Satisfied(value) {
		delete(c.errors, name)
		for _, step := range c.def.Steps {
			for _, group := range step.AnyOf {
				if containsString(group.Fields, name) {
					delete(c.errors, group.Key)
				}
			}
		}
	}
}

// Value returns the current value of name.
func (c *Controller) Value(name string) any { return c.values[name] }

// Current returns the 1-based step index.
func (c *Controller) Current() int { return c.current }

// Errors returns a copy of the error map.
func (c *Controller) Errors() map[string]string {
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Next validates the current step and advances one step when it passes.
// On failure the step is unchanged and the error map gains the step's errors.
func (c *Controller) Next() error {
	errs := c.def.ValidateStep(c.current, c.values)
	if len(errs) > 0 {
		for k, v := range errs {
			c.errors[k] = v
		}
		return &ValidationError{Step: c.current, Errors: errs}
	}
	if c.current < c.def.TotalSteps() {
		c.current++
	}
	return nil
}

// Previous moves back one step without validating.
func (c *Controller) Previous() {
	if c.current > 1 {
		c.current--
	}
}

// IsFinalStep reports whether Submit is reachable.
func (c *Controller) IsFinalStep() bool {
	return c.current == c.def.TotalSteps()
}

// Submit replays validation of every step and calls persist when all pass.
// A persistence failure is returned with the session left intact.
func (c *Controller) Submit(ctx context.Context, persist PersistFunc) error {
	if !c.IsFinalStep() {
		return ErrNotFinalStep
	}

	var firstInvalid int
	all := map[string]string{}
	for step := 1; step <= c.def.TotalSteps(); step++ {
		errs := c.def.ValidateStep(step, c.values)
		if len(errs) > 0 && firstInvalid == 0 {
			firstInvalid = step
		}
		for k, v := range errs {
			all[k] = v
		}
	}
	if len(all) > 0 {
		for k, v := range all {
			c.errors[k] = v
		}
		return &ValidationError{Step: firstInvalid, Errors: all}
	}

	return persist(ctx, c.Values())
}

// Values returns a copy of the accumulated values.
func (c *Controller) Values() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// AddItem appends a trimmed, non-duplicate entry to an array field.
func (c *Controller) AddItem(name, item string) bool {
	item = strings.TrimSpace(item)
	if item == "" {
		return false
	}
	items := StringSlice(c.values[name])
	if containsString(items, item) {
		return false
	}
	c.Set(name, append(items, item))
	return true
}

// RemoveItem deletes an entry from an array field.
func (c *Controller) RemoveItem(name, item string) {
	items := StringSlice(c.values[name])
	out := make([]string, 0, len(items))
	for _, existing := range items {
		if existing != item {
			out = append(out, existing)
		}
	}
	c.values[name] = out
}

// State snapshots the session.
func (c *Controller) State() State {
	return State{
		Kind:       c.def.Kind,
		Step:       c.current,
		TotalSteps: c.def.TotalSteps(),
		Values:     c.Values(),
		Errors:     c.Errors(),
		CanSubmit:  c.IsFinalStep(),
	}
}

// StringSlice converts an array value decoded from JSON into strings.
func StringSlice(v any) []string {
	switch typed := v.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		parts := strings.Split(typed, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return nil
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
