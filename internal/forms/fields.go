// Package forms owns the transient form state of the admin panel: parsing
// and validating operator input, and driving the submit pipelines against
// the backend client.
package forms

import (
	"sort"
	"strings"
)

// FieldErrors is a validation result keyed by field name. An empty map means
// the input passed.
type FieldErrors map[string]string

func (e FieldErrors) Any() bool { return len(e) > 0 }

// Message flattens the per-field messages into one line for flash display,
// in stable field order.
func (e FieldErrors) Message() string {
	if len(e) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(e))
	for _, f := range fields {
		parts = append(parts, e[f])
	}
	return strings.Join(parts, "; ")
}
