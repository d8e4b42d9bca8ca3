package nativeflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ValidationError is the structured failure returned when input cannot
// be turned into a wire envelope. It carries every field error found,
// any warnings, and where useful a minimal valid example, so callers can
// render programmatic responses instead of a bare string.
type ValidationError struct {
	Message  string
	Context  string
	Errors   []FieldError
	Warnings []Warning
	Example  any
}

func (e *ValidationError) Error() string {
	return e.Message
}

// WithContext returns a copy with ctx prepended to the message, for
// layering "sending template welcome" style breadcrumbs as the error
// travels up. The receiver is not modified.
func (e *ValidationError) WithContext(ctx string) *ValidationError {
	out := *e
	out.Message = ctx + ": " + e.Message
	if e.Context == "" {
		out.Context = ctx
	} else {
		out.Context = ctx + ": " + e.Context
	}
	return &out
}

// MarshalJSON projects the error into the same shape as a failed
// ValidationResult, so HTTP handlers can write it directly.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	errors := e.Errors
	if errors == nil {
		errors = []FieldError{}
	}
	warnings := e.Warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	return json.Marshal(struct {
		IsValid  bool         `json:"isValid"`
		Errors   []FieldError `json:"errors"`
		Warnings []Warning    `json:"warnings"`
		Example  any          `json:"example,omitempty"`
	}{false, errors, warnings, e.Example})
}

// FormatDetailed renders a multi-line human-readable report: message,
// context, numbered errors and warnings, and the example as indented
// JSON. Meant for logs and CLI output, not for the wire.
func (e *ValidationError) FormatDetailed() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString("\n")
	if e.Context != "" {
		fmt.Fprintf(&b, "context: %s\n", e.Context)
	}
	for i, fe := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s: %s", i+1, fe.Path, fe.Message)
		if fe.Value != nil {
			fmt.Fprintf(&b, " (got %v)", fe.Value)
		}
		if fe.Expected != "" {
			fmt.Fprintf(&b, " (expected %s)", fe.Expected)
		}
		b.WriteString("\n")
	}
	for i, w := range e.Warnings {
		fmt.Fprintf(&b, "  warning %d. %s: %s", i+1, w.Path, w.Message)
		if w.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", w.Suggestion)
		}
		b.WriteString("\n")
	}
	if e.Example != nil {
		if data, err := json.MarshalIndent(e.Example, "  ", "  "); err == nil {
			fmt.Fprintf(&b, "  example:\n  %s\n", data)
		}
	}
	return b.String()
}

// ValidationFailed wraps a failed result into an error. ctx names the
// operation that was attempted; pass "" for none.
func ValidationFailed(ctx string, result ValidationResult) *ValidationError {
	e := &ValidationError{
		Message:  "message validation failed",
		Context:  ctx,
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}
	if ctx != "" {
		e.Message = ctx + ": " + e.Message
	}
	return e
}

// examplePlaceholders supplies a plausible value per required field for
// generated examples.
var examplePlaceholders = map[string]any{
	"id":               "button_1",
	"title":            "Click me",
	"url":              "https://example.com",
	"phoneNumber":      "+15551234567",
	"copyText":         "PROMO2024",
	"catalogLink":      "https://wa.me/c/15551234567",
	"reminderText":     "Appointment tomorrow",
	"reminderDateTime": "2024-06-01T09:00:00Z",
	"reminderId":       "reminder_1",
	"addressId":        "address_1",
	"options": []any{
		map[string]any{"id": "opt_1", "title": "Option 1", "description": "First option"},
	},
}

// MissingFieldsError reports the required fields a button of type t
// lacks, with a minimal valid example of that type.
func MissingFieldsError(t ButtonType, provided []string) *ValidationError {
	have := make(map[string]bool, len(provided))
	for _, f := range provided {
		have[f] = true
	}

	var missing []string
	example := map[string]any{"type": string(t)}
	for _, f := range requiredFieldsFor(t) {
		if !have[f] {
			missing = append(missing, f)
		}
		if v, ok := examplePlaceholders[f]; ok {
			example[f] = v
		} else {
			example[f] = "example"
		}
	}
	sort.Strings(missing)

	e := &ValidationError{
		Message: fmt.Sprintf("button of type %q is missing required fields: %s",
			t, strings.Join(missing, ", ")),
		Example: example,
	}
	for _, f := range missing {
		e.Errors = append(e.Errors, FieldError{
			Path:     f,
			Message:  fmt.Sprintf("%s is required for %s buttons", f, t),
			Expected: "non-empty value",
		})
	}
	return e
}

// ConfigFieldError reports a single bad config field alongside a full
// example config.
func ConfigFieldError(field, message string) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("invalid message config: %s", message),
		Errors: []FieldError{
			{Path: field, Message: message},
		},
		Example: map[string]any{
			"body":       "Choose an option below",
			"footer":     "Powered by example",
			"headerText": "Welcome",
			"headerType": 1,
		},
	}
}
