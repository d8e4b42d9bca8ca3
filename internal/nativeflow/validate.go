package nativeflow

import (
	"fmt"
	"regexp"
)

// FieldError pinpoints a single invalid field. Path addresses the field
// in the input ("body", "buttons[2].url"); Expected describes the
// accepted shape when stating it helps the caller.
type FieldError struct {
	Path     string `json:"path"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
	Expected string `json:"expected,omitempty"`
}

// Warning flags input that will be sent as-is but probably isn't what
// the caller meant.
type Warning struct {
	Path       string `json:"path"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult aggregates every problem found in one pass. Errors
// and Warnings are never nil, so callers and marshaled output always
// see arrays.
type ValidationResult struct {
	IsValid  bool         `json:"isValid"`
	Errors   []FieldError `json:"errors"`
	Warnings []Warning    `json:"warnings"`
}

// phonePattern accepts E.164-style numbers: optional plus, no leading
// zero, seven to fifteen digits total.
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

const maxButtonIDLength = 64

// Validate checks a message config and its raw button list, collecting
// every error and warning rather than stopping at the first. Buttons are
// validated in their pre-normalization shape so error paths match what
// the caller actually sent.
func Validate(cfg MessageConfig, buttons []any) ValidationResult {
	result := ValidationResult{
		Errors:   []FieldError{},
		Warnings: []Warning{},
	}

	if cfg.Body == "" {
		result.Errors = append(result.Errors, FieldError{
			Path:     "body",
			Message:  "body text is required",
			Expected: "non-empty string",
		})
	}

	if len(buttons) == 0 {
		result.Errors = append(result.Errors, FieldError{
			Path:     "buttons",
			Message:  "at least one button is required",
			Expected: "non-empty array",
		})
	}
	seen := make(map[string]bool, len(buttons))
	for i, b := range buttons {
		validateButton(&result, seen, i, b)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func validateButton(result *ValidationResult, seen map[string]bool, index int, button any) {
	path := func(field string) string {
		if field == "" {
			return fmt.Sprintf("buttons[%d]", index)
		}
		return fmt.Sprintf("buttons[%d].%s", index, field)
	}

	m, ok := button.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, FieldError{
			Path:     path(""),
			Message:  "button must be an object",
			Value:    button,
			Expected: "object",
		})
		return
	}

	// Canonical entries already passed through construction; their
	// params are opaque JSON here.
	if hasKeys(m, "name", "buttonParamsJson") {
		return
	}

	id, idField := buttonID(m)
	switch {
	case !isValidButtonID(id):
		result.Errors = append(result.Errors, FieldError{
			Path:     path(idField),
			Message:  fmt.Sprintf("button id must be 1-%d characters", maxButtonIDLength),
			Value:    m[idField],
			Expected: fmt.Sprintf("string of 1-%d characters", maxButtonIDLength),
		})
	case seen[id]:
		result.Errors = append(result.Errors, FieldError{
			Path:    path(idField),
			Message: "button id must be unique within a message",
			Value:   id,
		})
	default:
		seen[id] = true
	}
	if title, titleField := buttonTitle(m); title == "" {
		result.Errors = append(result.Errors, FieldError{
			Path:     path(titleField),
			Message:  "button title is required",
			Expected: "non-empty string",
		})
	}

	switch Classify(m) {
	case TypeCTAURL:
		if stringField(m, "url") == "" {
			result.Errors = append(result.Errors, FieldError{
				Path:     path("url"),
				Message:  "url is required for link buttons",
				Value:    m["url"],
				Expected: "non-empty string",
			})
		}
	case TypeCTACall:
		phone := stringField(m, "phoneNumber")
		if !phonePattern.MatchString(phone) {
			result.Errors = append(result.Errors, FieldError{
				Path:     path("phoneNumber"),
				Message:  "phone number must be in international format",
				Value:    m["phoneNumber"],
				Expected: "E.164 number, e.g. +15551234567",
			})
		}
	case TypeCTACopy:
		if stringField(m, "copyText") == "" {
			result.Errors = append(result.Errors, FieldError{
				Path:     path("copyText"),
				Message:  "copyText is required for copy buttons",
				Value:    m["copyText"],
				Expected: "non-empty string",
			})
		}
	}

	if _, explicit := m["type"].(string); !explicit {
		if matched := matchedRuleFields(m); len(matched) > 1 {
			result.Warnings = append(result.Warnings, Warning{
				Path: path(""),
				Message: fmt.Sprintf("button matches multiple types via %v; classified as %q",
					matched, Classify(m)),
				Suggestion: "set an explicit type field to disambiguate",
			})
		}
	}
}

// buttonID returns the id under whichever key the shape uses, along with
// the key itself for error paths.
func buttonID(m map[string]any) (string, string) {
	if _, ok := m["buttonId"]; ok {
		return stringField(m, "buttonId"), "buttonId"
	}
	return stringField(m, "id"), "id"
}

func buttonTitle(m map[string]any) (string, string) {
	if text, ok := m["buttonText"]; ok {
		switch v := text.(type) {
		case map[string]any:
			return stringField(v, "displayText"), "buttonText.displayText"
		case string:
			return v, "buttonText"
		}
		return "", "buttonText"
	}
	return stringField(m, "title"), "title"
}

func isValidButtonID(id string) bool {
	return len(id) >= 1 && len(id) <= maxButtonIDLength
}

// matchedRuleFields lists every classifier field present on the button,
// in rule order.
func matchedRuleFields(m map[string]any) []string {
	var matched []string
	for _, rule := range classifierRules {
		if _, ok := m[rule.field]; ok {
			matched = append(matched, rule.field)
		}
	}
	return matched
}
