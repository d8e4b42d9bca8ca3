package nativeflow

import "encoding/json"

// NativeFlowEntry is the canonical wire shape of a single button: a type
// name plus a JSON-encoded parameter object.
type NativeFlowEntry struct {
	Name             string `json:"name"`
	ButtonParamsJSON string `json:"buttonParamsJson"`
}

// buttonParams is the object serialized into ButtonParamsJSON for buttons
// normalized from loose shapes. Field order here is the key order on the
// wire. Subtitle stays null when absent; Disabled defaults to false.
type buttonParams struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
	Disabled bool    `json:"disabled"`
}

// Normalize converts a heterogeneous button list into canonical entries.
// Order and count are preserved; values that match no known shape pass
// through untouched rather than being dropped. Normalize is idempotent:
// running it over its own output changes nothing.
func Normalize(buttons []any) []any {
	out := make([]any, len(buttons))
	for i, b := range buttons {
		out[i] = normalizeOne(b)
	}
	return out
}

func normalizeOne(button any) any {
	m, ok := button.(map[string]any)
	if !ok {
		return button
	}

	switch {
	case hasKeys(m, "name", "buttonParamsJson"):
		// Already canonical.
		return button
	case hasKeys(m, "id", "title"):
		return canonicalEntry(m, stringField(m, "id"), stringField(m, "title"))
	case hasKeys(m, "buttonId", "buttonText"):
		title := ""
		switch text := m["buttonText"].(type) {
		case map[string]any:
			title = stringField(text, "displayText")
		case string:
			title = text
		}
		return canonicalEntry(m, stringField(m, "buttonId"), title)
	default:
		return button
	}
}

// canonicalEntry builds a NativeFlowEntry from a loose button map. The
// params carry only the base quartet; classification still sees the full
// map, so a url or phoneNumber field picks the right name.
func canonicalEntry(m map[string]any, id, title string) NativeFlowEntry {
	params := buttonParams{
		ID:       id,
		Title:    title,
		Disabled: boolField(m, "disabled"),
	}
	if s, ok := m["subtitle"].(string); ok {
		params.Subtitle = &s
	}

	data, err := json.Marshal(params)
	if err != nil {
		// A struct of strings and a bool cannot fail to marshal.
		data = []byte("{}")
	}
	return NativeFlowEntry{Name: string(Classify(m)), ButtonParamsJSON: string(data)}
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
