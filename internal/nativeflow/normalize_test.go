package nativeflow

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizePreservesOrderAndCount(t *testing.T) {
	buttons := []any{
		map[string]any{"id": "a", "title": "A"},
		map[string]any{"name": "cta_url", "buttonParamsJson": `{"id":"b"}`},
		map[string]any{"buttonId": "c", "buttonText": map[string]any{"displayText": "C"}},
		42,
	}

	out := Normalize(buttons)
	if len(out) != len(buttons) {
		t.Fatalf("len = %d, want %d", len(out), len(buttons))
	}

	ids := make([]string, 0, len(out))
	for _, e := range out {
		switch v := e.(type) {
		case NativeFlowEntry:
			var params map[string]any
			json.Unmarshal([]byte(v.ButtonParamsJSON), &params)
			ids = append(ids, params["id"].(string))
		case map[string]any:
			var params map[string]any
			json.Unmarshal([]byte(v["buttonParamsJson"].(string)), &params)
			ids = append(ids, params["id"].(string))
		default:
			ids = append(ids, "")
		}
	}
	want := []string{"a", "b", "c", ""}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	buttons := []any{
		map[string]any{"id": "a", "title": "A", "url": "https://example.com"},
		map[string]any{"buttonId": "b", "buttonText": "B"},
		"passthrough",
	}

	once := Normalize(buttons)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed output:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestNormalizeCanonicalShapeUntouched(t *testing.T) {
	canonical := map[string]any{"name": "quick_reply", "buttonParamsJson": `{"id":"x","title":"X"}`}
	out := Normalize([]any{canonical})

	got, ok := out[0].(map[string]any)
	if !ok {
		t.Fatalf("canonical entry changed type: %T", out[0])
	}
	if !reflect.DeepEqual(got, canonical) {
		t.Errorf("canonical entry modified: %#v", got)
	}
}

func TestNormalizeSimpleShape(t *testing.T) {
	out := Normalize([]any{
		map[string]any{"id": "b1", "title": "Visit", "url": "https://example.com"},
	})

	entry, ok := out[0].(NativeFlowEntry)
	if !ok {
		t.Fatalf("got %T, want NativeFlowEntry", out[0])
	}
	if entry.Name != "cta_url" {
		t.Errorf("Name = %q, want %q", entry.Name, "cta_url")
	}

	want := `{"id":"b1","title":"Visit","subtitle":null,"disabled":false}`
	if entry.ButtonParamsJSON != want {
		t.Errorf("ButtonParamsJSON = %s, want %s", entry.ButtonParamsJSON, want)
	}
}

func TestNormalizeLegacyShape(t *testing.T) {
	tests := []struct {
		name      string
		button    map[string]any
		wantID    string
		wantTitle string
	}{
		{
			name: "displayText object",
			button: map[string]any{
				"buttonId":   "legacy1",
				"buttonText": map[string]any{"displayText": "Tap here"},
			},
			wantID:    "legacy1",
			wantTitle: "Tap here",
		},
		{
			name: "plain string text",
			button: map[string]any{
				"buttonId":   "legacy2",
				"buttonText": "Tap here",
			},
			wantID:    "legacy2",
			wantTitle: "Tap here",
		},
		{
			name: "unusable text yields empty title",
			button: map[string]any{
				"buttonId":   "legacy3",
				"buttonText": 99,
			},
			wantID:    "legacy3",
			wantTitle: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize([]any{tt.button})
			entry, ok := out[0].(NativeFlowEntry)
			if !ok {
				t.Fatalf("got %T, want NativeFlowEntry", out[0])
			}
			if entry.Name != "quick_reply" {
				t.Errorf("Name = %q, want %q", entry.Name, "quick_reply")
			}

			var params buttonParams
			if err := json.Unmarshal([]byte(entry.ButtonParamsJSON), &params); err != nil {
				t.Fatalf("bad params JSON: %v", err)
			}
			if params.ID != tt.wantID {
				t.Errorf("id = %q, want %q", params.ID, tt.wantID)
			}
			if params.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", params.Title, tt.wantTitle)
			}
		})
	}
}

func TestNormalizeSubtitleAndDisabled(t *testing.T) {
	out := Normalize([]any{
		map[string]any{"id": "b1", "title": "A", "subtitle": "small print", "disabled": true},
		map[string]any{"id": "b2", "title": "B"},
	})

	var first buttonParams
	json.Unmarshal([]byte(out[0].(NativeFlowEntry).ButtonParamsJSON), &first)
	if first.Subtitle == nil || *first.Subtitle != "small print" {
		t.Errorf("subtitle = %v, want %q", first.Subtitle, "small print")
	}
	if !first.Disabled {
		t.Error("disabled = false, want true")
	}

	var second buttonParams
	json.Unmarshal([]byte(out[1].(NativeFlowEntry).ButtonParamsJSON), &second)
	if second.Subtitle != nil {
		t.Errorf("subtitle = %v, want nil", second.Subtitle)
	}
	if second.Disabled {
		t.Error("disabled = true, want false")
	}
}

func TestNormalizeUnknownShapePassesThrough(t *testing.T) {
	buttons := []any{
		map[string]any{"somethingElse": true},
		"just a string",
		nil,
	}
	out := Normalize(buttons)
	if !reflect.DeepEqual(out, buttons) {
		t.Errorf("unknown shapes modified: %#v", out)
	}
}
