package nativeflow

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		button any
		want   ButtonType
	}{
		{
			name:   "explicit type wins over fields",
			button: map[string]any{"type": "send_location", "url": "https://example.com"},
			want:   TypeSendLocation,
		},
		{
			name:   "empty type falls through to rules",
			button: map[string]any{"type": "", "url": "https://example.com"},
			want:   TypeCTAURL,
		},
		{
			name:   "url beats phoneNumber",
			button: map[string]any{"url": "https://example.com", "phoneNumber": "+15551234567"},
			want:   TypeCTAURL,
		},
		{
			name:   "copyText beats phoneNumber",
			button: map[string]any{"copyText": "CODE", "phoneNumber": "+15551234567"},
			want:   TypeCTACopy,
		},
		{
			name:   "phoneNumber alone",
			button: map[string]any{"phoneNumber": "+15551234567"},
			want:   TypeCTACall,
		},
		{
			name:   "catalogLink",
			button: map[string]any{"catalogLink": "https://wa.me/c/15551234567"},
			want:   TypeCTACatalog,
		},
		{
			name:   "reminderText",
			button: map[string]any{"reminderText": "tomorrow"},
			want:   TypeCTAReminder,
		},
		{
			name:   "reminderId",
			button: map[string]any{"reminderId": "r1"},
			want:   TypeCTACancelReminder,
		},
		{
			name:   "addressId",
			button: map[string]any{"addressId": "a1"},
			want:   TypeAddressMessage,
		},
		{
			name:   "options",
			button: map[string]any{"options": []any{}},
			want:   TypeSingleSelect,
		},
		{
			name:   "presence counts even when empty",
			button: map[string]any{"url": ""},
			want:   TypeCTAURL,
		},
		{
			name:   "plain button defaults to quick reply",
			button: map[string]any{"id": "b1", "title": "Hi"},
			want:   TypeQuickReply,
		},
		{
			name:   "non-object defaults to quick reply",
			button: "not a button",
			want:   TypeQuickReply,
		},
		{
			name:   "nil defaults to quick reply",
			button: nil,
			want:   TypeQuickReply,
		},
		{
			name:   "non-string type is ignored",
			button: map[string]any{"type": 7, "phoneNumber": "+15551234567"},
			want:   TypeCTACall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.button); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEntry(t *testing.T) {
	entry, err := NewEntry(TypeCTAURL, map[string]any{
		"id":    "b1",
		"title": "Visit",
		"url":   "https://example.com",
	})
	if err != nil {
		t.Fatalf("NewEntry() error = %v", err)
	}
	if entry.Name != "cta_url" {
		t.Errorf("Name = %q, want %q", entry.Name, "cta_url")
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(entry.ButtonParamsJSON), &params); err != nil {
		t.Fatalf("ButtonParamsJSON is not valid JSON: %v", err)
	}
	if params["url"] != "https://example.com" {
		t.Errorf("params url = %v, want %q", params["url"], "https://example.com")
	}
}

func TestNewEntryMissingFields(t *testing.T) {
	_, err := NewEntry(TypeCTACall, map[string]any{"id": "b1"})
	if err == nil {
		t.Fatal("NewEntry() expected error for missing fields")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	for _, want := range []string{"phoneNumber", "title"} {
		if !strings.Contains(verr.Message, want) {
			t.Errorf("message %q does not mention %q", verr.Message, want)
		}
	}
	for _, fe := range verr.Errors {
		if fe.Path == "id" {
			t.Error("provided field id reported as missing")
		}
	}
	if verr.Example == nil {
		t.Error("expected a generated example")
	}
}

func TestNewEntryUnknownTypeNeedsBasePair(t *testing.T) {
	if _, err := NewEntry(TypeGalaxyMessage, map[string]any{"id": "b1"}); err == nil {
		t.Fatal("expected error: title missing")
	}
	if _, err := NewEntry(TypeGalaxyMessage, map[string]any{"id": "b1", "title": "Go"}); err != nil {
		t.Fatalf("NewEntry() error = %v", err)
	}
}
