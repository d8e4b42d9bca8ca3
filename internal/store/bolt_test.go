package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/terastudio-org/BaileysHelper/internal/nativeflow"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTemplate(name string) Template {
	return Template{
		Name:   name,
		Config: nativeflow.MessageConfig{Body: "Pick one", Footer: "Thanks"},
		Buttons: []any{
			map[string]any{"id": "yes", "title": "Yes"},
			map[string]any{"id": "no", "title": "No"},
		},
	}
}

func TestSaveAndGetTemplate(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveTemplate(sampleTemplate("welcome")); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	got, err := s.GetTemplate("welcome")
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.Config.Body != "Pick one" {
		t.Errorf("body = %q", got.Config.Body)
	}
	if len(got.Buttons) != 2 {
		t.Errorf("buttons = %d, want 2", len(got.Buttons))
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetTemplateNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTemplate("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdateKeepsCreatedAt(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveTemplate(sampleTemplate("welcome")); err != nil {
		t.Fatal(err)
	}
	first, _ := s.GetTemplate("welcome")

	time.Sleep(5 * time.Millisecond)

	updated := sampleTemplate("welcome")
	updated.Config.Body = "New body"
	if err := s.SaveTemplate(updated); err != nil {
		t.Fatal(err)
	}

	second, _ := s.GetTemplate("welcome")
	if second.Config.Body != "New body" {
		t.Errorf("body = %q", second.Config.Body)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("UpdatedAt did not advance: %v -> %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestDeleteTemplate(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveTemplate(sampleTemplate("gone")); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTemplate("gone"); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	if _, err := s.GetTemplate("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	if err := s.DeleteTemplate("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestListTemplates(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.SaveTemplate(sampleTemplate(name)); err != nil {
			t.Fatal(err)
		}
	}

	templates, err := s.ListTemplates()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(templates) != len(want) {
		t.Fatalf("len = %d, want %d", len(templates), len(want))
	}
	for i, w := range want {
		if templates[i].Name != w {
			t.Errorf("templates[%d] = %q, want %q", i, templates[i].Name, w)
		}
	}
}

func TestListTemplatesEmpty(t *testing.T) {
	s := newTestStore(t)

	templates, err := s.ListTemplates()
	if err != nil {
		t.Fatal(err)
	}
	if templates == nil {
		t.Error("want non-nil empty slice")
	}
	if len(templates) != 0 {
		t.Errorf("len = %d, want 0", len(templates))
	}
}
