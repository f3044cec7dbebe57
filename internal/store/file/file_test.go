package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "vidmark.json")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var missing map[string]string
	found, err := s.Get(ctx, "options", &missing)
	if err != nil || found {
		t.Fatalf("Get() on empty store = (%v, %v), want (false, nil)", found, err)
	}

	if err := s.Set(ctx, "options", map[string]string{"video-browser-bookmark-base": "$title"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Set(ctx, "data", []string{"a", "b"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// A second store on the same file sees the same document.
	other, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var data []string
	found, err = other.Get(ctx, "data", &data)
	if err != nil || !found || len(data) != 2 {
		t.Errorf("Get() = (%v, %v, %v), want ([a b], true, nil)", data, found, err)
	}

	if err := s.Remove(ctx, "data"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	found, err = other.Get(ctx, "data", &data)
	if err != nil || found {
		t.Errorf("Get() after Remove = (%v, %v), want (false, nil)", found, err)
	}

	var opts map[string]string
	found, err = other.Get(ctx, "options", &opts)
	if err != nil || !found || opts["video-browser-bookmark-base"] != "$title" {
		t.Errorf("options lost after removing data: (%v, %v, %v)", opts, found, err)
	}
}

func TestStoreCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidmark.json")
	if err := os.WriteFile(path, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	var v any
	if _, err := s.Get(context.Background(), "data", &v); err == nil {
		t.Error("Get() on corrupted file should return error")
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should return error")
	}
}
