package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

type snapshot struct {
	Src      string `json:"src"`
	Duration int    `json:"duration"`
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "vidmark.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	want := []snapshot{{Src: "a", Duration: 100}, {Src: "b", Duration: 42}}
	if err := s.Set(ctx, "data", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	// Overwrite goes through the upsert path.
	want[1].Duration = 43
	if err := s.Set(ctx, "data", want); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}

	var got []snapshot
	found, err := s.Get(ctx, "data", &got)
	if err != nil || !found {
		t.Fatalf("Get() = (%v, %v), want (true, nil)", found, err)
	}
	if len(got) != 2 || got[1].Duration != 43 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	if err := s.Remove(ctx, "data"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	found, err = s.Get(ctx, "data", &got)
	if err != nil || found {
		t.Errorf("Get() after Remove = (%v, %v), want (false, nil)", found, err)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vidmark.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set(ctx, "options", map[string]bool{"video-auto-delete": true}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	_ = s.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open() second time error = %v", err)
	}
	defer func() { _ = reopened.Close() }()

	var got map[string]bool
	found, err := reopened.Get(ctx, "options", &got)
	if err != nil || !found || !got["video-auto-delete"] {
		t.Errorf("Get() after reopen = (%v, %v, %v)", got, found, err)
	}
}
