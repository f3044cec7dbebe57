package memory

import (
	"context"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Set(ctx, "options", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got map[string]int
	found, err := s.Get(ctx, "options", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || got["a"] != 1 {
		t.Errorf("Get() = (%v, %v), want (map[a:1], true)", got, found)
	}

	if err := s.Remove(ctx, "options"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	found, err = s.Get(ctx, "options", &got)
	if err != nil || found {
		t.Errorf("Get() after Remove = (%v, %v), want (false, nil)", found, err)
	}
}

func TestStoreGetCorrupted(t *testing.T) {
	s := New()
	s.SetRaw("data", []byte("{not json"))

	var got []int
	if _, err := s.Get(context.Background(), "data", &got); err == nil {
		t.Error("Get() on corrupted value should return error")
	}
}
