package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestStoreRoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewStore(client)
	ctx := context.Background()

	if err := store.Set(ctx, "data", []map[string]any{{"src": "a", "duration": 100}}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists(KVKey("data")) {
		t.Errorf("expected key %s to exist in redis", KVKey("data"))
	}

	var got []map[string]any
	found, err := store.Get(ctx, "data", &got)
	if err != nil || !found {
		t.Fatalf("Get() = (%v, %v), want (true, nil)", found, err)
	}
	if len(got) != 1 || got[0]["src"] != "a" {
		t.Errorf("Get() = %v", got)
	}

	if err := store.Remove(ctx, "data"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	found, err = store.Get(ctx, "data", &got)
	if err != nil || found {
		t.Errorf("Get() after Remove = (%v, %v), want (false, nil)", found, err)
	}
}

func TestStoreGetCorrupted(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewStore(client)

	if err := mr.Set(KVKey("data"), "not json"); err != nil {
		t.Fatalf("failed to seed redis: %v", err)
	}

	var got []any
	if _, err := store.Get(context.Background(), "data", &got); err == nil {
		t.Error("Get() on corrupted value should return error")
	}
}

func TestTreeLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	tree := NewTree(client)
	ctx := context.Background()

	folder, err := tree.Create(ctx, browser.CreateDetails{Title: "Sentio - Video-Bookmarks", Type: browser.TypeFolder})
	if err != nil {
		t.Fatalf("Create(folder) error = %v", err)
	}
	bm, err := tree.Create(ctx, browser.CreateDetails{ParentID: folder.ID, Title: "ep", URL: "https://p"})
	if err != nil {
		t.Fatalf("Create(bookmark) error = %v", err)
	}

	found, err := tree.Search(ctx, browser.Query{Title: "Sentio - Video-Bookmarks"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 1 || found[0].ID != folder.ID {
		t.Errorf("Search() = %+v, want the folder", found)
	}

	updated, err := tree.Update(ctx, bm.ID, browser.Changes{Title: "ep 2", URL: "https://q"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "ep 2" || updated.URL != "https://q" || updated.ParentID != folder.ID {
		t.Errorf("Update() = %+v", updated)
	}

	if err := tree.Remove(ctx, folder.ID); !errors.Is(err, browser.ErrFolderNotEmpty) {
		t.Errorf("Remove(folder) error = %v, want ErrFolderNotEmpty", err)
	}
	if err := tree.Remove(ctx, bm.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := tree.Update(ctx, bm.ID, browser.Changes{}); !errors.Is(err, browser.ErrNotFound) {
		t.Errorf("Update() on removed node error = %v, want ErrNotFound", err)
	}
}
