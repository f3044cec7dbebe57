package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/vidmark/internal/kv"
)

// GrantStore keeps the granted capabilities in the key-value store.
// Contains always reads through to the store.
type GrantStore struct {
	mu    sync.Mutex // serializes read-modify-write in Grant/Revoke
	store kv.Store
}

var _ Permissions = (*GrantStore)(nil)

func NewGrantStore(store kv.Store) *GrantStore {
	return &GrantStore{store: store}
}

func (g *GrantStore) Contains(ctx context.Context, capability string) (bool, error) {
	granted, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	_, ok := granted[capability]
	return ok, nil
}

// Grant adds a capability. Granting twice is a no-op.
func (g *GrantStore) Grant(ctx context.Context, capability string) error {
	return g.modify(ctx, func(set map[string]struct{}) { set[capability] = struct{}{} })
}

// Revoke removes a capability. Revoking a missing one is a no-op.
func (g *GrantStore) Revoke(ctx context.Context, capability string) error {
	return g.modify(ctx, func(set map[string]struct{}) { delete(set, capability) })
}

// List returns the granted capabilities, sorted.
func (g *GrantStore) List(ctx context.Context) ([]string, error) {
	granted, err := g.load(ctx)
	if err != nil {
		return nil, err
	}
	return sortedKeys(granted), nil
}

func (g *GrantStore) modify(ctx context.Context, fn func(map[string]struct{})) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	granted, err := g.load(ctx)
	if err != nil {
		return err
	}
	fn(granted)
	if err := g.store.Set(ctx, kv.KeyPermissions, sortedKeys(granted)); err != nil {
		return fmt.Errorf("failed to save permissions: %w", err)
	}
	return nil
}

func (g *GrantStore) load(ctx context.Context) (map[string]struct{}, error) {
	var list []string
	if _, err := g.store.Get(ctx, kv.KeyPermissions, &list); err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	set := make(map[string]struct{}, len(list))
	for _, p := range list {
		set[p] = struct{}{}
	}
	return set, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PermissionFunc adapts a function to Permissions.
type PermissionFunc func(ctx context.Context, capability string) (bool, error)

func (f PermissionFunc) Contains(ctx context.Context, capability string) (bool, error) {
	return f(ctx, capability)
}
