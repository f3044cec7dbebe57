package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryTree is an in-process bookmark tree.
type MemoryTree struct {
	mu    sync.RWMutex
	nodes map[string]Node
	seq   []string // creation order, for stable search results
}

var _ Service = (*MemoryTree)(nil)

func NewMemoryTree() *MemoryTree {
	return &MemoryTree{nodes: make(map[string]Node)}
}

func (t *MemoryTree) Create(_ context.Context, details CreateDetails) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if details.ParentID != "" {
		parent, ok := t.nodes[details.ParentID]
		if !ok {
			return Node{}, fmt.Errorf("parent %s: %w", details.ParentID, ErrNotFound)
		}
		if parent.Type != TypeFolder {
			return Node{}, fmt.Errorf("parent %s is not a folder", details.ParentID)
		}
	}

	node := Node{
		ID:       uuid.NewString(),
		ParentID: details.ParentID,
		Title:    details.Title,
		URL:      details.URL,
		Type:     NodeTypeOrDefault(details.Type),
	}
	t.nodes[node.ID] = node
	t.seq = append(t.seq, node.ID)
	return node, nil
}

func (t *MemoryTree) Update(_ context.Context, id string, changes Changes) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, ok := t.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	node.Title = changes.Title
	if node.Type == TypeBookmark {
		node.URL = changes.URL
	}
	t.nodes[id] = node
	return node, nil
}

func (t *MemoryTree) Remove(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[id]; !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	for _, n := range t.nodes {
		if n.ParentID == id {
			return fmt.Errorf("remove %s: %w", id, ErrFolderNotEmpty)
		}
	}
	delete(t.nodes, id)
	for i, sid := range t.seq {
		if sid == id {
			t.seq = append(t.seq[:i], t.seq[i+1:]...)
			break
		}
	}
	return nil
}

func (t *MemoryTree) Search(_ context.Context, q Query) ([]Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Node, 0)
	for _, id := range t.seq {
		if n := t.nodes[id]; n.Title == q.Title {
			out = append(out, n)
		}
	}
	return out, nil
}

// Get returns a node by id.
func (t *MemoryTree) Get(id string) (Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

// Children returns the nodes filed directly under parentID, ordered by title.
func (t *MemoryTree) Children(parentID string) []Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Node, 0)
	for _, n := range t.nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

// Len returns the number of nodes in the tree.
func (t *MemoryTree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}
