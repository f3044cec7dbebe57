package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
)

// Tree is an external bookmark tree persisted in Redis.
// Each node is a JSON document; a set indexes all node IDs.
type Tree struct {
	client *redis.Client
}

var _ browser.Service = (*Tree)(nil)

// storedNode carries a creation sequence so searches return nodes in
// creation order, like the in-memory tree.
type storedNode struct {
	browser.Node
	Seq int64 `json:"seq"`
}

// NewTree creates a Redis-backed bookmark tree
func NewTree(client *redis.Client) *Tree {
	return &Tree{client: client}
}

// Create stores a new node
func (t *Tree) Create(ctx context.Context, details browser.CreateDetails) (browser.Node, error) {
	if details.ParentID != "" {
		parent, err := t.get(ctx, details.ParentID)
		if err != nil {
			return browser.Node{}, fmt.Errorf("parent %s: %w", details.ParentID, err)
		}
		if parent.Type != browser.TypeFolder {
			return browser.Node{}, fmt.Errorf("parent %s is not a folder", details.ParentID)
		}
	}

	seq, err := t.client.Incr(ctx, KeyAllNodes+":seq").Result()
	if err != nil {
		return browser.Node{}, fmt.Errorf("failed to allocate node sequence: %w", err)
	}

	node := storedNode{
		Node: browser.Node{
			ID:       uuid.NewString(),
			ParentID: details.ParentID,
			Title:    details.Title,
			URL:      details.URL,
			Type:     browser.NodeTypeOrDefault(details.Type),
		},
		Seq: seq,
	}
	if err := t.save(ctx, node); err != nil {
		return browser.Node{}, err
	}
	return node.Node, nil
}

// Update rewrites a node's title and, for bookmarks, its URL
func (t *Tree) Update(ctx context.Context, id string, changes browser.Changes) (browser.Node, error) {
	node, err := t.get(ctx, id)
	if err != nil {
		return browser.Node{}, fmt.Errorf("update %s: %w", id, err)
	}

	node.Title = changes.Title
	if node.Type == browser.TypeBookmark {
		node.URL = changes.URL
	}
	if err := t.save(ctx, node); err != nil {
		return browser.Node{}, err
	}
	return node.Node, nil
}

// Remove deletes a node; folders must be empty
func (t *Tree) Remove(ctx context.Context, id string) error {
	if _, err := t.get(ctx, id); err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}

	all, err := t.all(ctx)
	if err != nil {
		return err
	}
	for _, n := range all {
		if n.ParentID == id {
			return fmt.Errorf("remove %s: %w", id, browser.ErrFolderNotEmpty)
		}
	}

	pipe := t.client.TxPipeline()
	pipe.Del(ctx, NodeKey(id))
	pipe.SRem(ctx, AllNodesKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove node: %w", err)
	}
	return nil
}

// Search returns nodes whose title matches exactly, in creation order
func (t *Tree) Search(ctx context.Context, q browser.Query) ([]browser.Node, error) {
	all, err := t.all(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]browser.Node, 0)
	for _, n := range all {
		if n.Title == q.Title {
			out = append(out, n.Node)
		}
	}
	return out, nil
}

func (t *Tree) save(ctx context.Context, node storedNode) error {
	data, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("failed to marshal node: %w", err)
	}

	pipe := t.client.TxPipeline()
	pipe.Set(ctx, NodeKey(node.ID), data, 0)
	pipe.SAdd(ctx, AllNodesKey(), node.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save node: %w", err)
	}
	return nil
}

func (t *Tree) get(ctx context.Context, id string) (storedNode, error) {
	data, err := t.client.Get(ctx, NodeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storedNode{}, browser.ErrNotFound
		}
		return storedNode{}, fmt.Errorf("failed to get node: %w", err)
	}

	var node storedNode
	if err := json.Unmarshal(data, &node); err != nil {
		return storedNode{}, fmt.Errorf("failed to unmarshal node: %w", err)
	}
	return node, nil
}

// all loads every node, sorted by creation sequence
func (t *Tree) all(ctx context.Context) ([]storedNode, error) {
	ids, err := t.client.SMembers(ctx, AllNodesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get node IDs: %w", err)
	}

	nodes := make([]storedNode, 0, len(ids))
	for _, id := range ids {
		node, err := t.get(ctx, id)
		if err != nil {
			// Skip nodes that couldn't be retrieved
			continue
		}
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Seq < nodes[j].Seq })
	return nodes, nil
}
