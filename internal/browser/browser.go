// Package browser models the external, folder-based bookmark service that
// video bookmarks are mirrored into, together with the optional permission
// that gates every call to it.
package browser

import (
	"context"
	"errors"
)

// PermissionBookmarks is the capability required to touch the bookmark tree.
const PermissionBookmarks = "bookmarks"

// NodeType distinguishes bookmarks from folders.
type NodeType string

const (
	TypeBookmark NodeType = "bookmark"
	TypeFolder   NodeType = "folder"
)

var (
	// ErrNotFound is returned for operations on an unknown node id.
	ErrNotFound = errors.New("bookmark node not found")
	// ErrFolderNotEmpty is returned when removing a folder that still has children.
	ErrFolderNotEmpty = errors.New("bookmark folder is not empty")
)

// Node is one entry of the external bookmark tree.
type Node struct {
	ID       string   `json:"id"`
	ParentID string   `json:"parentId,omitempty"`
	Title    string   `json:"title"`
	URL      string   `json:"url,omitempty"`
	Type     NodeType `json:"type"`
}

// CreateDetails describes a node to create. An empty Type means bookmark.
type CreateDetails struct {
	ParentID string
	Title    string
	URL      string
	Type     NodeType
}

// Changes are applied by Update; both fields are always written.
type Changes struct {
	Title string
	URL   string
}

// Query selects nodes by exact title.
type Query struct {
	Title string
}

// Service is the external bookmark tree.
type Service interface {
	Create(ctx context.Context, details CreateDetails) (Node, error)
	Update(ctx context.Context, id string, changes Changes) (Node, error)
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]Node, error)
}

// Permissions answers whether an optional capability is currently granted.
// Implementations must not cache: a grant can be revoked at any time.
type Permissions interface {
	Contains(ctx context.Context, capability string) (bool, error)
}

// NodeTypeOrDefault returns t, or TypeBookmark when t is empty.
func NodeTypeOrDefault(t NodeType) NodeType {
	if t == "" {
		return TypeBookmark
	}
	return t
}
