package redis

const (
	// KeyPrefixKV is the prefix for key-value namespace keys
	KeyPrefixKV = "vidmark:kv:"
	// KeyPrefixNode is the prefix for external bookmark nodes
	KeyPrefixNode = "vidmark:node:"
	// KeyAllNodes is the key for the set of all node IDs
	KeyAllNodes = "vidmark:nodes:all"
)

// KVKey returns the Redis key for a namespace key (ex: "data", "options")
func KVKey(name string) string {
	return KeyPrefixKV + name
}

// NodeKey returns the Redis key for a bookmark node by ID
func NodeKey(id string) string {
	return KeyPrefixNode + id
}

// AllNodesKey returns the key for the set of all node IDs
func AllNodesKey() string {
	return KeyAllNodes
}
