// Package kv defines the key-value contract vidmark persists through.
//
// Values are JSON documents stored under a handful of fixed namespace keys.
// Backends live under internal/store.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	// KeyOptions holds the full option set.
	KeyOptions = "options"
	// KeyData holds the full video bookmark snapshot.
	KeyData = "data"
	// KeyPermissions holds the granted optional capabilities.
	KeyPermissions = "permissions"
)

// Store is a JSON key-value store.
type Store interface {
	// Get decodes the value stored under key into dest.
	// found is false (and dest untouched) when the key does not exist.
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	// Set encodes value as JSON and stores it under key.
	Set(ctx context.Context, key string, value any) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Encode marshals a value the way every backend stores it.
func Encode(key string, value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return data, nil
}

// Decode unmarshals a stored value into dest.
func Decode(key string, data []byte, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}
