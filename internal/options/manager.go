// Package options stores the named settings that drive the video bookmark
// registry. Values are typed by their Definition and persisted as one
// document under the kv "options" key.
package options

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/vidmark/internal/kv"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid option value")
)

// ImportMode controls what happens to options missing from imported data.
type ImportMode string

const (
	// ImportIgnore leaves missing options untouched.
	ImportIgnore ImportMode = "ignore"
	// ImportReset resets missing options to their defaults.
	ImportReset ImportMode = "reset"
	// ImportFalse sets missing boolean options to false.
	ImportFalse ImportMode = "false"
)

// ParseImportMode accepts "", "ignore", "reset" or "false".
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportIgnore:
		return ImportIgnore, nil
	case ImportReset:
		return ImportReset, nil
	case ImportFalse:
		return ImportFalse, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", s)
	}
}

// Manager holds the current option values.
type Manager struct {
	mu     sync.RWMutex
	values map[string]any
	store  kv.Store
	logger logger.Logger
}

// NewManager returns a manager initialised with the defaults.
// Call Load to restore persisted values.
func NewManager(store kv.Store, log logger.Logger) *Manager {
	return &Manager{
		values: Defaults(),
		store:  store,
		logger: log,
	}
}

// Get returns the raw value of id.
func (m *Manager) Get(id string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[id]
	return v, ok
}

// Bool returns a boolean option, false when unknown.
func (m *Manager) Bool(id string) bool {
	v, _ := m.Get(id)
	b, _ := v.(bool)
	return b
}

// String returns a string option, "" when unknown.
func (m *Manager) String(id string) string {
	v, _ := m.Get(id)
	s, _ := v.(string)
	return s
}

// Int returns an integer option, 0 when unknown.
func (m *Manager) Int(id string) int {
	v, _ := m.Get(id)
	i, _ := v.(int)
	return i
}

// Set validates and stores one option, then persists the whole set.
func (m *Manager) Set(ctx context.Context, id string, value any) error {
	def, ok := Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, id)
	}
	normalized, err := coerce(def, value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.values[id] = normalized
	m.mu.Unlock()

	return m.Save(ctx)
}

// Export returns a copy of all values.
func (m *Manager) Export() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Import applies data according to mode and persists the result.
// It returns the permissions that enabled options need, sorted. Whether those
// permissions are already granted is not checked.
func (m *Manager) Import(ctx context.Context, data map[string]any, mode ImportMode) ([]string, error) {
	m.mu.Lock()
	if mode == ImportReset {
		m.values = Defaults()
	}
	m.applyLocked(data)
	if mode == ImportFalse {
		for _, def := range definitions {
			if _, given := data[def.ID]; !given && def.Kind == KindBool {
				m.values[def.ID] = false
			}
		}
	}
	m.mu.Unlock()

	if err := m.Save(ctx); err != nil {
		return nil, err
	}
	return permissionsFor(data), nil
}

// Reset restores every default and persists.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.values = Defaults()
	m.mu.Unlock()
	return m.Save(ctx)
}

// Save writes all values to the key-value store.
func (m *Manager) Save(ctx context.Context) error {
	if err := m.store.Set(ctx, kv.KeyOptions, m.Export()); err != nil {
		return fmt.Errorf("failed to save options: %w", err)
	}
	return nil
}

// Load restores persisted values on top of the current ones.
// Read or decode failures are logged and otherwise ignored.
func (m *Manager) Load(ctx context.Context) {
	var data map[string]any
	found, err := m.store.Get(ctx, kv.KeyOptions, &data)
	if err != nil {
		m.logger.Warn("failed to load options, keeping current values",
			logger.Error(err))
		return
	}
	if !found {
		m.logger.Debug("no persisted options found")
		return
	}

	m.mu.Lock()
	m.applyLocked(data)
	m.mu.Unlock()

	m.logger.Debug("options loaded",
		logger.Int("count", len(data)))
}

// LoadFile applies overrides from a YAML (.yaml, .yml) or TOML (.toml) file.
// The values are not persisted.
func (m *Manager) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read options file: %w", err)
	}

	data := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &data)
	case ".toml":
		err = toml.Unmarshal(raw, &data)
	default:
		return fmt.Errorf("unsupported options file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to parse options file: %w", err)
	}

	m.mu.Lock()
	m.applyLocked(data)
	m.mu.Unlock()

	m.logger.Info("options file applied",
		logger.String("file", path),
		logger.Int("count", len(data)))
	return nil
}

// applyLocked copies known, well-typed values from data. Callers hold m.mu.
func (m *Manager) applyLocked(data map[string]any) {
	for id, value := range data {
		def, ok := Lookup(id)
		if !ok {
			m.logger.Debug("ignoring unknown option", logger.String("option", id))
			continue
		}
		normalized, err := coerce(def, value)
		if err != nil {
			m.logger.Warn("ignoring invalid option value",
				logger.String("option", id),
				logger.Error(err))
			continue
		}
		m.values[id] = normalized
	}
}

func permissionsFor(data map[string]any) []string {
	set := make(map[string]struct{})
	for _, def := range definitions {
		if len(def.PermissionsToRequest) == 0 {
			continue
		}
		if b, ok := data[def.ID].(bool); ok && b {
			for _, p := range def.PermissionsToRequest {
				set[p] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// coerce converts value to the Go type of def.Kind.
// Strings are accepted for every kind so CLI and env input work unchanged.
func coerce(def Definition, value any) (any, error) {
	invalid := func() error {
		return fmt.Errorf("%w: %s expects %s, got %v", ErrInvalidValue, def.ID, def.Kind, value)
	}

	switch def.Kind {
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, invalid()
			}
			return b, nil
		}
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case KindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, invalid()
			}
			return int(v), nil
		case string:
			i, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, invalid()
			}
			return i, nil
		}
	}
	return nil, invalid()
}
