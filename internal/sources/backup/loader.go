package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/vidmark/internal/domain"
)

// MaxFileSize bounds what Load reads.
const MaxFileSize = 32 << 20

// Format is the encoding of a backup file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension; anything that is not
// .yaml or .yml is JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat accepts json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// Loader reads backup files.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads the file and returns it as a Document, whichever of the two
// accepted shapes it holds.
func (l *Loader) Load() (Document, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return Document{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	if len(data) > MaxFileSize {
		return Document{}, fmt.Errorf("backup file %s is larger than %d bytes", l.filePath, MaxFileSize)
	}

	doc, err := Decode(data, FormatFor(l.filePath))
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	return doc, nil
}

// Decode parses a Document or a bare list of bookmarks.
func Decode(data []byte, format Format) (Document, error) {
	if isList(data, format) {
		var videos []domain.RawVideo
		if err := unmarshal(data, format, &videos); err != nil {
			return Document{}, err
		}
		return Document{Version: CurrentVersion, Videos: videos}, nil
	}

	var doc Document
	if err := unmarshal(data, format, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Encode writes videos as a bare list, or as a Document when opts is not nil.
func Encode(videos []domain.VideoData, opts map[string]any, format Format) ([]byte, error) {
	var v any = videos
	if opts != nil {
		raw := make([]domain.RawVideo, 0, len(videos))
		for _, d := range videos {
			raw = append(raw, d.Raw())
		}
		v = Document{Version: CurrentVersion, Videos: raw, Options: opts}
	}

	switch format {
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

func unmarshal(data []byte, format Format, dest any) error {
	if format == FormatYAML {
		return yaml.Unmarshal(data, dest)
	}
	return json.Unmarshal(data, dest)
}

// isList reports whether the top-level value is a sequence.
func isList(data []byte, format Format) bool {
	if format == FormatYAML {
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil || len(node.Content) == 0 {
			return false
		}
		return node.Content[0].Kind == yaml.SequenceNode
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
