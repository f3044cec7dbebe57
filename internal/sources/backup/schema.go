package backup

import "github.com/MrSnakeDoc/vidmark/internal/domain"

// CurrentVersion is written into every Document.
const CurrentVersion = 1

// Document is a full backup: the video bookmarks and, optionally, the
// option values.
//
// A bare list of bookmarks is accepted on read as well; that is what
// `vidmark export` writes without --with-options.
type Document struct {
	Version int               `json:"version" yaml:"version"`
	Videos  []domain.RawVideo `json:"videos" yaml:"videos"`
	Options map[string]any    `json:"options,omitempty" yaml:"options,omitempty"`
}
