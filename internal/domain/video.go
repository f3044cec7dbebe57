package domain

import "math"

// VideoData is the plain snapshot of a video bookmark.
// It is the shape used for persistence, import and export.
type VideoData struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// Src is the primary key: the URL of the media stream itself.
	// It is unstable, a player may issue a new one on every page load.
	Src string `json:"src" yaml:"src"`

	// BaseURL is the page the video was observed on.
	// Together with Duration it acts as a stable surrogate identity.
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// ─────────────────────────────
	// Playback
	// ─────────────────────────────

	// Title is the optional display name.
	Title *string `json:"title,omitempty" yaml:"title,omitempty"`

	// Duration is the length of the video in whole seconds.
	Duration int `json:"duration" yaml:"duration"`

	// Timestamp is the playback position in whole seconds.
	Timestamp int `json:"timestamp" yaml:"timestamp"`

	// ─────────────────────────────
	// Relations & observation
	// ─────────────────────────────

	// ExternalBookmarkID is a weak handle into the external bookmark service.
	// The external service owns the entry, this only remembers how to find it.
	ExternalBookmarkID *string `json:"externalBookmarkId,omitempty" yaml:"externalBookmarkId,omitempty"`

	// LastSeen is the unix time (seconds) the video was last observed.
	// Zero means unknown and sorts as oldest.
	LastSeen int64 `json:"lastSeen,omitempty" yaml:"lastSeen,omitempty"`
}

// RawVideo is an observation as reported by a player, before normalization.
// Durations and positions are fractional seconds.
type RawVideo struct {
	Title              *string `json:"title,omitempty" yaml:"title,omitempty"`
	Src                string  `json:"src" yaml:"src"`
	BaseURL            string  `json:"baseUrl" yaml:"baseUrl"`
	Duration           float64 `json:"duration" yaml:"duration"`
	Timestamp          float64 `json:"timestamp" yaml:"timestamp"`
	ExternalBookmarkID *string `json:"externalBookmarkId,omitempty" yaml:"externalBookmarkId,omitempty"`
	LastSeen           int64   `json:"lastSeen,omitempty" yaml:"lastSeen,omitempty"`
}

// Data converts the observation into a snapshot, rounding both times.
func (r RawVideo) Data() VideoData {
	return VideoData{
		Title:              r.Title,
		Src:                r.Src,
		BaseURL:            r.BaseURL,
		Duration:           roundSeconds(r.Duration),
		Timestamp:          roundSeconds(r.Timestamp),
		ExternalBookmarkID: r.ExternalBookmarkID,
		LastSeen:           r.LastSeen,
	}
}

// VideoBookmark is an immutable video bookmark.
// Use the accessors; mutations produce copies.
type VideoBookmark struct {
	data VideoData
}

// NewVideoBookmark builds a bookmark from a snapshot.
// Negative or otherwise odd values are accepted as-is.
func NewVideoBookmark(data VideoData) *VideoBookmark {
	return &VideoBookmark{data: cloneData(data)}
}

// NewVideoBookmarkFromRaw normalizes a raw observation into a bookmark.
func NewVideoBookmarkFromRaw(raw RawVideo) *VideoBookmark {
	return NewVideoBookmark(raw.Data())
}

func (v *VideoBookmark) Src() string     { return v.data.Src }
func (v *VideoBookmark) BaseURL() string { return v.data.BaseURL }
func (v *VideoBookmark) Duration() int   { return v.data.Duration }
func (v *VideoBookmark) Timestamp() int  { return v.data.Timestamp }
func (v *VideoBookmark) LastSeen() int64 { return v.data.LastSeen }

// Title returns the display name, or "" when none was given.
func (v *VideoBookmark) Title() string {
	if v.data.Title == nil {
		return ""
	}
	return *v.data.Title
}

// HasTitle reports whether a title was given at all.
func (v *VideoBookmark) HasTitle() bool { return v.data.Title != nil }

// ExternalBookmarkID returns the external handle and whether one is set.
func (v *VideoBookmark) ExternalBookmarkID() (string, bool) {
	if v.data.ExternalBookmarkID == nil || *v.data.ExternalBookmarkID == "" {
		return "", false
	}
	return *v.data.ExternalBookmarkID, true
}

// WithExternalBookmarkID returns a copy carrying the given external handle.
func (v *VideoBookmark) WithExternalBookmarkID(id string) *VideoBookmark {
	data := cloneData(v.data)
	data.ExternalBookmarkID = &id
	return &VideoBookmark{data: data}
}

// WithLastSeen returns a copy observed at the given unix time.
func (v *VideoBookmark) WithLastSeen(unix int64) *VideoBookmark {
	data := cloneData(v.data)
	data.LastSeen = unix
	return &VideoBookmark{data: data}
}

// Export returns a snapshot that can be fed back to NewVideoBookmark.
func (v *VideoBookmark) Export() VideoData {
	return cloneData(v.data)
}

func cloneData(d VideoData) VideoData {
	out := d
	if d.Title != nil {
		t := *d.Title
		out.Title = &t
	}
	if d.ExternalBookmarkID != nil {
		id := *d.ExternalBookmarkID
		out.ExternalBookmarkID = &id
	}
	return out
}

// roundSeconds rounds to the nearest whole second, halves rounding up
// (matching how player positions were rounded historically).
func roundSeconds(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Floor(f + 0.5))
}

// Raw converts a snapshot back into an observation, e.g. to re-import it.
func (d VideoData) Raw() RawVideo {
	return RawVideo{
		Title:              d.Title,
		Src:                d.Src,
		BaseURL:            d.BaseURL,
		Duration:           float64(d.Duration),
		Timestamp:          float64(d.Timestamp),
		ExternalBookmarkID: d.ExternalBookmarkID,
		LastSeen:           d.LastSeen,
	}
}
