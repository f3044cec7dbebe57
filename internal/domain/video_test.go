package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestRawVideoRounding(t *testing.T) {
	tests := []struct {
		name          string
		duration      float64
		timestamp     float64
		wantDuration  int
		wantTimestamp int
	}{
		{name: "already integral", duration: 100, timestamp: 20, wantDuration: 100, wantTimestamp: 20},
		{name: "round down", duration: 100.4, timestamp: 20.49, wantDuration: 100, wantTimestamp: 20},
		{name: "half rounds up", duration: 99.5, timestamp: 0.5, wantDuration: 100, wantTimestamp: 1},
		{name: "negative kept", duration: -1.2, timestamp: -0.5, wantDuration: -1, wantTimestamp: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVideoBookmarkFromRaw(RawVideo{Src: "s", Duration: tt.duration, Timestamp: tt.timestamp})
			if v.Duration() != tt.wantDuration {
				t.Errorf("Duration() = %d, want %d", v.Duration(), tt.wantDuration)
			}
			if v.Timestamp() != tt.wantTimestamp {
				t.Errorf("Timestamp() = %d, want %d", v.Timestamp(), tt.wantTimestamp)
			}
		})
	}
}

func TestVideoBookmarkExportIsACopy(t *testing.T) {
	v := NewVideoBookmark(VideoData{Src: "a", BaseURL: "p", Title: strPtr("first"), Duration: 10})

	exported := v.Export()
	*exported.Title = "changed"

	if v.Title() != "first" {
		t.Errorf("Title() = %q after mutating export, want %q", v.Title(), "first")
	}
}

func TestVideoBookmarkExternalID(t *testing.T) {
	v := NewVideoBookmark(VideoData{Src: "a"})
	if _, ok := v.ExternalBookmarkID(); ok {
		t.Fatal("new bookmark should not carry an external id")
	}

	withID := v.WithExternalBookmarkID("ext-1")
	id, ok := withID.ExternalBookmarkID()
	if !ok || id != "ext-1" {
		t.Errorf("ExternalBookmarkID() = (%q, %v), want (ext-1, true)", id, ok)
	}
	if _, ok := v.ExternalBookmarkID(); ok {
		t.Error("WithExternalBookmarkID must not mutate the original")
	}
}

func TestVideoQueryMatches(t *testing.T) {
	v := NewVideoBookmark(VideoData{Src: "a", BaseURL: "p", Duration: 100, Timestamp: 5})
	dur := 100
	other := 99

	tests := []struct {
		name  string
		query VideoQuery
		want  bool
	}{
		{name: "empty query matches all", query: VideoQuery{}, want: true},
		{name: "guess query", query: GuessQuery(100, "p"), want: true},
		{name: "duration mismatch", query: VideoQuery{Duration: &other}, want: false},
		{name: "src and duration", query: VideoQuery{Src: strPtr("a"), Duration: &dur}, want: true},
		{name: "title constraint on untitled", query: VideoQuery{Title: strPtr("")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Matches(v); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
