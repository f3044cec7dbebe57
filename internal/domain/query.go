package domain

// VideoQuery is a partial VideoData used for searching.
// Nil fields are unconstrained; set fields must match exactly.
type VideoQuery struct {
	Title              *string `json:"title,omitempty"`
	Src                *string `json:"src,omitempty"`
	BaseURL            *string `json:"baseUrl,omitempty"`
	Duration           *int    `json:"duration,omitempty"`
	Timestamp          *int    `json:"timestamp,omitempty"`
	ExternalBookmarkID *string `json:"externalBookmarkId,omitempty"`
}

// GuessQuery returns the query used to recognise the same video under a new src.
func GuessQuery(duration int, baseURL string) VideoQuery {
	return VideoQuery{Duration: &duration, BaseURL: &baseURL}
}

// IsGuess reports whether the query constrains exactly duration and baseUrl.
func (q VideoQuery) IsGuess() bool {
	return q.Duration != nil && q.BaseURL != nil &&
		q.Title == nil && q.Src == nil && q.Timestamp == nil && q.ExternalBookmarkID == nil
}

// Matches reports whether the bookmark's exported fields satisfy q.
// A constrained optional field never matches a bookmark that lacks it.
func (q VideoQuery) Matches(v *VideoBookmark) bool {
	d := v.data
	if q.Src != nil && *q.Src != d.Src {
		return false
	}
	if q.BaseURL != nil && *q.BaseURL != d.BaseURL {
		return false
	}
	if q.Duration != nil && *q.Duration != d.Duration {
		return false
	}
	if q.Timestamp != nil && *q.Timestamp != d.Timestamp {
		return false
	}
	if q.Title != nil && (d.Title == nil || *q.Title != *d.Title) {
		return false
	}
	if q.ExternalBookmarkID != nil && (d.ExternalBookmarkID == nil || *q.ExternalBookmarkID != *d.ExternalBookmarkID) {
		return false
	}
	return true
}
