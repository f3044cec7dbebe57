package domain

import "regexp"

// ShouldAutoDelete reports whether a bookmark has been watched to the end.
//
// A video counts as finished when the position equals the duration, or when
// the position is inside the last graceSeconds of a video that is itself
// longer than graceSeconds. Short videos are therefore never removed just for
// being close to the end.
func ShouldAutoDelete(timestamp, duration, graceSeconds int) bool {
	if timestamp == duration {
		return true
	}
	return timestamp >= duration-graceSeconds && duration > graceSeconds
}

var titlePlaceholder = regexp.MustCompile(`(?i)\$title`)

// RenderTitle fills every $title placeholder (case-insensitive) in template.
func RenderTitle(template, title string) string {
	// ReplaceAllLiteralString: a title containing "$1" must stay literal.
	return titlePlaceholder.ReplaceAllLiteralString(template, title)
}

