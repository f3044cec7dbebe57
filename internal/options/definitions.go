package options

// Kind is the value type of an option.
type Kind string

const (
	KindBool   Kind = "bool"
	KindString Kind = "string"
	KindInt    Kind = "int"
)

// Option ids read by the video bookmark registry.
const (
	ManageBrowserBookmark = "video-manage-browser-bookmark"
	EnableGuessing        = "video-enable-guessing"
	AutoDelete            = "video-auto-delete"
	AutoDeleteTime        = "video-auto-delete-time"
	BrowserBookmarkBase   = "video-browser-bookmark-base"
	BrowserBookmarkFolder = "video-browser-bookmark-folder-name"
)

// Definition describes one option.
//
// Options that request an optional permission must default to false:
// the permission is opt-in.
type Definition struct {
	ID                   string
	Kind                 Kind
	Title                string
	Description          string
	Default              any
	PermissionsToRequest []string
}

var definitions = []Definition{
	{
		ID:          "page-action-show",
		Kind:        KindBool,
		Title:       `Show the "Page - Action"`,
		Description: "Show an icon in the address bar to select the videos to bookmark.",
		Default:     true,
	},
	{
		ID:          "page-auto-reload",
		Kind:        KindBool,
		Title:       "Automatically load the videos on the page",
		Description: "Reload the visible videos when the popup opens.",
		Default:     true,
	},
	{
		ID:          "video-auto-load-last-timestamp",
		Kind:        KindBool,
		Title:       "Automatically load last timestamp of the video",
		Description: "Seek to the bookmarked timestamp when visiting a page with this video.",
		Default:     true,
	},
	{
		ID:          "video-auto-update-bookmark",
		Kind:        KindBool,
		Title:       "Automatically update the timestamp of the bookmarked video",
		Description: "Keep the bookmark's timestamp in sync while watching.",
		Default:     true,
	},
	{
		ID:          EnableGuessing,
		Kind:        KindBool,
		Title:       "Enable video guessing",
		Description: "Treat videos with the same length and page URL as the same video even if their source differs.",
		Default:     true,
	},
	{
		ID:                   ManageBrowserBookmark,
		Kind:                 KindBool,
		Title:                "Create a browser-bookmark when creating a video-bookmark",
		Description:          "Manage a browser bookmark next to the video bookmark. Requires the bookmarks permission.",
		Default:              false,
		PermissionsToRequest: []string{"bookmarks"},
	},
	{
		ID:          BrowserBookmarkBase,
		Kind:        KindString,
		Title:       "Base string for naming browser-bookmarks",
		Description: "$title is replaced with the title of the video bookmark.",
		Default:     "$title | Sentio - Video-Bookmark",
	},
	{
		ID:          BrowserBookmarkFolder,
		Kind:        KindString,
		Title:       "Folder for browser-bookmarks",
		Description: "Name of the folder the browser bookmarks are filed under. Created when missing.",
		Default:     "Sentio - Video-Bookmarks",
	},
	{
		ID:          AutoDelete,
		Kind:        KindBool,
		Title:       "Automatically delete finished videos",
		Description: "Delete a video bookmark once the video was watched to the end.",
		Default:     false,
	},
	{
		ID:          AutoDeleteTime,
		Kind:        KindInt,
		Title:       "Auto-delete grace window (seconds)",
		Description: "A video counts as finished when fewer seconds than this remain.",
		Default:     10,
	},
	{
		ID:          "menu-show-video-src",
		Kind:        KindBool,
		Title:       "Show the videos src-attribute",
		Description: "Show the src attribute of the videos in the menus.",
		Default:     false,
	},
	{
		ID:          "edit-allow-read-only-properties",
		Kind:        KindBool,
		Title:       "Allow editing read-only video bookmark properties",
		Description: "Allow editing read-only properties such as the length or the source.",
		Default:     false,
	},
}

var byID = func() map[string]Definition {
	m := make(map[string]Definition, len(definitions))
	for _, d := range definitions {
		m[d.ID] = d
	}
	return m
}()

// Definitions returns all known options in declaration order.
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition of id.
func Lookup(id string) (Definition, bool) {
	d, ok := byID[id]
	return d, ok
}

// Defaults returns a fresh map holding every option at its default value.
func Defaults() map[string]any {
	out := make(map[string]any, len(definitions))
	for _, d := range definitions {
		out[d.ID] = d.Default
	}
	return out
}
