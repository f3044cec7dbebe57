// Package registry is the video bookmark engine: it owns the bookmarks keyed
// by src, recognises a video whose src changed, applies the auto-delete
// policy and mirrors bookmarks into the external bookmark tree.
//
// The local index is authoritative. The external mirror is best effort: a
// failed external call is logged and never rolled back or reconciled.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/domain"
	"github.com/MrSnakeDoc/vidmark/internal/index"
	"github.com/MrSnakeDoc/vidmark/internal/kv"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
)

// ErrPermissionDenied is returned when the bookmark folder is needed but the
// bookmarks permission is not granted.
var ErrPermissionDenied = errors.New("missing bookmarks permission")

// Options is the read-only view of the settings the registry consumes.
type Options interface {
	Bool(id string) bool
	String(id string) string
	Int(id string) int
}

// Registry stores video bookmarks.
//
// Every operation runs under one lock, held across the calls into the
// key-value store and the external bookmark tree, so operations never
// interleave.
type Registry struct {
	mu          sync.RWMutex
	index       *index.MemoryIndex
	options     Options
	store       kv.Store
	tree        browser.Service
	permissions browser.Permissions
	logger      logger.Logger
	now         func() time.Time
}

// New creates an empty registry. tree and permissions may be nil, which
// disables the external bookmark mirror. Call Load to restore saved state.
func New(
	opts Options,
	store kv.Store,
	tree browser.Service,
	permissions browser.Permissions,
	log logger.Logger,
) *Registry {
	return &Registry{
		index:       index.NewMemoryIndex(),
		options:     opts,
		store:       store,
		tree:        tree,
		permissions: permissions,
		logger:      log,
		now:         time.Now,
	}
}

// SetClock replaces the time source used to stamp LastSeen.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// ─────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────

// Create bookmarks a video. A nil video is ignored.
//
// With browser bookmark management enabled and permitted, an external
// bookmark is created first; if that fails nothing is stored.
func (r *Registry) Create(ctx context.Context, video *domain.RawVideo) error {
	if video == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.createLocked(ctx, video.Data())
}

// Delete removes the bookmark stored under src and reports whether it existed.
func (r *Registry) Delete(ctx context.Context, src string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.removeLocked(ctx, src)
	r.persistLocked(ctx)
	return removed
}

// DeleteAll removes every bookmark and returns how many were removed.
func (r *Registry) DeleteAll(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, v := range r.index.All() {
		if r.removeLocked(ctx, v.Src()) {
			removed++
		}
	}
	r.persistLocked(ctx)

	r.logger.Info("deleted all video bookmarks",
		logger.Int("count", removed))
	return removed
}

// Toggle deletes the bookmark the video is recognised as, or creates one.
//
// The deleted key is the guessed src, which may differ from video.Src when
// the player issued a new stream URL.
func (r *Registry) Toggle(ctx context.Context, video domain.RawVideo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := video.Data()
	if !r.isBookmarkLocked(data) {
		return r.createLocked(ctx, data)
	}

	src := r.guessedSrcLocked(data)
	if src == "" {
		// exact match with guessing disabled
		src = data.Src
	}
	r.removeLocked(ctx, src)
	r.persistLocked(ctx)
	return nil
}

// Update replaces an existing bookmark with a newer observation.
//
// It returns false without changing anything unless a bookmark with the same
// src and exactly the same duration exists; a different duration means the
// src now points at another video. When the auto-delete policy fires the
// bookmark is removed right after the update, and Update still returns true.
func (r *Registry) Update(ctx context.Context, video *domain.VideoBookmark) bool {
	if video == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.index.Get(video.Src())
	if !ok || prev.Duration() != video.Duration() {
		r.logger.Debug("update rejected",
			logger.String("src", video.Src()),
			logger.Bool("known", ok))
		return false
	}

	if _, has := video.ExternalBookmarkID(); !has {
		if id, prevHas := prev.ExternalBookmarkID(); prevHas {
			video = video.WithExternalBookmarkID(id)
		}
	}
	video = video.WithLastSeen(r.now().Unix())

	r.index.Put(video)
	r.persistLocked(ctx)

	if id, has := video.ExternalBookmarkID(); has && r.permissionGrantedLocked(ctx) {
		_, err := r.tree.Update(ctx, id, browser.Changes{
			Title: r.browserBookmarkTitle(video.Title()),
			URL:   video.BaseURL(),
		})
		if err != nil {
			r.logger.Warn("failed to update browser bookmark",
				logger.String("src", video.Src()),
				logger.String("external_id", id),
				logger.Error(err))
		}
	}

	if r.options.Bool(options.AutoDelete) &&
		domain.ShouldAutoDelete(video.Timestamp(), video.Duration(), r.options.Int(options.AutoDeleteTime)) {
		r.logger.Info("video finished, auto-deleting bookmark",
			logger.String("src", video.Src()),
			logger.Int("timestamp", video.Timestamp()),
			logger.Int("duration", video.Duration()))
		r.removeLocked(ctx, video.Src())
		r.persistLocked(ctx)
	}

	return true
}

// Sweep applies the auto-delete policy to every stored bookmark. It does
// nothing while auto-delete is disabled and returns how many were removed.
func (r *Registry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.options.Bool(options.AutoDelete) {
		return 0
	}

	grace := r.options.Int(options.AutoDeleteTime)
	removed := 0
	for _, v := range r.index.All() {
		if domain.ShouldAutoDelete(v.Timestamp(), v.Duration(), grace) && r.removeLocked(ctx, v.Src()) {
			removed++
		}
	}
	if removed > 0 {
		r.persistLocked(ctx)
	}
	return removed
}

// ─────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────

func (r *Registry) Has(src string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Has(src)
}

func (r *Registry) Get(src string) (*domain.VideoBookmark, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Get(src)
}

// Len returns the number of stored bookmarks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Count()
}

// LastChange returns when the bookmarks last changed in memory.
func (r *Registry) LastChange() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.LastChange()
}

// Query returns the bookmarks matching every field set in q, most recently
// seen first.
func (r *Registry) Query(q domain.VideoQuery) []*domain.VideoBookmark {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.Query(q)
}

// IsBookmark reports whether video is bookmarked, either under its own src or,
// with guessing enabled, as a video with the same duration on the same page.
func (r *Registry) IsBookmark(video domain.VideoData) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isBookmarkLocked(video)
}

// GuessedSrc returns the src the video is most likely stored under, or ""
// when guessing is disabled or the video is not recognised.
func (r *Registry) GuessedSrc(video domain.VideoData) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.guessedSrcLocked(video)
}

// ─────────────────────────────────────────────────────────────────
// Snapshot & persistence
// ─────────────────────────────────────────────────────────────────

// Export returns every bookmark in insertion order.
func (r *Registry) Export() []domain.VideoData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.exportLocked()
}

// Import inserts observations, replacing everything first when clear is set,
// and persists the result.
func (r *Registry) Import(ctx context.Context, videos []domain.RawVideo, clear bool) error {
	records := make([]*domain.VideoBookmark, 0, len(videos))
	for _, v := range videos {
		records = append(records, domain.NewVideoBookmarkFromRaw(v))
	}
	return r.ImportRecords(ctx, records, clear)
}

// ImportRecords is Import for already built bookmarks.
func (r *Registry) ImportRecords(ctx context.Context, videos []*domain.VideoBookmark, clear bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.importLocked(videos, clear)
	return r.saveLocked(ctx)
}

// Save writes the full snapshot to the key-value store.
func (r *Registry) Save(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saveLocked(ctx)
}

// Load replaces the bookmarks with the saved snapshot. A missing or
// unreadable snapshot is logged and leaves the registry unchanged.
func (r *Registry) Load(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var videos []domain.RawVideo
	found, err := r.store.Get(ctx, kv.KeyData, &videos)
	if err != nil {
		r.logger.Warn("failed to load video bookmarks, keeping current state",
			logger.Error(err))
		return
	}
	if !found {
		r.logger.Debug("no saved video bookmarks found")
		return
	}

	records := make([]*domain.VideoBookmark, 0, len(videos))
	for _, v := range videos {
		records = append(records, domain.NewVideoBookmarkFromRaw(v))
	}
	r.importLocked(records, true)

	r.logger.Info("video bookmarks loaded",
		logger.Int("count", r.index.Count()))
}

// Clear drops every bookmark from memory and erases the saved snapshot.
// External bookmarks are left alone.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index.Replace(nil)
	if err := r.store.Remove(ctx, kv.KeyData); err != nil {
		return fmt.Errorf("failed to clear video bookmarks: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Internals (callers hold r.mu)
// ─────────────────────────────────────────────────────────────────

func (r *Registry) createLocked(ctx context.Context, data domain.VideoData) error {
	data.LastSeen = r.now().Unix()

	if r.options.Bool(options.ManageBrowserBookmark) && r.permissionGrantedLocked(ctx) {
		title := ""
		if data.Title != nil {
			title = *data.Title
		}

		parent, err := r.browserBookmarkParent(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve browser bookmark folder: %w", err)
		}
		node, err := r.tree.Create(ctx, browser.CreateDetails{
			ParentID: parent.ID,
			Title:    r.browserBookmarkTitle(title),
			URL:      data.BaseURL,
			Type:     browser.TypeBookmark,
		})
		if err != nil {
			return fmt.Errorf("failed to create browser bookmark: %w", err)
		}
		data.ExternalBookmarkID = &node.ID
	}

	video := domain.NewVideoBookmark(data)
	r.index.Put(video)
	r.persistLocked(ctx)

	r.logger.Debug("video bookmark created",
		logger.String("src", video.Src()),
		logger.String("base_url", video.BaseURL()),
		logger.Int("duration", video.Duration()))
	return nil
}

// removeLocked drops src from the index, removing its external bookmark
// first when possible. External failures are swallowed.
func (r *Registry) removeLocked(ctx context.Context, src string) bool {
	video, ok := r.index.Get(src)
	if ok {
		if id, has := video.ExternalBookmarkID(); has && r.permissionGrantedLocked(ctx) {
			if err := r.tree.Remove(ctx, id); err != nil {
				r.logger.Debug("failed to remove browser bookmark",
					logger.String("src", src),
					logger.String("external_id", id),
					logger.Error(err))
			}
		}
	}
	return r.index.Delete(src)
}

func (r *Registry) isBookmarkLocked(video domain.VideoData) bool {
	if r.index.Has(video.Src) {
		return true
	}
	return r.options.Bool(options.EnableGuessing) &&
		len(r.index.Query(domain.GuessQuery(video.Duration, video.BaseURL))) > 0
}

func (r *Registry) guessedSrcLocked(video domain.VideoData) string {
	if !r.options.Bool(options.EnableGuessing) || !r.isBookmarkLocked(video) {
		return ""
	}
	matches := r.index.Query(domain.GuessQuery(video.Duration, video.BaseURL))
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Src()
}

func (r *Registry) importLocked(videos []*domain.VideoBookmark, clear bool) {
	if clear {
		r.index.Replace(nil)
	}
	for _, v := range videos {
		if v == nil {
			continue
		}
		// rebuild through the constructor so both input kinds normalise alike
		r.index.Put(domain.NewVideoBookmark(v.Export()))
	}
}

func (r *Registry) exportLocked() []domain.VideoData {
	all := r.index.All()
	out := make([]domain.VideoData, 0, len(all))
	for _, v := range all {
		out = append(out, v.Export())
	}
	return out
}

func (r *Registry) saveLocked(ctx context.Context) error {
	if err := r.store.Set(ctx, kv.KeyData, r.exportLocked()); err != nil {
		return fmt.Errorf("failed to save video bookmarks: %w", err)
	}
	return nil
}

// persistLocked saves and only logs failures: callers already changed the
// in-memory state, which stays authoritative.
func (r *Registry) persistLocked(ctx context.Context) {
	if err := r.saveLocked(ctx); err != nil {
		r.logger.Warn("failed to persist video bookmarks",
			logger.Error(err))
	}
}

// permissionGrantedLocked asks the permission source every time; a grant may
// have been revoked since the previous call.
func (r *Registry) permissionGrantedLocked(ctx context.Context) bool {
	if r.tree == nil || r.permissions == nil {
		return false
	}
	ok, err := r.permissions.Contains(ctx, browser.PermissionBookmarks)
	if err != nil {
		r.logger.Warn("failed to check bookmarks permission",
			logger.Error(err))
		return false
	}
	return ok
}

func (r *Registry) browserBookmarkTitle(title string) string {
	return domain.RenderTitle(r.options.String(options.BrowserBookmarkBase), title)
}

// browserBookmarkParent finds the folder all browser bookmarks are filed
// under, creating it when it does not exist yet.
func (r *Registry) browserBookmarkParent(ctx context.Context) (browser.Node, error) {
	if !r.permissionGrantedLocked(ctx) {
		return browser.Node{}, ErrPermissionDenied
	}

	name := r.options.String(options.BrowserBookmarkFolder)
	nodes, err := r.tree.Search(ctx, browser.Query{Title: name})
	if err != nil {
		return browser.Node{}, fmt.Errorf("failed to search bookmark folder: %w", err)
	}
	for _, n := range nodes {
		if n.Type == browser.TypeFolder {
			return n, nil
		}
	}

	folder, err := r.tree.Create(ctx, browser.CreateDetails{
		Title: name,
		Type:  browser.TypeFolder,
	})
	if err != nil {
		return browser.Node{}, fmt.Errorf("failed to create bookmark folder: %w", err)
	}
	r.logger.Info("created browser bookmark folder",
		logger.String("folder", name),
		logger.String("external_id", folder.ID))
	return folder, nil
}
