package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/domain"
)

// guessKey is the stable surrogate identity of a video.
type guessKey struct {
	duration int
	baseURL  string
}

// MemoryIndex holds video bookmarks keyed by src, plus a composite
// (duration, baseUrl) index used to recognise a video after its src changed.
type MemoryIndex struct {
	mu         sync.RWMutex
	videos     map[string]*domain.VideoBookmark // src -> bookmark
	order      []string                         // insertion order of src keys
	byGuess    map[guessKey]map[string]struct{} // (duration, baseUrl) -> set of src
	lastChange time.Time
}

// NewMemoryIndex creates a new memory index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		videos:  make(map[string]*domain.VideoBookmark),
		byGuess: make(map[guessKey]map[string]struct{}),
	}
}

// Put adds or replaces a bookmark. A replaced bookmark keeps its position.
func (idx *MemoryIndex) Put(v *domain.VideoBookmark) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if prev, ok := idx.videos[v.Src()]; ok {
		idx.unlinkGuess(prev)
	} else {
		idx.order = append(idx.order, v.Src())
	}
	idx.videos[v.Src()] = v
	idx.linkGuess(v)
	idx.lastChange = time.Now()
}

// Delete removes a bookmark; it reports whether one was present.
func (idx *MemoryIndex) Delete(src string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	prev, ok := idx.videos[src]
	if !ok {
		return false
	}
	idx.unlinkGuess(prev)
	delete(idx.videos, src)
	for i, s := range idx.order {
		if s == src {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
	idx.lastChange = time.Now()
	return true
}

// Replace drops everything and indexes the given bookmarks in order
func (idx *MemoryIndex) Replace(videos []*domain.VideoBookmark) {
	idx.mu.Lock()
	idx.videos = make(map[string]*domain.VideoBookmark, len(videos))
	idx.order = make([]string, 0, len(videos))
	idx.byGuess = make(map[guessKey]map[string]struct{})
	idx.mu.Unlock()

	for _, v := range videos {
		idx.Put(v)
	}

	idx.mu.Lock()
	idx.lastChange = time.Now()
	idx.mu.Unlock()
}

// Get retrieves a bookmark by src
func (idx *MemoryIndex) Get(src string) (*domain.VideoBookmark, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	v, ok := idx.videos[src]
	return v, ok
}

// Has reports whether src is indexed
func (idx *MemoryIndex) Has(src string) bool {
	_, ok := idx.Get(src)
	return ok
}

// All returns every bookmark in insertion order
func (idx *MemoryIndex) All() []*domain.VideoBookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*domain.VideoBookmark, 0, len(idx.order))
	for _, src := range idx.order {
		out = append(out, idx.videos[src])
	}
	return out
}

// Count returns the number of bookmarks in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.videos)
}

// LastChange returns when the index was last modified
func (idx *MemoryIndex) LastChange() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastChange
}

// Query returns the bookmarks matching q, most recently seen first.
// Bookmarks seen at the same time keep insertion order.
func (idx *MemoryIndex) Query(q domain.VideoQuery) []*domain.VideoBookmark {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var candidates []*domain.VideoBookmark
	if q.Duration != nil && q.BaseURL != nil {
		set := idx.byGuess[guessKey{duration: *q.Duration, baseURL: *q.BaseURL}]
		candidates = make([]*domain.VideoBookmark, 0, len(set))
		for _, src := range idx.order {
			if _, ok := set[src]; ok {
				candidates = append(candidates, idx.videos[src])
			}
		}
	} else {
		candidates = make([]*domain.VideoBookmark, 0, len(idx.order))
		for _, src := range idx.order {
			candidates = append(candidates, idx.videos[src])
		}
	}

	out := candidates[:0]
	for _, v := range candidates {
		if q.Matches(v) {
			out = append(out, v)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSeen() > out[j].LastSeen()
	})
	return out
}

func (idx *MemoryIndex) linkGuess(v *domain.VideoBookmark) {
	key := guessKey{duration: v.Duration(), baseURL: v.BaseURL()}
	set, ok := idx.byGuess[key]
	if !ok {
		set = make(map[string]struct{})
		idx.byGuess[key] = set
	}
	set[v.Src()] = struct{}{}
}

func (idx *MemoryIndex) unlinkGuess(v *domain.VideoBookmark) {
	key := guessKey{duration: v.Duration(), baseURL: v.BaseURL()}
	set, ok := idx.byGuess[key]
	if !ok {
		return
	}
	delete(set, v.Src())
	if len(set) == 0 {
		delete(idx.byGuess, key)
	}
}
