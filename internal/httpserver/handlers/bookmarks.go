package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/vidmark/internal/domain"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/registry"
)

type checkResponse struct {
	IsBookmark bool   `json:"isBookmark"`
	GuessedSrc string `json:"guessedSrc,omitempty"`
}

type toggleResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

type updateResponse struct {
	Updated bool `json:"updated"`
	// Deleted is set when the update finished the video and auto-delete removed it.
	Deleted bool `json:"deleted"`
}

type countResponse struct {
	Count int `json:"count"`
}

type sweepResponse struct {
	Removed int  `json:"removed"`
	Queued  bool `json:"queued,omitempty"`
}

// ListBookmarks exports every bookmark.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Registry.Export())
	}
}

// GetBookmark returns the bookmark stored under ?src=.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, ok := requireSrc(w, r)
		if !ok {
			return
		}
		v, found := d.Registry.Get(src)
		if !found {
			writeError(w, http.StatusNotFound, "video bookmark not found")
			return
		}
		writeJSON(w, http.StatusOK, v.Export())
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var video domain.RawVideo
		if err := decodeJSON(w, r, &video); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(video.Src) == "" {
			writeError(w, http.StatusBadRequest, "src is required")
			return
		}

		if err := d.Registry.Create(r.Context(), &video); err != nil {
			writeRegistryError(w, d, "create", err)
			return
		}

		stored, _ := d.Registry.Get(video.Src)
		writeJSON(w, http.StatusCreated, stored.Export())
	}
}

// UpdateBookmark answers 409 when no bookmark with the same src and duration
// exists.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var video domain.RawVideo
		if err := decodeJSON(w, r, &video); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if !d.Registry.Update(r.Context(), domain.NewVideoBookmarkFromRaw(video)) {
			writeError(w, http.StatusConflict, "no video bookmark with this src and duration")
			return
		}
		writeJSON(w, http.StatusOK, updateResponse{
			Updated: true,
			Deleted: !d.Registry.Has(video.Src),
		})
	}
}

// DeleteBookmark removes the bookmark stored under ?src=.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, ok := requireSrc(w, r)
		if !ok {
			return
		}
		if !d.Registry.Delete(r.Context(), src) {
			writeError(w, http.StatusNotFound, "video bookmark not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteAllBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed := d.Registry.DeleteAll(r.Context())
		writeJSON(w, http.StatusOK, countResponse{Count: removed})
	}
}

// QueryBookmarks returns the bookmarks matching the posted partial record.
func QueryBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q domain.VideoQuery
		if err := decodeJSON(w, r, &q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		matches := d.Registry.Query(q)
		out := make([]domain.VideoData, 0, len(matches))
		for _, v := range matches {
			out = append(out, v.Export())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CheckBookmark reports whether the posted observation is bookmarked and
// under which src it was recognised.
func CheckBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var video domain.RawVideo
		if err := decodeJSON(w, r, &video); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		data := video.Data()
		writeJSON(w, http.StatusOK, checkResponse{
			IsBookmark: d.Registry.IsBookmark(data),
			GuessedSrc: d.Registry.GuessedSrc(data),
		})
	}
}

func ToggleBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var video domain.RawVideo
		if err := decodeJSON(w, r, &video); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := d.Registry.Toggle(r.Context(), video); err != nil {
			writeRegistryError(w, d, "toggle", err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{
			Bookmarked: d.Registry.IsBookmark(video.Data()),
		})
	}
}

// ImportBookmarks inserts the posted list; ?clear=true replaces everything.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		replace := false
		if v := r.URL.Query().Get("clear"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "clear must be a boolean")
				return
			}
			replace = b
		}

		var videos []domain.RawVideo
		if err := decodeJSON(w, r, &videos); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := d.Registry.Import(r.Context(), videos, replace); err != nil {
			writeRegistryError(w, d, "import", err)
			return
		}

		d.Logger.Info("video bookmarks imported",
			logger.Int("received", len(videos)),
			logger.Bool("clear", replace))
		writeJSON(w, http.StatusOK, countResponse{Count: d.Registry.Len()})
	}
}

// SweepBookmarks applies the auto-delete policy now, or queues it on the
// background sweeper with ?async=true.
func SweepBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async && d.SweepTrigger != nil {
			d.SweepTrigger()
			writeJSON(w, http.StatusAccepted, sweepResponse{Queued: true})
			return
		}
		writeJSON(w, http.StatusOK, sweepResponse{Removed: d.Registry.Sweep(r.Context())})
	}
}

func requireSrc(w http.ResponseWriter, r *http.Request) (string, bool) {
	src := r.URL.Query().Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "src query parameter is required")
		return "", false
	}
	return src, true
}

// writeRegistryError maps registry failures to a status code. Anything that
// is not a permission problem comes from a storage or bookmark tree call.
func writeRegistryError(w http.ResponseWriter, d deps.Deps, op string, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, registry.ErrPermissionDenied) {
		status = http.StatusForbidden
	}
	d.Logger.Warn("video bookmark operation failed",
		logger.String("op", op),
		logger.Int("status", status),
		logger.Error(err))
	writeError(w, status, err.Error())
}
