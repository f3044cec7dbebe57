package backup

import (
	"math"
	"strings"

	"github.com/MrSnakeDoc/vidmark/internal/domain"
)

// Skipped describes an entry Clean dropped.
type Skipped struct {
	Index  int
	Reason string
}

// Clean returns the entries that can be imported, in order, and the ones
// it dropped. Entries without a src, or with a non-finite duration, are
// dropped; everything else is kept as-is and normalized on import.
func Clean(videos []domain.RawVideo) ([]domain.RawVideo, []Skipped) {
	kept := make([]domain.RawVideo, 0, len(videos))
	var skipped []Skipped

	for i, v := range videos {
		v.Src = strings.TrimSpace(v.Src)
		switch {
		case v.Src == "":
			skipped = append(skipped, Skipped{Index: i, Reason: "missing src"})
			continue
		case math.IsNaN(v.Duration) || math.IsInf(v.Duration, 0):
			skipped = append(skipped, Skipped{Index: i, Reason: "invalid duration"})
			continue
		}
		kept = append(kept, v)
	}

	return kept, skipped
}
