// Package matcher scores a file's column headers against the active
// template catalog. Matching is a pure function of headers and catalog.
package matcher

import (
	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// DefaultThreshold is the minimum score for a template to be considered a match.
const DefaultThreshold = 0.8

// Result is the outcome of matching one file against the catalog.
type Result struct {
	Template *entities.Template // nil when nothing cleared the threshold
	Score    float64            // winning score, for observability
}

// Matched reports whether a template was selected.
func (r Result) Matched() bool { return r.Template != nil }

// Match selects the best template for the given raw headers. Candidates are
// filtered by file type when a hint other than "unknown" is present. The
// score of a template is the fraction of its mapping keys found among the
// file's normalized headers. Ties at the same score break deterministically:
// larger mapping set first, then lexicographically smallest template ID.
func Match(headers []string, fileType entities.FileType, templates []entities.Template, threshold float64) (Result, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	headerSet := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if n := canonical.NormalizeHeader(h); n != "" {
			headerSet[n] = struct{}{}
		}
	}

	var (
		best      *entities.Template
		bestScore float64
		bestSize  int
	)

	for i := range templates {
		tpl := &templates[i]
		if !tpl.Active {
			continue
		}
		if fileType != "" && fileType != entities.FileTypeUnknown && tpl.FileType != fileType {
			continue
		}

		mappings, err := tpl.Mappings()
		if err != nil {
			return Result{}, err
		}
		if len(mappings) == 0 {
			continue
		}

		matched := 0
		for source := range mappings {
			if _, ok := headerSet[canonical.NormalizeHeader(source)]; ok {
				matched++
			}
		}
		score := float64(matched) / float64(len(mappings))
		if score < threshold {
			continue
		}

		if best == nil || beats(score, len(mappings), tpl.TemplateID, bestScore, bestSize, best.TemplateID) {
			best = tpl
			bestScore = score
			bestSize = len(mappings)
		}
	}

	if best == nil {
		return Result{}, nil
	}
	return Result{Template: best, Score: bestScore}, nil
}

// beats reports whether candidate (score, size, id) wins over the current best.
func beats(score float64, size int, id string, bestScore float64, bestSize int, bestID string) bool {
	if score != bestScore {
		return score > bestScore
	}
	if size != bestSize {
		return size > bestSize
	}
	return id < bestID
}
