package vector

import (
	"fmt"
	"sort"
)

// scored pairs a document with its similarity score during ranking.
type scored struct {
	doc   Document
	score float64
}

// rank applies the shared threshold/sort/truncate pipeline. Candidates
// must arrive in a backend-defined stable order (insertion order for the
// reference store); the sort is stable so equal scores keep that order.
// Both the full and id-only projections run through this single path.
func rank(candidates []scored, opts SearchOptions) []scored {
	if opts.Threshold != nil {
		kept := candidates[:0]
		for _, c := range candidates {
			if c.score >= *opts.Threshold {
				kept = append(kept, c)
			}
		}
		candidates = kept
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if opts.TopK > 0 && len(candidates) > opts.TopK {
		candidates = candidates[:opts.TopK]
	}

	return candidates
}

// matchesFilter reports whether metadata satisfies every equality clause
// of filter. Values are compared by their string form so that numeric
// types surviving a JSON round trip still match.
func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// cloneDocument copies a document so stored entries never leave the
// store as mutable references.
func cloneDocument(doc Document) Document {
	out := doc
	if doc.Embedding != nil {
		out.Embedding = make([]float64, len(doc.Embedding))
		copy(out.Embedding, doc.Embedding)
	}
	if doc.Metadata != nil {
		out.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

func toResults(candidates []scored) []SearchResult {
	results := make([]SearchResult, len(candidates))
	for i, c := range candidates {
		results[i] = SearchResult{Document: c.doc, Score: c.score}
	}
	return results
}

func toIDScores(candidates []scored) []IDScore {
	results := make([]IDScore, len(candidates))
	for i, c := range candidates {
		results[i] = IDScore{ID: c.doc.ID, Score: c.score}
	}
	return results
}
