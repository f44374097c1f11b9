package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/iwilltry42/bm25-go/bm25"

	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/stringutil"
)

// BM25 parameters
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// SearchResult is a module with its relevance score.
type SearchResult struct {
	Module Module  `json:"module"`
	Score  float64 `json:"score"`
}

// Index ranks modules against free-text queries with BM25 over each
// module's code, title and description.
// An Index is immutable once built and safe for concurrent use.
type Index struct {
	modules []Module
	okapi   *bm25.BM25Okapi
}

// NewIndex builds an index over modules. The slice is retained, not copied.
func NewIndex(modules []Module) (*Index, error) {
	idx := &Index{modules: modules}
	if len(modules) == 0 {
		return idx, nil
	}

	corpus := make([]string, len(modules))
	for i, m := range modules {
		corpus[i] = strings.Join([]string{m.Code, m.Title, m.Description}, " ")
	}
	okapi, err := bm25.NewBM25Okapi(corpus, stringutil.Tokenize, bm25K1, bm25B, nil)
	if err != nil {
		return nil, fmt.Errorf("build bm25 index: %w", err)
	}
	idx.okapi = okapi
	return idx, nil
}

// Len returns the number of indexed modules.
func (idx *Index) Len() int {
	return len(idx.modules)
}

// Search returns up to limit modules ranked by score. Only modules with a
// positive score are returned. An empty inst searches every institution.
// An empty query returns the catalog in its stored order.
func (idx *Index) Search(query string, inst majorname.Institution, limit int) ([]SearchResult, error) {
	keep := func(m Module) bool { return inst == "" || m.Institution == inst }

	tokens := stringutil.Tokenize(query)
	if len(tokens) == 0 || idx.okapi == nil {
		var out []SearchResult
		for _, m := range idx.modules {
			if !keep(m) {
				continue
			}
			out = append(out, SearchResult{Module: m})
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return out, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("score query: %w", err)
	}

	var out []SearchResult
	for i, score := range scores {
		if score <= 0 || !keep(idx.modules[i]) {
			continue
		}
		out = append(out, SearchResult{Module: idx.modules[i], Score: score})
	}
	slices.SortStableFunc(out, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
