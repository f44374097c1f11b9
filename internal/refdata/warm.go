package refdata

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/questionbank"
)

// QuestionBank returns the questions stored under a sanitized filename.
func (s *Store) QuestionBank(ctx context.Context, filename string) ([]questionbank.Question, error) {
	if filename == "" || path.Base(filename) != filename {
		return nil, apperrors.NewValidationError("filename", fmt.Sprintf("invalid question bank filename %q", filename))
	}
	return Fetch[[]questionbank.Question](ctx, s, KindQuestions, QuestionKey(filename), questionsSchema)
}

// WarmTask preloads one document.
type WarmTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// WarmTasks lists the documents every request path depends on. The search
// index pulls in all three catalogs.
func (s *Store) WarmTasks() []WarmTask {
	return []WarmTask{
		{Name: KindOccupations, Run: func(ctx context.Context) error {
			_, err := s.Occupations(ctx)
			return err
		}},
		{Name: KindPrefixMaps, Run: func(ctx context.Context) error {
			_, err := s.PrefixMaps(ctx)
			return err
		}},
		{Name: KindSearchIndex, Run: func(ctx context.Context) error {
			_, err := s.SearchIndex(ctx)
			return err
		}},
	}
}

// Warm runs every warm task concurrently and returns the first failure.
func (s *Store) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range s.WarmTasks() {
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				return fmt.Errorf("warm %s: %w", task.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
