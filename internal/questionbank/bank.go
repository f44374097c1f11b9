package questionbank

import (
	"context"
	"log/slog"
	"math/rand/v2"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/majorname"
	"github.com/garyellow/programme-matcher/internal/matcher"
)

// Source reads one question bank by filename.
type Source interface {
	QuestionBank(ctx context.Context, filename string) ([]Question, error)
}

// Bank is the question set of one recommended major.
type Bank struct {
	Major     string     `json:"major"`
	Filename  string     `json:"filename"`
	Questions []Question `json:"questions"`
}

// Loader resolves question banks for recommendations.
type Loader struct {
	source Source
}

// NewLoader creates a Loader.
func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// ForRecommendations loads the bank of every major that determined the match
// tier, in that order. Majors without a bank are skipped.
func (l *Loader) ForRecommendations(ctx context.Context, recs matcher.MajorRecommendations) []Bank {
	majors := recs.Determining()
	banks := make([]Bank, 0, len(majors))
	for i, major := range majors {
		filename := majorname.SanitizeToFilename(major)
		if i < len(recs.QuestionFiles) {
			filename = recs.QuestionFiles[i]
		}
		if bank, ok := l.load(ctx, major, filename); ok {
			banks = append(banks, bank)
		}
	}
	return banks
}

// load tries filename and, for a major without an institution, the same
// name qualified by each institution in turn.
func (l *Loader) load(ctx context.Context, major, filename string) (Bank, bool) {
	candidates := []string{filename}
	if _, inst := majorname.Split(major); inst == "" {
		for _, i := range []majorname.Institution{majorname.NTU, majorname.NUS, majorname.SMU} {
			candidates = append(candidates, majorname.SanitizeToFilename(major+" at "+string(i)))
		}
	}

	for _, name := range candidates {
		questions, err := l.source.QuestionBank(ctx, name)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "Failed to load question bank", "major", major, "filename", name, "error", err)
			return Bank{}, false
		}

		tagged := make([]Question, len(questions))
		for i, q := range questions {
			tagged[i] = q.withDefaults(major, i)
		}
		return Bank{Major: major, Filename: name, Questions: tagged}, true
	}

	slog.InfoContext(ctx, "No question bank for major", "major", major, "filename", filename)
	return Bank{}, false
}

// Quiz picks one random question per quiz category from each bank, keeping
// bank order and then category order.
func Quiz(banks []Bank, rng *rand.Rand) []Question {
	quiz := []Question{}
	for _, bank := range banks {
		byCategory := make(map[Category][]Question, len(QuizCategories))
		for _, q := range bank.Questions {
			c := Categorize(q.Criterion)
			byCategory[c] = append(byCategory[c], q)
		}
		for _, c := range QuizCategories {
			qs := byCategory[c]
			if len(qs) == 0 {
				continue
			}
			q := qs[rng.IntN(len(qs))]
			q.Category = c
			quiz = append(quiz, q)
		}
	}
	return quiz
}
