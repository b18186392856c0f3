package match

import (
	"github.com/invoicevault/template-engine/internal/entity"
)

// SelectBest evaluates every candidate template against text and returns the
// one with the strictly highest match score above minScore, together with its
// evaluation. Ties resolve to the first-encountered candidate, so selection
// is deterministic for a fixed input order. Returns (nil, nil) when no
// candidate qualifies. Only the match score is compared; the success flag
// plays no part in selection.
func (e *Evaluator) SelectBest(templates []entity.Template, text string, minScore float64, opts Options) (*entity.Template, *entity.MatchResult) {
	var best *entity.Template
	var bestResult *entity.MatchResult
	bestScore := minScore

	for i := range templates {
		result := e.Evaluate(templates[i], text, opts)
		if result.MatchScore > bestScore {
			best = &templates[i]
			bestResult = result
			bestScore = result.MatchScore
		}
	}
	return best, bestResult
}
