package match

import (
	"strings"

	"github.com/invoicevault/template-engine/internal/entity"
)

// ScoreMarkers computes how strongly a template's identification markers
// appear in text. A template missing any required marker is categorically
// rejected (score 0) regardless of optional marker hits. An empty marker
// list also scores 0: such a template cannot be identified.
func ScoreMarkers(markers []entity.Marker, text string) float64 {
	score, _ := EvaluateMarkers(markers, text)
	return score
}

// EvaluateMarkers is ScoreMarkers plus a per-marker breakdown for debug info.
func EvaluateMarkers(markers []entity.Marker, text string) (float64, []entity.MarkerResult) {
	if len(markers) == 0 {
		return 0, nil
	}

	lowered := strings.ToLower(text)
	results := make([]entity.MarkerResult, 0, len(markers))

	matched := 0
	required := 0
	matchedRequired := 0
	for _, m := range markers {
		if m.Required {
			required++
		}
		hit := m.Text != "" && strings.Contains(lowered, strings.ToLower(m.Text))
		if hit {
			matched++
			if m.Required {
				matchedRequired++
			}
		}
		results = append(results, entity.MarkerResult{
			Text:     m.Text,
			Required: m.Required,
			Matched:  hit,
		})
	}

	if required > 0 && matchedRequired < required {
		return 0, results
	}
	return float64(matched) / float64(len(markers)), results
}
