// Package questionbank serves the embedded fallback question sets and
// applies fan-out configuration to question sets from any source.
package questionbank

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"visa-portal/internal/models"
)

//go:embed fallback_questions.yaml
var fallbackYAML []byte

type fallbackSet struct {
	Questions       []models.Question          `yaml:"questions"`
	Recommendations []models.RecommendationRow `yaml:"recommendations"`
}

var (
	loadOnce sync.Once
	sets     map[models.VisaType]fallbackSet
	loadErr  error
)

func load() (map[models.VisaType]fallbackSet, error) {
	loadOnce.Do(func() {
		var raw map[string]fallbackSet
		if err := yaml.Unmarshal(fallbackYAML, &raw); err != nil {
			loadErr = fmt.Errorf("parse fallback questions: %w", err)
			return
		}
		sets = make(map[models.VisaType]fallbackSet, len(raw))
		for name, set := range raw {
			vt, ok := models.ParseVisaType(name)
			if !ok {
				loadErr = fmt.Errorf("fallback questions: unknown visa type %q", name)
				return
			}
			for i := range set.Questions {
				set.Questions[i].VisaType = vt
			}
			sets[vt] = set
		}
	})
	return sets, loadErr
}

// Fallback returns a copy of the static question set for visaType.
func Fallback(visaType models.VisaType) ([]models.Question, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	set, ok := all[visaType]
	if !ok || len(set.Questions) == 0 {
		return nil, fmt.Errorf("no fallback questions for visa type %q", visaType)
	}
	return Clone(set.Questions), nil
}

// FallbackRecommendations returns the static recommendation rows for the
// given option ids, in option id order of appearance.
func FallbackRecommendations(visaType models.VisaType, optionIDs []int) ([]models.RecommendationRow, error) {
	all, err := load()
	if err != nil {
		return nil, err
	}
	rows := []models.RecommendationRow{}
	for _, id := range optionIDs {
		for _, row := range all[visaType].Recommendations {
			if row.OptionID == id {
				rows = append(rows, row)
			}
		}
	}
	return rows, nil
}

// MarkFanOut flags the configured question ids as fan-out multi-select
// questions. Questions that already carry the flag are left alone.
func MarkFanOut(questions []models.Question, ids []int) {
	if len(ids) == 0 {
		return
	}
	fanOut := make(map[int]bool, len(ids))
	for _, id := range ids {
		fanOut[id] = true
	}
	for i := range questions {
		if fanOut[questions[i].ID] {
			questions[i].BranchAll = true
			questions[i].Multiple = true
		}
	}
}

// Clone deep-copies a question set so callers may mutate it.
func Clone(questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	for i, q := range questions {
		q.Options = append([]models.Option(nil), q.Options...)
		out[i] = q
	}
	return out
}
