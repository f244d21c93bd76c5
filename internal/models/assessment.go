// internal/models/assessment.go
package models

import "strings"

type VisaType string

const (
	VisaTypeVisit VisaType = "visit"
	VisaTypeStudy VisaType = "study"
)

// ParseVisaType normalizes s and reports whether it names a supported visa type.
func ParseVisaType(s string) (VisaType, bool) {
	switch VisaType(strings.ToLower(strings.TrimSpace(s))) {
	case VisaTypeVisit:
		return VisaTypeVisit, true
	case VisaTypeStudy:
		return VisaTypeStudy, true
	}
	return "", false
}

// Option is one selectable answer. LeadsTo and AdditionalQuestion hold
// question ids; either may point at a question that does not exist.
type Option struct {
	ID                 int    `json:"id" yaml:"id"`
	Text               string `json:"text" yaml:"text"`
	Points             int    `json:"points" yaml:"points"`
	LeadsTo            *int   `json:"leadsTo,omitempty" yaml:"leads_to,omitempty"`
	AdditionalQuestion *int   `json:"additionalQuestion,omitempty" yaml:"additional_question,omitempty"`
	Remark             *bool  `json:"remark,omitempty" yaml:"remark,omitempty"`
}

type Question struct {
	ID       int      `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Section  string   `json:"section,omitempty" yaml:"section,omitempty"`
	VisaType VisaType `json:"visaType" yaml:"-"`
	// Multiple marks a multi-select question.
	Multiple bool `json:"multiple" yaml:"multiple,omitempty"`
	// BranchAll makes every chosen option of a multi-select question open
	// its own branch.
	BranchAll bool     `json:"branchAll,omitempty" yaml:"branch_all,omitempty"`
	Options   []Option `json:"options" yaml:"options"`
}

// Option looks up an option by id.
func (q *Question) Option(id int) (*Option, bool) {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i], true
		}
	}
	return nil, false
}

type Answer struct {
	QuestionID int    `json:"questionId"`
	OptionID   int    `json:"optionId"`
	Points     int    `json:"points"`
	Text       string `json:"text,omitempty"`
}

type SelectedOption struct {
	OptionID int    `json:"optionId"`
	Text     string `json:"text,omitempty"`
	Points   int    `json:"points"`
}

type MultiSelectAnswer struct {
	QuestionID int              `json:"questionId"`
	Options    []SelectedOption `json:"options"`
	Points     int              `json:"points"`
}

type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPositive  bool   `json:"isPositive"`
}

// RecommendationRow is a backend row keyed by option id.
type RecommendationRow struct {
	OptionID    int    `json:"optionId" yaml:"option_id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Remark      bool   `json:"remark" yaml:"remark,omitempty"`
}

type AssessmentResult struct {
	VisaType        VisaType         `json:"visaType"`
	Recommendations []Recommendation `json:"recommendations"`
	Score           int              `json:"score"`
}

// SelectedOptionIDs returns every chosen option id, single-select answers
// first, each group in answer order.
func SelectedOptionIDs(answers []Answer, multi []MultiSelectAnswer) []int {
	ids := make([]int, 0, len(answers)+len(multi))
	for _, a := range answers {
		ids = append(ids, a.OptionID)
	}
	for _, m := range multi {
		for _, o := range m.Options {
			ids = append(ids, o.OptionID)
		}
	}
	return ids
}

// TotalPoints sums points across single and multi-select answers.
func TotalPoints(answers []Answer, multi []MultiSelectAnswer) int {
	total := 0
	for _, a := range answers {
		total += a.Points
	}
	for _, m := range multi {
		total += m.Points
	}
	return total
}
