package navigator

import "visa-portal/internal/models"

// State is the serializable progress of one assessment walk.
type State struct {
	VisaType     models.VisaType            `json:"visaType"`
	Current      int                        `json:"current"`
	Pending      []int                      `json:"pending"`
	Scheduled    []int                      `json:"scheduled"`
	Sections     []string                   `json:"sections"`
	Answers      []models.Answer            `json:"answers"`
	MultiAnswers []models.MultiSelectAnswer `json:"multiSelectAnswers"`
	History      []Frame                    `json:"history"`
	Finished     bool                       `json:"finished"`
}

// Frame captures the walker state right before a question was answered,
// so Back restores queues and drops that question's answer.
type Frame struct {
	Question     int      `json:"question"`
	Pending      []int    `json:"pending"`
	Scheduled    []int    `json:"scheduled"`
	Sections     []string `json:"sections"`
	Answers      int      `json:"answers"`
	MultiAnswers int      `json:"multiAnswers"`
}

// Progress summarises a walk for clients.
type Progress struct {
	Answered  int    `json:"answered"`
	Pending   int    `json:"pending"`
	Scheduled int    `json:"scheduled"`
	Section   string `json:"section,omitempty"`
}

// Step is the outcome of an answer or a back move.
type Step struct {
	Question *models.Question `json:"question,omitempty"`
	Finished bool             `json:"finished"`
	Progress Progress         `json:"progress"`
}

// SelectedOptionIDs returns every chosen option id in answer order.
func (s *State) SelectedOptionIDs() []int {
	return models.SelectedOptionIDs(s.Answers, s.MultiAnswers)
}

func (s *State) snapshot() Frame {
	return Frame{
		Question:     s.Current,
		Pending:      cloneInts(s.Pending),
		Scheduled:    cloneInts(s.Scheduled),
		Sections:     append([]string(nil), s.Sections...),
		Answers:      len(s.Answers),
		MultiAnswers: len(s.MultiAnswers),
	}
}

func (s *State) restore(f Frame) {
	s.Current = f.Question
	s.Pending = cloneInts(f.Pending)
	s.Scheduled = cloneInts(f.Scheduled)
	s.Sections = append([]string(nil), f.Sections...)
	if f.Answers <= len(s.Answers) {
		s.Answers = s.Answers[:f.Answers]
	}
	if f.MultiAnswers <= len(s.MultiAnswers) {
		s.MultiAnswers = s.MultiAnswers[:f.MultiAnswers]
	}
	s.Finished = false
}

func cloneInts(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	return append([]int(nil), in...)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
