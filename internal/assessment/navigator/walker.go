package navigator

import (
	"errors"

	"visa-portal/internal/models"
)

var (
	ErrSessionFinished    = errors.New("assessment already finished")
	ErrNotCurrentQuestion = errors.New("question is not the current question")
	ErrUnknownOption      = errors.New("option does not belong to question")
	ErrNoHistory          = errors.New("no previous question")
	ErrNotMultiSelect     = errors.New("question is not multi-select")
	ErrEmptySelection     = errors.New("no options selected")
)

// DefaultClosingSectionOrdinal is the distinct-section count after which
// scheduled additional questions are released.
const DefaultClosingSectionOrdinal = 3

// Walker applies answers to a State. It holds no per-session data and is
// safe for concurrent use.
type Walker struct {
	graph          *Graph
	closingOrdinal int
}

type Option func(*Walker)

// WithClosingSectionOrdinal overrides DefaultClosingSectionOrdinal.
func WithClosingSectionOrdinal(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.closingOrdinal = n
		}
	}
}

func NewWalker(g *Graph, opts ...Option) *Walker {
	w := &Walker{graph: g, closingOrdinal: DefaultClosingSectionOrdinal}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Graph returns the graph the walker navigates.
func (w *Walker) Graph() *Graph {
	return w.graph
}

// Start begins a walk at the graph root.
func (w *Walker) Start(visaType models.VisaType) *State {
	st := &State{VisaType: visaType}
	w.visit(st, w.graph.Root())
	return st
}

// Current returns the step describing where st stands.
func (w *Walker) Current(st *State) Step {
	step := Step{Finished: st.Finished, Progress: w.progress(st)}
	if !st.Finished {
		step.Question, _ = w.graph.Question(st.Current)
	}
	return step
}

// AnswerSingle records one option for the current question and advances.
// On a multi-select question it is a one-option AnswerMulti.
func (w *Walker) AnswerSingle(st *State, questionID, optionID int) (Step, error) {
	q, err := w.checkCurrent(st, questionID)
	if err != nil {
		return Step{}, err
	}
	if q.Multiple || q.BranchAll {
		return w.AnswerMulti(st, questionID, []int{optionID})
	}
	opt, ok := q.Option(optionID)
	if !ok {
		return Step{}, ErrUnknownOption
	}

	st.History = append(st.History, st.snapshot())
	st.Answers = append(st.Answers, models.Answer{
		QuestionID: q.ID,
		OptionID:   opt.ID,
		Points:     opt.Points,
		Text:       opt.Text,
	})
	w.schedule(st, q.ID, opt.ID)

	var targets []int
	if to, ok := w.graph.target(q.ID, opt.ID, EdgeLeadsTo); ok {
		targets = append(targets, to)
	}
	w.advance(st, targets)
	return w.Current(st), nil
}

// AnswerMulti records a set of options for the current multi-select
// question. Fan-out questions branch into every distinct target; other
// multi-select questions follow the first resolvable target.
func (w *Walker) AnswerMulti(st *State, questionID int, optionIDs []int) (Step, error) {
	q, err := w.checkCurrent(st, questionID)
	if err != nil {
		return Step{}, err
	}
	if !q.Multiple && !q.BranchAll {
		return Step{}, ErrNotMultiSelect
	}
	if len(optionIDs) == 0 {
		return Step{}, ErrEmptySelection
	}

	var selected []models.SelectedOption
	var points int
	seen := make(map[int]bool, len(optionIDs))
	for _, id := range optionIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		opt, ok := q.Option(id)
		if !ok {
			return Step{}, ErrUnknownOption
		}
		selected = append(selected, models.SelectedOption{OptionID: opt.ID, Text: opt.Text, Points: opt.Points})
		points += opt.Points
	}

	st.History = append(st.History, st.snapshot())
	st.MultiAnswers = append(st.MultiAnswers, models.MultiSelectAnswer{
		QuestionID: q.ID,
		Options:    selected,
		Points:     points,
	})

	var targets []int
	for _, sel := range selected {
		w.schedule(st, q.ID, sel.OptionID)
		to, ok := w.graph.target(q.ID, sel.OptionID, EdgeLeadsTo)
		if !ok || containsInt(targets, to) {
			continue
		}
		targets = append(targets, to)
		if !q.BranchAll {
			break
		}
	}

	if q.BranchAll && len(targets) > 0 {
		w.enqueue(st, targets[1:])
		w.visit(st, targets[0])
		return w.Current(st), nil
	}

	w.advance(st, targets)
	return w.Current(st), nil
}

// Back undoes the most recent answer, single or multi-select.
func (w *Walker) Back(st *State) (Step, error) {
	if len(st.History) == 0 {
		return Step{}, ErrNoHistory
	}
	last := st.History[len(st.History)-1]
	st.History = st.History[:len(st.History)-1]
	st.restore(last)
	return w.Current(st), nil
}

func (w *Walker) checkCurrent(st *State, questionID int) (*models.Question, error) {
	if st.Finished {
		return nil, ErrSessionFinished
	}
	if questionID != st.Current {
		return nil, ErrNotCurrentQuestion
	}
	q, ok := w.graph.Question(questionID)
	if !ok {
		return nil, ErrNotCurrentQuestion
	}
	return q, nil
}

// advance moves past an answered question. Pending branch heads come first;
// the new targets then join the tail of the queue.
func (w *Walker) advance(st *State, targets []int) {
	if len(st.Pending) > 0 {
		w.enqueue(st, targets)
		w.visitNextPending(st)
		return
	}
	if len(targets) > 0 {
		w.enqueue(st, targets[1:])
		w.visit(st, targets[0])
		return
	}
	if len(st.Scheduled) > 0 && w.closingReached(st) {
		st.Pending = st.Scheduled
		st.Scheduled = nil
		w.visitNextPending(st)
		return
	}
	st.Current = 0
	st.Finished = true
}

func (w *Walker) visitNextPending(st *State) {
	next := st.Pending[0]
	st.Pending = cloneInts(st.Pending[1:])
	w.visit(st, next)
}

func (w *Walker) enqueue(st *State, ids []int) {
	for _, id := range ids {
		if id == st.Current || containsInt(st.Pending, id) {
			continue
		}
		st.Pending = append(st.Pending, id)
	}
}

func (w *Walker) schedule(st *State, questionID, optionID int) {
	to, ok := w.graph.target(questionID, optionID, EdgeAdditional)
	if !ok || containsInt(st.Scheduled, to) {
		return
	}
	st.Scheduled = append(st.Scheduled, to)
}

func (w *Walker) visit(st *State, id int) {
	st.Current = id
	st.Finished = false
	if containsInt(st.Pending, id) {
		kept := st.Pending[:0:0]
		for _, p := range st.Pending {
			if p != id {
				kept = append(kept, p)
			}
		}
		st.Pending = kept
	}
	q, ok := w.graph.Question(id)
	if !ok || q.Section == "" {
		return
	}
	if !containsString(st.Sections, q.Section) {
		st.Sections = append(st.Sections, q.Section)
	}
}

// closingReached reports whether enough distinct sections were seen. Graphs
// with fewer sections than the ordinal close after their last section.
func (w *Walker) closingReached(st *State) bool {
	need := w.closingOrdinal
	if total := len(w.graph.Sections()); total < need {
		need = total
	}
	return len(st.Sections) >= need
}

func (w *Walker) progress(st *State) Progress {
	p := Progress{
		Answered:  len(st.Answers) + len(st.MultiAnswers),
		Pending:   len(st.Pending),
		Scheduled: len(st.Scheduled),
	}
	if q, ok := w.graph.Question(st.Current); ok && !st.Finished {
		p.Section = q.Section
	}
	return p
}
