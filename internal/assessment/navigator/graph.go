// Package navigator walks a visa assessment question graph: root selection,
// single and multi-select answers, fan-out branches, scheduled follow-up
// questions and back navigation.
package navigator

import (
	"errors"
	"fmt"

	"visa-portal/internal/models"
)

var (
	ErrEmptyGraph  = errors.New("question graph is empty")
	ErrDuplicateID = errors.New("duplicate question id")
)

type EdgeKind int

const (
	// EdgeLeadsTo moves to the next question when the option is chosen.
	EdgeLeadsTo EdgeKind = iota + 1
	// EdgeAdditional schedules a follow-up question for the closing section.
	EdgeAdditional
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeLeadsTo:
		return "leads_to"
	case EdgeAdditional:
		return "additional"
	}
	return "unknown"
}

// Edge connects an option of one question to another question.
type Edge struct {
	From     int      `json:"from"`
	OptionID int      `json:"optionId"`
	To       int      `json:"to"`
	Kind     EdgeKind `json:"kind"`
}

type edgeKey struct {
	question int
	option   int
	kind     EdgeKind
}

// Graph is an immutable question graph keyed by question id. Edges whose
// target does not exist are dropped at build time.
type Graph struct {
	questions map[int]*models.Question
	order     []int
	edges     map[edgeKey]int
	outgoing  map[int][]Edge
	sections  []string
	root      int
}

// NewGraph indexes questions in fetch order.
func NewGraph(questions []models.Question) (*Graph, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		questions: make(map[int]*models.Question, len(questions)),
		order:     make([]int, 0, len(questions)),
		edges:     make(map[edgeKey]int),
		outgoing:  make(map[int][]Edge),
	}

	seenSection := make(map[string]bool)
	for i := range questions {
		q := questions[i]
		if _, dup := g.questions[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}
		g.questions[q.ID] = &q
		g.order = append(g.order, q.ID)
		if q.Section != "" && !seenSection[q.Section] {
			seenSection[q.Section] = true
			g.sections = append(g.sections, q.Section)
		}
	}

	for _, id := range g.order {
		q := g.questions[id]
		for _, opt := range q.Options {
			g.addEdge(q.ID, opt.ID, opt.LeadsTo, EdgeLeadsTo)
			g.addEdge(q.ID, opt.ID, opt.AdditionalQuestion, EdgeAdditional)
		}
	}

	g.root = g.selectRoot()
	return g, nil
}

func (g *Graph) addEdge(from, option int, target *int, kind EdgeKind) {
	if target == nil {
		return
	}
	if _, ok := g.questions[*target]; !ok {
		return
	}
	key := edgeKey{question: from, option: option, kind: kind}
	if _, exists := g.edges[key]; exists {
		return
	}
	g.edges[key] = *target
	g.outgoing[from] = append(g.outgoing[from], Edge{From: from, OptionID: option, To: *target, Kind: kind})
}

// selectRoot prefers a question nobody leads to that has an outgoing
// leads_to option, then any question with such an option, then the first.
func (g *Graph) selectRoot() int {
	targets := make(map[int]bool)
	hasOutgoing := make(map[int]bool)
	for _, id := range g.order {
		for _, opt := range g.questions[id].Options {
			if opt.LeadsTo != nil {
				targets[*opt.LeadsTo] = true
				hasOutgoing[id] = true
			}
		}
	}

	for _, id := range g.order {
		if hasOutgoing[id] && !targets[id] {
			return id
		}
	}
	for _, id := range g.order {
		if hasOutgoing[id] {
			return id
		}
	}
	return g.order[0]
}

// Root returns the entry question id.
func (g *Graph) Root() int {
	return g.root
}

// Question returns the question with id.
func (g *Graph) Question(id int) (*models.Question, bool) {
	q, ok := g.questions[id]
	return q, ok
}

// Questions returns all questions in fetch order.
func (g *Graph) Questions() []models.Question {
	out := make([]models.Question, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.questions[id])
	}
	return out
}

// Edges returns the resolvable outgoing edges of a question.
func (g *Graph) Edges(questionID int) []Edge {
	return g.outgoing[questionID]
}

// Sections returns the distinct section names in fetch order.
func (g *Graph) Sections() []string {
	return g.sections
}

// Len returns the number of questions.
func (g *Graph) Len() int {
	return len(g.order)
}

func (g *Graph) target(question, option int, kind EdgeKind) (int, bool) {
	to, ok := g.edges[edgeKey{question: question, option: option, kind: kind}]
	return to, ok
}
