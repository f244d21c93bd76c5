package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"visa-portal/internal/assessment/navigator"
	"visa-portal/internal/assessment/session"
	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/metrics"
	"visa-portal/internal/common/validation"
	"visa-portal/internal/models"
	calculaterecommendations "visa-portal/internal/workers/visa-assessment/calculate-recommendations"
	loadquestions "visa-portal/internal/workers/visa-assessment/load-questions"
)

type sessionView struct {
	ID        string                   `json:"id"`
	VisaType  models.VisaType          `json:"visaType"`
	Source    string                   `json:"source"`
	Question  *models.Question         `json:"question,omitempty"`
	Finished  bool                     `json:"finished"`
	Progress  navigator.Progress       `json:"progress"`
	Answered  []int                    `json:"selectedOptionIds"`
	Result    *models.AssessmentResult `json:"result,omitempty"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

type startSessionRequest struct {
	VisaType string `json:"visaType"`
}

type answerRequest struct {
	QuestionID int   `json:"questionId"`
	OptionID   *int  `json:"optionId,omitempty"`
	OptionIDs  []int `json:"optionIds,omitempty"`
}

func (s *Server) walker(sess *session.Session) (*navigator.Walker, error) {
	graph, err := navigator.NewGraph(sess.Questions)
	if err != nil {
		return nil, apperrors.NewQuestionSetUnavailableError(string(sess.VisaType), err)
	}
	return navigator.NewWalker(graph, navigator.WithClosingSectionOrdinal(s.deps.ClosingSectionOrdinal)), nil
}

func (s *Server) startSession(c *gin.Context) {
	var req startSessionRequest
	if !s.bind(c, validation.SchemaSessionStart, &req) {
		return
	}
	if s.deps.Sessions == nil || s.deps.Questions == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("sessions"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	set, err := s.deps.Questions.Execute(ctx, &loadquestions.Input{VisaType: req.VisaType})
	if err != nil {
		s.fail(c, err)
		return
	}

	sess := &session.Session{VisaType: set.VisaType, Source: set.Source, Questions: set.Questions}
	w, err := s.walker(sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	sess.State = w.Start(set.VisaType)

	if _, err := s.deps.Sessions.Create(ctx, sess); err != nil {
		s.fail(c, s.sessionError("", err))
		return
	}
	metrics.AssessmentSessionsStarted.WithLabelValues(string(set.VisaType)).Inc()

	s.log.Info("assessment session started", map[string]interface{}{
		"sessionId": sess.ID,
		"visaType":  string(sess.VisaType),
		"source":    sess.Source,
	})

	c.JSON(http.StatusCreated, gin.H{"success": true, "session": s.view(ctx, w, sess)})
}

func (s *Server) getSession(c *gin.Context) {
	if s.deps.Sessions == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("sessions"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	id := c.Param("id")
	sess, err := s.deps.Sessions.Get(ctx, id)
	if err != nil {
		s.fail(c, s.sessionError(id, err))
		return
	}
	w, err := s.walker(sess)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": s.view(ctx, w, sess)})
}

func (s *Server) answerSession(c *gin.Context) {
	var req answerRequest
	if !s.bind(c, validation.SchemaSessionAnswer, &req) {
		return
	}
	s.mutateSession(c, func(w *navigator.Walker, st *navigator.State) error {
		var err error
		switch {
		case req.OptionIDs != nil:
			_, err = w.AnswerMulti(st, req.QuestionID, req.OptionIDs)
		case req.OptionID != nil:
			_, err = w.AnswerSingle(st, req.QuestionID, *req.OptionID)
		default:
			err = navigator.ErrEmptySelection
		}
		return err
	})
}

func (s *Server) backSession(c *gin.Context) {
	s.mutateSession(c, func(w *navigator.Walker, st *navigator.State) error {
		_, err := w.Back(st)
		return err
	})
}

// mutateSession applies move to the stored walk under the store's
// optimistic lock and answers with the resulting view.
func (s *Server) mutateSession(c *gin.Context, move func(*navigator.Walker, *navigator.State) error) {
	if s.deps.Sessions == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("sessions"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	id := c.Param("id")
	var w *navigator.Walker
	wasFinished := false

	sess, err := s.deps.Sessions.Update(ctx, id, func(sess *session.Session) error {
		var err error
		if w, err = s.walker(sess); err != nil {
			return err
		}
		wasFinished = sess.State.Finished
		return move(w, sess.State)
	})
	if err != nil {
		s.fail(c, s.sessionError(id, err))
		return
	}

	if sess.State.Finished && !wasFinished {
		metrics.AssessmentSessionsFinished.WithLabelValues(string(sess.VisaType)).Inc()
		s.log.Info("assessment session finished", map[string]interface{}{
			"sessionId": sess.ID,
			"visaType":  string(sess.VisaType),
			"answered":  len(sess.State.Answers) + len(sess.State.MultiAnswers),
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "session": s.view(ctx, w, sess)})
}

func (s *Server) deleteSession(c *gin.Context) {
	if s.deps.Sessions == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("sessions"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	id := c.Param("id")
	if err := s.deps.Sessions.Delete(ctx, id); err != nil {
		s.fail(c, s.sessionError(id, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// view renders a session. A finished walk carries its result; failing to
// compute it is logged and leaves the result out.
func (s *Server) view(ctx context.Context, w *navigator.Walker, sess *session.Session) sessionView {
	step := w.Current(sess.State)
	v := sessionView{
		ID:        sess.ID,
		VisaType:  sess.VisaType,
		Source:    sess.Source,
		Question:  step.Question,
		Finished:  step.Finished,
		Progress:  step.Progress,
		Answered:  sess.State.SelectedOptionIDs(),
		UpdatedAt: sess.UpdatedAt,
	}
	if !step.Finished || s.deps.Recommendations == nil {
		return v
	}

	out, err := s.deps.Recommendations.Execute(ctx, &calculaterecommendations.Input{
		VisaType:           string(sess.VisaType),
		Answers:            sess.State.Answers,
		MultiSelectAnswers: sess.State.MultiAnswers,
		QuestionSource:     sess.Source,
	})
	if err != nil {
		s.log.WithError(err).Warn("session result unavailable", map[string]interface{}{"sessionId": sess.ID})
		return v
	}
	v.Result = &out.Result
	return v
}

func (s *Server) sessionError(id string, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return apperrors.NewSessionNotFoundError(id)
	case errors.Is(err, session.ErrConflict):
		return apperrors.NewSessionConflictError(id)
	case errors.Is(err, navigator.ErrSessionFinished):
		return apperrors.NewSessionFinishedError(id)
	case errors.Is(err, navigator.ErrNotCurrentQuestion),
		errors.Is(err, navigator.ErrUnknownOption),
		errors.Is(err, navigator.ErrNotMultiSelect),
		errors.Is(err, navigator.ErrEmptySelection),
		errors.Is(err, navigator.ErrNoHistory):
		return apperrors.NewInvalidAnswerError(err.Error())
	}
	return err
}
