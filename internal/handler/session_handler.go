package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quantprep/examgate/internal/backend"
	"github.com/quantprep/examgate/internal/model"
	"github.com/quantprep/examgate/internal/response"
	"github.com/quantprep/examgate/internal/service"
	"github.com/quantprep/examgate/internal/session"
	"github.com/quantprep/examgate/internal/validator"
)

// SessionHandler exposes the test-taking operations to the frontend.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Start godoc
// POST /api/v1/sessions
// Fetches the test and its questions upstream and opens a timed attempt.
func (h *SessionHandler) Start(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessions.Start(c.Request.Context(), bearerToken(c), req.TestID)
	if err != nil {
		switch {
		case errors.Is(err, backend.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
		case errors.Is(err, service.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		default:
			response.Fail(c, http.StatusBadGateway, response.ErrBackendUnavailable)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess.Snapshot()})
}

// Get godoc
// GET /api/v1/sessions/:id
// Returns the full session snapshot including derived status counts.
func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.lookup(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Answer godoc
// POST /api/v1/sessions/:id/answer
// Records the selection and advances unless on the last question.
func (h *SessionHandler) Answer(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessions.AnswerAndAdvance(id, req.QuestionID, model.AnswerChoice(req.Answer))
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Review godoc
// POST /api/v1/sessions/:id/review
// Marks a question for review; cursor and selection are untouched.
func (h *SessionHandler) Review(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.ReviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessions.MarkForReview(id, req.QuestionID)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Navigate godoc
// POST /api/v1/sessions/:id/navigate
// Jumps to an explicit question index.
func (h *SessionHandler) Navigate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessions.Navigate(id, *req.Index)
	if err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess.Snapshot()})
}

// Submit godoc
// POST /api/v1/sessions/:id/submit
// Finishes the attempt. Upstream acknowledgement is not surfaced; the
// caller is sent back to the dashboard either way.
func (h *SessionHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Submit(c.Request.Context(), id); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"submitted": true})
}

// Abandon godoc
// DELETE /api/v1/sessions/:id
// Discards the attempt without submitting (screen teardown).
func (h *SessionHandler) Abandon(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.sessions.Abandon(id); err != nil {
		failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"abandoned": true})
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Session, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		failSession(c, err)
		return nil, false
	}
	return sess, true
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSessionFinished):
		response.Fail(c, http.StatusConflict, response.ErrSessionFinished)
	case errors.Is(err, session.ErrIndexOutOfRange):
		response.Fail(c, http.StatusBadRequest, response.ErrIndexOutOfRange)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// bearerToken returns the caller's Authorization header value verbatim
// for passthrough to the upstream API.
func bearerToken(c *gin.Context) string {
	return c.GetHeader("Authorization")
}
