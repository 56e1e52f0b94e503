package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/selve-org/selve-engine/internal/models"
	"github.com/selve-org/selve-engine/internal/session"
)

const cookieSessionKey = "assessmentID"

type AssessmentHandler struct {
	log     *zap.Logger
	manager *session.Manager
}

func NewAssessmentHandler(log *zap.Logger, manager *session.Manager) *AssessmentHandler {
	return &AssessmentHandler{log: log, manager: manager}
}

type startRequest struct {
	Demographics map[string]string `json:"demographics"`
}

type answerRequest struct {
	Code      string  `json:"code" binding:"required"`
	Value     int     `json:"value"`
	LatencyMs float64 `json:"latencyMs"`
}

// Start creates a new assessment session and returns the first batch. The
// session ID is also bound to the browser via a cookie session.
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	turn, err := h.manager.Start(req.Demographics)
	if err != nil {
		h.log.Error("Failed to start assessment session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start assessment"})
		return
	}

	cookie := sessions.Default(c)
	cookie.Set(cookieSessionKey, turn.SessionID)
	if err := cookie.Save(); err != nil {
		h.log.Warn("Failed to save session cookie", zap.Error(err))
	}

	c.JSON(http.StatusCreated, turn)
}

// Submit records one answer and returns the next turn: either the next
// batch, an empty batch meaning "answer what is on screen", or completion
// with final scores.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	sessionID, ok := h.boundSession(c)
	if !ok {
		return
	}

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid answer payload"})
		return
	}

	turn, err := h.manager.Submit(sessionID, req.Code, req.Value, req.LatencyMs)
	if err != nil {
		h.renderSubmitError(c, sessionID, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

// Next re-runs selection for clients that drained their batch.
func (h *AssessmentHandler) Next(c *gin.Context) {
	sessionID, ok := h.boundSession(c)
	if !ok {
		return
	}

	turn, err := h.manager.Next(sessionID)
	if err != nil {
		h.log.Error("Failed to advance session", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not advance assessment"})
		return
	}
	c.JSON(http.StatusOK, turn)
}

// Report returns the current validation report.
func (h *AssessmentHandler) Report(c *gin.Context) {
	sessionID, ok := h.boundSession(c)
	if !ok {
		return
	}

	report, err := h.manager.Report(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// boundSession resolves the URL session ID and checks it against the
// browser's cookie so one respondent cannot drive another's session.
func (h *AssessmentHandler) boundSession(c *gin.Context) (string, bool) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing session id"})
		return "", false
	}
	cookie := sessions.Default(c)
	bound, _ := cookie.Get(cookieSessionKey).(string)
	if bound != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session not bound to this client"})
		return "", false
	}
	return sessionID, true
}

func (h *AssessmentHandler) renderSubmitError(c *gin.Context, sessionID string, err error) {
	var unknown *models.UnknownItemError
	var outOfRange *models.OutOfRangeError
	var duplicate *models.DuplicateAnswerError

	switch {
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "unknown_item", "code": unknown.Code})
	case errors.As(err, &outOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "out_of_range", "code": outOfRange.Code})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": "duplicate_answer", "code": duplicate.Code})
	default:
		h.log.Error("Failed to submit answer", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not record answer"})
	}
}
