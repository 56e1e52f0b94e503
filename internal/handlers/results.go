package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/selve-org/selve-engine/internal/models"
	"github.com/selve-org/selve-engine/internal/repository"
)

type ResultsHandler struct {
	log *zap.Logger
}

func NewResultsHandler(log *zap.Logger) *ResultsHandler {
	return &ResultsHandler{log: log}
}

// Scores returns the persisted dimension scores for a completed session.
func (h *ResultsHandler) Scores(c *gin.Context) {
	sessionID := c.Param("id")

	record, err := repository.GetSession(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if !record.IsComplete {
		c.JSON(http.StatusConflict, gin.H{"error": "Assessment still in progress"})
		return
	}

	scores, err := repository.GetScores(sessionID)
	if err != nil {
		h.log.Error("Failed to load scores", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load results"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "reason": record.CompleteReason, "scores": scores})
}

// ScoreChart renders the eight dimension scores of a session as a bar chart.
func (h *ResultsHandler) ScoreChart(c *gin.Context) {
	sessionID := c.Param("id")

	scores, err := repository.GetScores(sessionID)
	if err != nil || len(scores) == 0 {
		c.String(http.StatusNotFound, "No results for this session")
		return
	}

	labels := make([]string, 0, len(scores))
	bars := make([]opts.BarData, 0, len(scores))
	for _, s := range scores {
		labels = append(labels, s.Dimension)
		bars = append(bars, opts.BarData{Value: s.Score})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Trait profile"}))
	bar.SetXAxis(labels).AddSeries("score", bars)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(c.Writer); err != nil {
		h.log.Error("Failed to render score chart", zap.Error(err))
	}
}

// TimelineChart renders one dimension's score across all completed
// sessions as a line chart.
func (h *ResultsHandler) TimelineChart(c *gin.Context) {
	dimension := c.Query("dimension")
	if !models.Dimension(dimension).Valid() {
		c.String(http.StatusBadRequest, "Unknown dimension")
		return
	}

	points, err := repository.GetScoreTimeline(c.Request.Context(), dimension)
	if err != nil {
		h.log.Error("Failed to load score timeline", zap.String("dimension", dimension), zap.Error(err))
		c.String(http.StatusInternalServerError, "Could not load timeline")
		return
	}

	dates := make([]string, 0, len(points))
	values := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		dates = append(dates, p.Date.Format("2006-01-02"))
		values = append(values, opts.LineData{Value: p.Value})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Score history: " + dimension}))
	line.SetXAxis(dates).AddSeries(dimension, values)

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render timeline chart", zap.Error(err))
	}
}
