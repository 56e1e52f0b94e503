package repository

import (
	"context"
	"time"

	"github.com/selve-org/selve-engine/internal/database"
	"github.com/selve-org/selve-engine/internal/models"
)

// SaveScores persists the final dimension scores for a completed session.
func SaveScores(sessionID string, scores map[models.Dimension]models.DimensionScore) error {
	records := make([]models.ScoreRecord, 0, len(scores))
	for _, dim := range models.AllDimensions() {
		score, ok := scores[dim]
		if !ok {
			continue
		}
		records = append(records, models.ScoreRecord{
			SessionID:      sessionID,
			Dimension:      string(dim),
			Score:          score.Score,
			NItems:         score.NItems,
			Interpretation: string(score.Interpretation),
		})
	}
	return database.DB.Create(&records).Error
}

// GetScores fetches the persisted dimension scores for a session.
func GetScores(sessionID string) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord
	err := database.DB.
		Where("session_id = ?", sessionID).
		Order("dimension ASC").
		Find(&records).Error
	return records, err
}

// TimelineDataPoint is one dimension score at one completion time.
type TimelineDataPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// GetScoreTimeline returns the history of one dimension's score across all
// completed sessions, oldest first. Feeds the history chart.
func GetScoreTimeline(ctx context.Context, dimension string) ([]TimelineDataPoint, error) {
	var data []TimelineDataPoint
	query := `
		SELECT s.created_at AS date, s.score AS value
		FROM score_records s
		JOIN session_records sess ON s.session_id = sess.id
		WHERE s.dimension = ? AND sess.is_complete = true
		ORDER BY s.created_at;
	`
	err := database.DB.WithContext(ctx).Raw(query, dimension).Scan(&data).Error
	return data, err
}
