package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/selve-org/selve-engine/internal/database"
	"github.com/selve-org/selve-engine/internal/models"
)

// CreateSession inserts a fresh session shell and returns its record.
func CreateSession(demographics map[string]string) (*models.SessionRecord, error) {
	demoJSON, err := json.Marshal(demographics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode demographics: %w", err)
	}

	record := &models.SessionRecord{
		ID:           uuid.NewString(),
		Demographics: string(demoJSON),
		PendingCodes: pq.StringArray{},
	}
	if err := database.DB.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return record, nil
}

// GetSession fetches a session shell by ID.
func GetSession(sessionID string) (*models.SessionRecord, error) {
	record := &models.SessionRecord{}
	if err := database.DB.First(record, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// LoadState rebuilds the in-memory SessionState from the session shell and
// its answers. Answers are replayed in stored position order so the
// validator's sequence checks survive a restart.
func LoadState(sessionID string) (*models.SessionState, *models.SessionRecord, error) {
	record, err := GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	var answers []models.AnswerRecord
	err = database.DB.
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&answers).Error
	if err != nil {
		return nil, nil, err
	}

	state := models.NewSessionState()
	if record.Demographics != "" {
		if err := json.Unmarshal([]byte(record.Demographics), &state.Demographics); err != nil {
			return nil, nil, fmt.Errorf("corrupt demographics for session %s: %w", sessionID, err)
		}
	}
	for _, a := range answers {
		if err := state.RecordAnswer(a.ItemCode, a.RawValue, a.LatencyMs); err != nil {
			return nil, nil, fmt.Errorf("corrupt answer log for session %s: %w", sessionID, err)
		}
	}
	state.DispatchBatch(record.PendingCodes)
	return state, record, nil
}

// AppendAnswer persists one answered item at the given position and drops
// it from the stored pending set.
func AppendAnswer(sessionID, itemCode string, rawValue int, latencyMs float64, position int) error {
	answer := &models.AnswerRecord{
		SessionID: sessionID,
		Position:  position,
		ItemCode:  itemCode,
		RawValue:  rawValue,
		LatencyMs: latencyMs,
	}
	if err := database.DB.Create(answer).Error; err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	return database.DB.Model(&models.SessionRecord{}).
		Where("id = ?", sessionID).
		Update("pending_codes", gorm.Expr("array_remove(pending_codes, ?)", itemCode)).Error
}

// SetPending replaces the stored pending set after a dispatch.
func SetPending(sessionID string, codes []string) error {
	return database.DB.Model(&models.SessionRecord{}).
		Where("id = ?", sessionID).
		Update("pending_codes", pq.StringArray(codes)).Error
}

// CompleteSession marks the session finished with its stop reason.
func CompleteSession(sessionID, reason string) error {
	return database.DB.Model(&models.SessionRecord{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"is_complete":     true,
			"complete_reason": reason,
		}).Error
}
