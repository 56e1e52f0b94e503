// Package session serializes each respondent's assessment turns and glues
// the engine to persistence. The engine itself never blocks or touches
// storage; everything stateful happens here under a per-session lock.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/selve-org/selve-engine/internal/adaptive"
	"github.com/selve-org/selve-engine/internal/bank"
	"github.com/selve-org/selve-engine/internal/config"
	"github.com/selve-org/selve-engine/internal/models"
	"github.com/selve-org/selve-engine/internal/repository"
	"github.com/selve-org/selve-engine/internal/scoring"
	"github.com/selve-org/selve-engine/internal/validation"
)

// ExclusionFunc maps a session's demographics to item codes that must not
// be dispatched to that respondent.
type ExclusionFunc func(demographics map[string]string) map[string]struct{}

// TurnResult is what one request cycle hands back to the transport layer:
// either the next batch to put on screen or a completion signal.
type TurnResult struct {
	SessionID string                                     `json:"sessionId"`
	Complete  bool                                       `json:"complete"`
	Reason    string                                     `json:"reason"`
	Batch     []models.Item                              `json:"batch"`
	Report    models.ValidationReport                    `json:"report"`
	Scores    map[models.Dimension]models.DimensionScore `json:"scores,omitempty"`
}

// Manager owns the per-session locks. Different sessions proceed in
// parallel; turns within one session are strictly serialized.
type Manager struct {
	log        *zap.Logger
	bank       *bank.ItemBank
	engineCfg  func() config.EngineConfig
	exclusions ExclusionFunc
	dedup      adaptive.DedupFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager wires the engine's collaborators. engineCfg is consulted at
// the start of every turn, so knob changes from a config reload apply to
// the next batch without a restart.
func NewManager(log *zap.Logger, b *bank.ItemBank, engineCfg func() config.EngineConfig, exclusions ExclusionFunc, dedup adaptive.DedupFunc) *Manager {
	return &Manager{
		log:        log,
		bank:       b,
		engineCfg:  engineCfg,
		exclusions: exclusions,
		dedup:      dedup,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}

func (m *Manager) engine(cfg config.EngineConfig) *adaptive.Engine {
	e := adaptive.New(m.bank, cfg)
	if m.dedup != nil {
		e = e.WithDedup(m.dedup)
	}
	return e
}

// Start creates a session and selects its first batch.
func (m *Manager) Start(demographics map[string]string) (TurnResult, error) {
	record, err := repository.CreateSession(demographics)
	if err != nil {
		return TurnResult{}, err
	}

	state := models.NewSessionState()
	state.Demographics = demographics

	turn, err := m.advance(record.ID, state)
	if err != nil {
		return TurnResult{}, err
	}
	m.log.Info("Assessment session started",
		zap.String("session_id", record.ID),
		zap.Int("first_batch", len(turn.Batch)))
	return turn, nil
}

// Submit records one answer and runs the next turn: validate, decide
// continue vs stop, select and dispatch the next batch.
func (m *Manager) Submit(sessionID, itemCode string, rawValue int, latencyMs float64) (TurnResult, error) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, record, err := repository.LoadState(sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if record.IsComplete {
		return TurnResult{}, fmt.Errorf("session %s is already complete", sessionID)
	}

	// Reject malformed input before mutating anything.
	item, err := m.bank.Item(itemCode)
	if err != nil {
		return TurnResult{}, err
	}
	if _, err := scoring.Normalize(item, rawValue); err != nil {
		return TurnResult{}, err
	}

	if err := state.RecordAnswer(itemCode, rawValue, latencyMs); err != nil {
		return TurnResult{}, err
	}
	if err := repository.AppendAnswer(sessionID, itemCode, rawValue, latencyMs, state.AnswerCount()-1); err != nil {
		return TurnResult{}, err
	}

	return m.advance(sessionID, state)
}

// Next re-runs selection without recording an answer, for clients that
// drained their current batch.
func (m *Manager) Next(sessionID string) (TurnResult, error) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, record, err := repository.LoadState(sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if record.IsComplete {
		return m.completedTurn(sessionID, state, record.CompleteReason)
	}
	return m.advance(sessionID, state)
}

// Report returns the current validation report without advancing the turn.
func (m *Manager) Report(sessionID string) (models.ValidationReport, error) {
	state, _, err := repository.LoadState(sessionID)
	if err != nil {
		return models.ValidationReport{}, err
	}
	return validation.Validate(state.Ordered(), m.engineCfg().ConsistencyPairs), nil
}

// advance runs one engine turn against the current state. Caller holds the
// session lock.
func (m *Manager) advance(sessionID string, state *models.SessionState) (TurnResult, error) {
	cfg := m.engineCfg()
	engine := m.engine(cfg)

	report := validation.Validate(state.Ordered(), cfg.ConsistencyPairs)
	if report.Suspicious() {
		m.log.Warn("Response quality flags raised",
			zap.String("session_id", sessionID),
			zap.Strings("flags", report.Flags))
	}

	cont, reason, err := engine.ShouldContinue(state)
	if err != nil {
		return TurnResult{}, err
	}
	if !cont {
		return m.complete(sessionID, state, reason, report)
	}

	var exclusions map[string]struct{}
	if m.exclusions != nil {
		exclusions = m.exclusions(state.Demographics)
	}
	batch, err := engine.SelectNextBatch(state, exclusions, cfg.DefaultBatchSize)
	if err != nil {
		return TurnResult{}, err
	}

	// Empty batch with answers still pending means "wait for the
	// respondent"; with nothing pending it means the bank cannot serve the
	// uncertain dimensions, so finish rather than loop.
	if len(batch) == 0 && state.PendingCount() == 0 {
		m.log.Warn("No selectable items despite continue signal; bank is too small for the configured limits",
			zap.String("session_id", sessionID))
		return m.complete(sessionID, state, adaptive.ReasonExhausted, report)
	}

	if len(batch) > 0 {
		codes := make([]string, len(batch))
		for i, item := range batch {
			codes[i] = item.Code
		}
		state.DispatchBatch(codes)
		if err := repository.SetPending(sessionID, state.PendingCodes()); err != nil {
			return TurnResult{}, err
		}
	}

	return TurnResult{
		SessionID: sessionID,
		Reason:    reason,
		Batch:     batch,
		Report:    report,
	}, nil
}

func (m *Manager) complete(sessionID string, state *models.SessionState, reason string, report models.ValidationReport) (TurnResult, error) {
	scores, err := scoring.Score(state.Responses(), m.bank)
	if err != nil {
		return TurnResult{}, err
	}
	if err := repository.CompleteSession(sessionID, reason); err != nil {
		return TurnResult{}, err
	}
	if err := repository.SaveScores(sessionID, scores); err != nil {
		return TurnResult{}, err
	}
	m.log.Info("Assessment session complete",
		zap.String("session_id", sessionID),
		zap.String("reason", reason),
		zap.Int("answers", state.AnswerCount()))
	return TurnResult{
		SessionID: sessionID,
		Complete:  true,
		Reason:    reason,
		Batch:     []models.Item{},
		Report:    report,
		Scores:    scores,
	}, nil
}

func (m *Manager) completedTurn(sessionID string, state *models.SessionState, reason string) (TurnResult, error) {
	scores, err := scoring.Score(state.Responses(), m.bank)
	if err != nil {
		return TurnResult{}, err
	}
	return TurnResult{
		SessionID: sessionID,
		Complete:  true,
		Reason:    reason,
		Batch:     []models.Item{},
		Report:    validation.Validate(state.Ordered(), m.engineCfg().ConsistencyPairs),
		Scores:    scores,
	}, nil
}
