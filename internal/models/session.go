package models

// SessionState is the core's view of one respondent's in-progress assessment.
// Responses keep insertion order because the validator's attention-pattern
// checks depend on answer order. The enclosing system owns the value and
// serializes all mutation; the engine only reads snapshots of it.
type SessionState struct {
	responses    map[string]int
	order        []string
	latencies    map[string]float64
	pending      map[string]struct{}
	Demographics map[string]string
}

func NewSessionState() *SessionState {
	return &SessionState{
		responses:    make(map[string]int),
		latencies:    make(map[string]float64),
		pending:      make(map[string]struct{}),
		Demographics: make(map[string]string),
	}
}

// RecordAnswer moves code from pending to responses. Answering an item that
// was never dispatched is allowed (imports, tests); answering twice is not.
func (s *SessionState) RecordAnswer(code string, rawValue int, latencyMs float64) error {
	if _, dup := s.responses[code]; dup {
		return &DuplicateAnswerError{Code: code}
	}
	delete(s.pending, code)
	s.responses[code] = rawValue
	s.order = append(s.order, code)
	if latencyMs > 0 {
		s.latencies[code] = latencyMs
	}
	return nil
}

// DispatchBatch marks codes as sent but not yet answered. Codes already
// answered are ignored so the responses/pending sets stay disjoint.
func (s *SessionState) DispatchBatch(codes []string) {
	for _, code := range codes {
		if _, answered := s.responses[code]; answered {
			continue
		}
		s.pending[code] = struct{}{}
	}
}

// Responses returns a copy of the answered code -> raw value mapping.
func (s *SessionState) Responses() map[string]int {
	out := make(map[string]int, len(s.responses))
	for code, v := range s.responses {
		out[code] = v
	}
	return out
}

// Ordered returns the answered responses in answer order.
func (s *SessionState) Ordered() []Response {
	out := make([]Response, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, Response{
			Code:      code,
			RawValue:  s.responses[code],
			LatencyMs: s.latencies[code],
		})
	}
	return out
}

// Pending returns a copy of the dispatched-but-unanswered code set.
func (s *SessionState) Pending() map[string]struct{} {
	out := make(map[string]struct{}, len(s.pending))
	for code := range s.pending {
		out[code] = struct{}{}
	}
	return out
}

// Seen returns responses ∪ pending; this is the coverage set the selector
// and controller work from.
func (s *SessionState) Seen() map[string]struct{} {
	out := make(map[string]struct{}, len(s.responses)+len(s.pending))
	for code := range s.responses {
		out[code] = struct{}{}
	}
	for code := range s.pending {
		out[code] = struct{}{}
	}
	return out
}

func (s *SessionState) AnswerCount() int  { return len(s.responses) }
func (s *SessionState) PendingCount() int { return len(s.pending) }

// Answered reports whether code has been answered.
func (s *SessionState) Answered(code string) bool {
	_, ok := s.responses[code]
	return ok
}

// PendingCodes returns the pending set as a slice, in no particular order.
func (s *SessionState) PendingCodes() []string {
	out := make([]string, 0, len(s.pending))
	for code := range s.pending {
		out = append(out, code)
	}
	return out
}
