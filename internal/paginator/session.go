package paginator

import "context"

// Phase is the position of the current session in its state machine.
type Phase int

// Session phases.
const (
	PhaseIdle Phase = iota
	PhaseFetchingFirst
	PhaseReady
	PhaseFetchingNext
	PhaseExhausted
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetchingFirst:
		return "fetching_first"
	case PhaseReady:
		return "ready"
	case PhaseFetchingNext:
		return "fetching_next"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Stats counts what happened to dispatched fetches over the paginator's life.
type Stats struct {
	Sessions   uint64 `json:"sessions"   yaml:"sessions"`
	Dispatched uint64 `json:"dispatched" yaml:"dispatched"`
	Degraded   uint64 `json:"degraded"   yaml:"degraded"`
	Stale      uint64 `json:"stale"      yaml:"stale"`
}

// Snapshot is a consistent, read-only view of a paginator.
type Snapshot[Q comparable, T any] struct {
	SessionID uint64
	Query     Q
	Phase     Phase
	Items     []T
	Cursor    Cursor
	Exhausted bool
	FetchState
	Stats Stats
}

// session is one pagination run for one accepted query.
type session[Q comparable, T any] struct {
	id          uint64
	query       Q
	cursor      cursorStore
	accumulated []T

	// fetching is true while this session has a fetch in flight.
	fetching bool

	// loaded counts pages that settled without degrading.
	loaded int

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *session[Q, T]) phase() Phase {
	if s == nil {
		return PhaseIdle
	}
	_, started := s.cursor.get()
	switch {
	case s.fetching && !started:
		return PhaseFetchingFirst
	case s.fetching:
		return PhaseFetchingNext
	case s.cursor.isExhausted():
		return PhaseExhausted
	default:
		return PhaseReady
	}
}
