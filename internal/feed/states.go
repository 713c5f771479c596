// Package feed implements the paginated job feed: one Pager per visitor and
// access mode, the access gate applied to what it has loaded, and the tag
// facet loader that drives the filter chips.
//
// Pager state graph:
//
//	IDLE ──► FETCHING_FIRST_PAGE ──► IDLE ──► FETCHING_NEXT_PAGE ──► IDLE
//	              │    │                            │    │
//	              │    └──► ERROR ◄─────────────────┘    │
//	              └──────► EXHAUSTED ◄───────────────────┘
//
// Every state may restart through FETCHING_FIRST_PAGE. ERROR retries through
// either fetching state. EXHAUSTED only leaves through a new query.
package feed

// State is the lifecycle position of a Pager's active query.
type State string

const (
	StateIdle              State = "IDLE"
	StateFetchingFirstPage State = "FETCHING_FIRST_PAGE"
	StateFetchingNextPage  State = "FETCHING_NEXT_PAGE"
	StateExhausted         State = "EXHAUSTED"
	StateError             State = "ERROR"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[State][]State{
	StateIdle:              {StateFetchingFirstPage, StateFetchingNextPage},
	StateFetchingFirstPage: {StateIdle, StateExhausted, StateError, StateFetchingFirstPage},
	StateFetchingNextPage:  {StateIdle, StateExhausted, StateError, StateFetchingFirstPage},
	StateExhausted:         {StateFetchingFirstPage},
	StateError:             {StateFetchingFirstPage, StateFetchingNextPage},
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to State) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Fetching reports whether a request is outstanding in state s.
func (s State) Fetching() bool {
	return s == StateFetchingFirstPage || s == StateFetchingNextPage
}
