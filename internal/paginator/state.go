package paginator

// FetchState is the derived in-flight state of the current session.
type FetchState struct {
	// IsFetching is true strictly between dispatch and settle of the current
	// session's fetch.
	IsFetching bool `json:"is_fetching" yaml:"is_fetching"`

	// PageIndex is the 1-based index of the page last requested in the current
	// session, 0 before the first session. Telemetry only.
	PageIndex int `json:"page_index" yaml:"page_index"`
}

// tracker publishes FetchState. Only the paginator goroutine mutates it.
type tracker struct {
	fetching *Observable[bool]
	index    *Observable[int]
}

func newTracker() tracker {
	return tracker{
		fetching: newObservable(false, equalComparable[bool]),
		index:    newObservable(0, equalComparable[int]),
	}
}

// dispatched records that the current session requested page pageIndex.
func (t tracker) dispatched(pageIndex int) {
	t.index.publish(pageIndex)
	t.fetching.publish(true)
}

// settled records that the current session's fetch completed.
func (t tracker) settled() {
	t.fetching.publish(false)
}

func (t tracker) state() FetchState {
	return FetchState{
		IsFetching: t.fetching.Value(),
		PageIndex:  t.index.Value(),
	}
}
