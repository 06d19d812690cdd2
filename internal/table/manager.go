package table

import (
	"errors"
	"net/url"
	"time"
)

// ErrBothModes is returned when a manager is given both an OnChange callback
// and a Navigator
var ErrBothModes = errors.New("table: controlled and uncontrolled mode are exclusive")

// PageChange requests a cursor move. Next wins over a stale Prev.
type PageChange struct {
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

// Option configures a Manager
type Option func(*Manager)

// WithOnChange puts the manager in controlled mode: every change is handed
// to fn and the parent owns the state
func WithOnChange(fn func(Params)) Option {
	return func(m *Manager) {
		m.onChange = fn
	}
}

// WithNavigator puts the manager in uncontrolled mode: every change is
// pushed to the address bar as discrete parameters
func WithNavigator(fn func(url.Values)) Option {
	return func(m *Manager) {
		m.navigate = fn
	}
}

// WithClock overrides the source of "today" for the overdue filter
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager is the state machine of one table instance. It is not safe for
// concurrent use.
type Manager struct {
	state    Params
	initial  *Params
	emitted  *Params
	onChange func(Params)
	navigate func(url.Values)
	now      func() time.Time
}

// NewManager creates a manager seeded from initial, which may be nil
func NewManager(initial *Params, opts ...Option) (*Manager, error) {
	m := &Manager{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.onChange != nil && m.navigate != nil {
		return nil, ErrBothModes
	}
	m.resync(initial)
	return m, nil
}

// Params returns a copy of the current state
func (m *Manager) Params() Params {
	return m.state.Clone()
}

// HandleSearch sets or clears the free-text search and resets pagination
func (m *Manager) HandleSearch(value string) {
	m.state.Search = value
	m.resetCursors()
	m.emit()
}

// HandleSort sets the single order_by field; "" clears sorting
func (m *Manager) HandleSort(orderBy string) {
	m.state.OrderBy = orderBy
	m.resetCursors()
	m.emit()
}

// ToggleSort advances column through its three-state sort cycle
func (m *Manager) ToggleSort(column string) {
	m.HandleSort(NextSortOrder(m.state.OrderBy, column))
}

// HandlePageChange moves the cursor
func (m *Manager) HandlePageChange(change PageChange) {
	switch {
	case change.Next != "":
		m.state.NextCursor = change.Next
		m.state.PrevCursor = ""
	case change.Prev != "":
		m.state.PrevCursor = change.Prev
		m.state.NextCursor = ""
	default:
		m.resetCursors()
	}
	m.emit()
}

// HandleFilterChange replaces the structured filter and recompiles the
// query; nil clears it
func (m *Manager) HandleFilterChange(state *FilterState) {
	if state.IsEmpty() {
		m.state.Filter = nil
	} else {
		m.state.Filter = state.Clone()
	}
	m.state.Query = BuildQueryFromFilterState(m.state.Filter, m.now())
	m.resetCursors()
	m.emit()
}

// SyncInitialParams signals that the external state may have changed. A new
// reference resyncs the manager without emitting. The echo of a change the
// manager itself emitted is skipped.
func (m *Manager) SyncInitialParams(p *Params) {
	if p == m.initial {
		return
	}
	m.initial = p
	if m.emitted != nil {
		echo := p != nil && sameParams(*p, *m.emitted)
		m.emitted = nil
		if echo {
			return
		}
	}
	m.resync(p)
}

func (m *Manager) resync(p *Params) {
	m.initial = p
	if p == nil {
		m.state = Params{}
		return
	}
	m.state = p.Clone()
	if m.state.Filter.IsEmpty() {
		m.state.Filter = nil
	}
	m.state.Query = BuildQueryFromFilterState(m.state.Filter, m.now())
}

func (m *Manager) resetCursors() {
	m.state.PrevCursor = ""
	m.state.NextCursor = ""
}

func (m *Manager) emit() {
	snapshot := m.state.Clone()
	m.emitted = &snapshot
	switch {
	case m.onChange != nil:
		m.onChange(snapshot.Clone())
	case m.navigate != nil:
		m.navigate(snapshot.URLValues())
	}
}

func sameParams(a, b Params) bool {
	return a.URLValues().Encode() == b.URLValues().Encode()
}
