package model

import (
	"time"
)

// SessionModel tracks the current annotation session duration, the accumulated
// annotation time and how many sessions were started.
// It is decoupled from the UI; presenters should poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active              bool
	sessionStart        time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	sessions            int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current session state and timestamp.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(annotating bool, now time.Time) {
	if m == nil {
		return
	}
	if annotating {
		if !m.active { // transition off -> on
			m.active = true
			m.sessionStart = now
			m.lastSessionDuration = 0
			m.sessions++
		}
		m.lastSessionDuration = now.Sub(m.sessionStart)
	} else if m.active { // transition on -> off
		m.lastSessionDuration = now.Sub(m.sessionStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current session duration and the total accumulated duration.
// The total includes the ongoing session when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Sessions returns the number of sessions started so far.
func (m *SessionModel) Sessions() int {
	if m == nil {
		return 0
	}
	return m.sessions
}
