package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Annotate *AnnotationPresenter
	Export   *ExportPresenter
	Session  *SessionPresenter
	State    *StatePresenter
	Schedule func()
}

func NewLoop(annotate *AnnotationPresenter, export *ExportPresenter, sess *SessionPresenter, state *StatePresenter, schedule func()) *Loop {
	return &Loop{Annotate: annotate, Export: export, Session: sess, State: state, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Capture results first so the session and state labels see the new session.
	if l.Annotate != nil {
		l.Annotate.Tick()
	}
	if l.Export != nil {
		l.Export.Tick()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
