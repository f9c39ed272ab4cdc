package presenter

import "time"

// OverlayState is the coarse UI state shown in the state label.
type OverlayState int

const (
	StateIdle OverlayState = iota
	StateCapturing
	StateAnnotating
	StateDrawing
	StateEditing
)

func (s OverlayState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCapturing:
		return "Capturing"
	case StateAnnotating:
		return "Annotating"
	case StateDrawing:
		return "Drawing"
	case StateEditing:
		return "Editing"
	default:
		return "Unknown"
	}
}

// StateSource reports the current overlay state.
type StateSource interface {
	State() OverlayState
}

// StateView sets the state label in the view.
type StateView interface{ SetStateLabel(string) }

// ConfigLockView toggles whether settings may be edited.
type ConfigLockView interface{ SetConfigEditable(bool) }

// StatePresenter polls the overlay state on every tick and updates the view
// only when it changed. Settings are locked while a session is running since
// they apply to the next session.
type StatePresenter struct {
	src    StateSource
	view   StateView
	lock   ConfigLockView
	latest OverlayState
	synced bool
}

func NewStatePresenter(src StateSource, view StateView, lock ConfigLockView) *StatePresenter {
	return &StatePresenter{src: src, view: view, lock: lock}
}

// Tick reflects the most recent state.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.src == nil || p.view == nil {
		return
	}
	s := p.src.State()
	if p.synced && s == p.latest {
		return
	}
	editable := s == StateIdle
	if p.lock != nil && (!p.synced || editable != (p.latest == StateIdle)) {
		p.lock.SetConfigEditable(editable)
	}
	p.latest = s
	p.synced = true
	p.view.SetStateLabel("State: " + s.String())
}
