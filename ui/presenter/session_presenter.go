package presenter

import (
	"time"

	"github.com/soocke/viewer-markup/ui/model"
)

// SessionSource reports whether an annotation session is running and how many
// clouds it holds.
type SessionSource interface {
	Active() bool
	Len() int
}

// SessionView displays session durations and counters.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetCounts(sessions, records int)
}

// SessionPresenter formats session data from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  SessionSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src SessionSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.src.Active(), now)
	s, t := p.sess.Values()
	p.view.SetSession(s, t)
	p.view.SetCounts(p.sess.Sessions(), p.src.Len())
}
