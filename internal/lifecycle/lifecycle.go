// Package lifecycle implements the per-ad state machine governing load, show,
// dismiss, expiry and destroy.
//
// A Machine is not safe for concurrent use. Every ad instance is owned by a
// single foreground context which performs all transitions.
package lifecycle

import "time"

// State is a lifecycle state of an ad instance.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Showing
	Dismissed
	Expired
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Showing:
		return "showing"
	case Dismissed:
		return "dismissed"
	case Expired:
		return "expired"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// TTL is how long an expiring instance stays showable after load.
const TTL = 4 * time.Hour

// Clock returns the current time. Tests substitute a controllable clock.
type Clock func() time.Time

// Observer is notified after every state change.
type Observer func(from, to State)

// Machine tracks the state of one ad instance.
type Machine struct {
	state    State
	expires  bool
	now      Clock
	loadedAt time.Time
	observer Observer
}

// New returns a machine in the Unloaded state. When expires is true the
// instance becomes Expired once TTL has elapsed since the last completed load.
func New(expires bool, now Clock) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{state: Unloaded, expires: expires, now: now}
}

// OnTransition registers fn to be called after each state change.
func (m *Machine) OnTransition(fn Observer) { m.observer = fn }

// State returns the current state after applying lazy expiry.
func (m *Machine) State() State {
	m.checkExpiry()
	return m.state
}

// LoadedAt returns the time of the last completed load, or the zero time.
func (m *Machine) LoadedAt() time.Time { return m.loadedAt }

func (m *Machine) set(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	if m.observer != nil {
		m.observer(from, to)
	}
}

// checkExpiry moves an expiring instance to Expired once the TTL has elapsed.
// Only Loaded and Dismissed instances can expire.
func (m *Machine) checkExpiry() {
	if !m.expires || m.loadedAt.IsZero() {
		return
	}
	if m.state != Loaded && m.state != Dismissed {
		return
	}
	if m.now().Sub(m.loadedAt) >= TTL {
		m.set(Expired)
	}
}

// BeginLoad moves the instance to Loading. Loading is allowed from Unloaded
// and, to refresh content, from Loaded, Dismissed and Expired.
func (m *Machine) BeginLoad() error {
	m.checkExpiry()
	switch m.state {
	case Unloaded, Loaded, Dismissed, Expired:
		m.loadedAt = time.Time{}
		m.set(Loading)
		return nil
	case Loading:
		return ErrLoadInProgress
	case Showing:
		return ErrAlreadyShowing
	case Destroyed:
		return ErrDestroyed
	}
	return ErrInvalidTransition
}

// CompleteLoad finishes a load started with BeginLoad and stamps the load time.
func (m *Machine) CompleteLoad() error {
	if m.state != Loading {
		if m.state == Destroyed {
			return ErrDestroyed
		}
		return ErrInvalidTransition
	}
	m.loadedAt = m.now()
	m.set(Loaded)
	return nil
}

// FailLoad abandons a load started with BeginLoad and returns to Unloaded.
func (m *Machine) FailLoad() {
	if m.state == Loading {
		m.set(Unloaded)
	}
}

// Show moves a Loaded instance to Showing. Expiry is checked first.
func (m *Machine) Show() error {
	if err := m.CanShow(); err != nil {
		return err
	}
	m.set(Showing)
	return nil
}

// CanShow reports why Show would fail, or nil if it would succeed.
func (m *Machine) CanShow() error {
	m.checkExpiry()
	switch m.state {
	case Loaded:
		return nil
	case Unloaded, Loading:
		return ErrNotLoaded
	case Showing:
		return ErrAlreadyShowing
	case Dismissed:
		return ErrDismissed
	case Expired:
		return ErrExpired
	case Destroyed:
		return ErrDestroyed
	}
	return ErrInvalidTransition
}

// Dismiss moves a Showing instance to Dismissed. It reports whether a
// transition happened; dismissing in any other state is a no-op.
func (m *Machine) Dismiss() bool {
	if m.state != Showing {
		return false
	}
	m.set(Dismissed)
	return true
}

// CheckClick reports whether a tap may be handled in the current state.
// Apart from lazy expiry it never changes state.
func (m *Machine) CheckClick() error {
	m.checkExpiry()
	switch m.state {
	case Loaded, Showing:
		return nil
	case Destroyed:
		return ErrDestroyed
	case Expired:
		return ErrExpired
	}
	return ErrNotLoaded
}

// IsLoaded reports whether the instance holds content that has not expired,
// including while it is showing.
func (m *Machine) IsLoaded() bool {
	s := m.State()
	return s == Loaded || s == Showing
}

// IsShowing reports whether the instance is currently displayed.
func (m *Machine) IsShowing() bool { return m.state == Showing }

// IsExpired reports whether the TTL has elapsed since the last load. It is
// always false for instances that do not expire and before the first load.
func (m *Machine) IsExpired() bool {
	if !m.expires || m.loadedAt.IsZero() {
		return false
	}
	if m.state == Destroyed {
		return false
	}
	m.checkExpiry()
	return m.now().Sub(m.loadedAt) >= TTL
}

// Destroy moves the instance to Destroyed. It reports whether the instance was
// showing, in which case it is dismissed first. Calling Destroy again is a
// no-op that returns false.
func (m *Machine) Destroy() (wasShowing bool) {
	if m.state == Destroyed {
		return false
	}
	if m.state == Showing {
		wasShowing = true
		m.set(Dismissed)
	}
	m.set(Destroyed)
	return wasShowing
}
