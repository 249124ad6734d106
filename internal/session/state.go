package session

import "sync"

// State is the lifecycle stage of a recording session.
type State int

const (
	StateIdle State = iota
	StateCountdown
	StateCapturing
	StateStopping
	StateFinalizing
	StateCompleted
	StateCancelled
	StateFailed
)

// Terminal reports whether the session has ended.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCountdown:
		return "countdown"
	case StateCapturing:
		return "capturing"
	case StateStopping:
		return "stopping"
	case StateFinalizing:
		return "finalizing"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// stateMachine guards the session state and fans transitions out to
// subscribers. All mutation goes through transition; nothing else touches
// the current state.
type stateMachine struct {
	mu        sync.RWMutex
	state     State
	listeners []chan State
}

func (m *stateMachine) current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// transition moves to next and notifies subscribers. Slow subscribers miss
// transitions rather than blocking the controller.
func (m *stateMachine) transition(next State) {
	m.mu.Lock()
	m.state = next
	listeners := make([]chan State, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, ch := range listeners {
		select {
		case ch <- next:
		default:
		}
	}
}

// subscribe registers a transition listener.
func (m *stateMachine) subscribe() chan State {
	ch := make(chan State, 8)
	m.mu.Lock()
	m.listeners = append(m.listeners, ch)
	m.mu.Unlock()
	return ch
}

// unsubscribe removes a listener and closes its channel.
func (m *stateMachine) unsubscribe(ch chan State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, listener := range m.listeners {
		if listener == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}
