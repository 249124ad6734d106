package apps

import "sync"

// LazyEnumerator defers the X server connection until an application lookup
// actually happens, so screen-only invocations never touch the window
// system.
type LazyEnumerator struct {
	mu   sync.Mutex
	e    *X11Enumerator
	err  error
	init bool
}

// NewLazyEnumerator returns an Enumerator that connects on first use.
func NewLazyEnumerator() *LazyEnumerator {
	return &LazyEnumerator{}
}

func (l *LazyEnumerator) get() (*X11Enumerator, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.init {
		l.e, l.err = NewX11Enumerator()
		l.init = true
	}
	return l.e, l.err
}

// ListApplications connects on demand and lists applications.
func (l *LazyEnumerator) ListApplications() ([]Application, error) {
	e, err := l.get()
	if err != nil {
		return nil, err
	}
	return e.ListApplications()
}

// ApplicationNamed connects on demand and resolves the named application.
func (l *LazyEnumerator) ApplicationNamed(name string) (Application, error) {
	e, err := l.get()
	if err != nil {
		return Application{}, err
	}
	return e.ApplicationNamed(name)
}

// Close closes the underlying connection if one was opened.
func (l *LazyEnumerator) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.e != nil {
		l.e.Close()
		l.e = nil
		l.init = false
	}
}
