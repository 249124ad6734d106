// Package apps describes running applications and their windows and exposes
// the lookup contract consumed during configuration resolution and capture
// mode selection.
package apps

import (
	"errors"
	"fmt"

	"github.com/reelcap/reelcap/internal/geometry"
)

// ErrNotFound is returned when a named application is not in the live
// enumeration.
var ErrNotFound = errors.New("application not found")

// Window describes one window owned by an application. Frame is in global
// (multi-monitor) space as reported by the window system.
type Window struct {
	Title    string
	Frame    geometry.Rect
	OnScreen bool
}

// Application describes a running application and its windows, in
// enumeration order.
type Application struct {
	// ID is the application's stable identifier (window class on X11,
	// bundle identifier elsewhere).
	ID      string
	Name    string
	PID     int
	Windows []Window
}

func (a Application) String() string {
	return fmt.Sprintf("%s (pid %d, %d windows)", a.Name, a.PID, len(a.Windows))
}

// Enumerator is the application lookup contract.
type Enumerator interface {
	// ListApplications returns all running applications that own at least
	// one window.
	ListApplications() ([]Application, error)

	// ApplicationNamed returns the application whose display name exactly
	// matches name (case-sensitive), or an error wrapping ErrNotFound.
	ApplicationNamed(name string) (Application, error)
}

// Names returns the display names of the given applications, preserving
// order. Used to build actionable not-found messages.
func Names(applications []Application) []string {
	names := make([]string, 0, len(applications))
	for _, a := range applications {
		names = append(names, a.Name)
	}
	return names
}
