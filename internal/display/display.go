// Package display describes the screens attached to the machine and exposes
// the lookup contract the configuration resolver and mode selector consume.
package display

import (
	"errors"
	"fmt"

	"github.com/reelcap/reelcap/internal/geometry"
)

// ErrNotFound is returned when a requested screen index is not present in
// the live display set.
var ErrNotFound = errors.New("screen not found")

// Screen describes one attached display. Index is 1-based and stable for the
// duration of a session; Frame is the screen's logical frame positioned in
// the global multi-monitor arrangement; ScaleFactor maps logical points to
// physical pixels.
type Screen struct {
	Index       int
	ID          int
	Frame       geometry.Rect
	Name        string
	Primary     bool
	ScaleFactor float64
}

func (s Screen) String() string {
	primary := ""
	if s.Primary {
		primary = " (primary)"
	}
	return fmt.Sprintf("screen %d %q %dx%d @%.1fx%s", s.Index, s.Name, s.Frame.W, s.Frame.H, s.ScaleFactor, primary)
}

// Enumerator is the display lookup contract.
type Enumerator interface {
	// ListScreens returns all attached screens, primary first.
	ListScreens() ([]Screen, error)

	// ScreenAt returns the screen with the given 1-based index, or an error
	// wrapping ErrNotFound.
	ScreenAt(index int) (Screen, error)
}

// Primary returns the primary screen from a screen list, falling back to the
// first entry when none is flagged primary.
func Primary(screens []Screen) (Screen, error) {
	for _, s := range screens {
		if s.Primary {
			return s, nil
		}
	}
	if len(screens) > 0 {
		return screens[0], nil
	}
	return Screen{}, fmt.Errorf("no screens attached: %w", ErrNotFound)
}

// Containing returns the screen whose frame, placed in global space, contains
// the point (x, y). Returns false when no screen contains it.
func Containing(screens []Screen, x, y int) (Screen, bool) {
	for _, s := range screens {
		g := s.GlobalFrame()
		if x >= g.X && x < g.X+g.W && y >= g.Y && y < g.Y+g.H {
			return s, true
		}
	}
	return Screen{}, false
}

// GlobalFrame returns the screen's frame in global space.
func (s Screen) GlobalFrame() geometry.Rect {
	return geometry.Rect{X: s.Frame.X, Y: s.Frame.Y, W: s.Frame.W, H: s.Frame.H, Space: geometry.SpaceGlobal}
}

// LocalFrame returns the screen's frame in its own local space, with the
// origin at (0,0). Area resolution happens in this space.
func (s Screen) LocalFrame() geometry.Rect {
	return geometry.Rect{X: 0, Y: 0, W: s.Frame.W, H: s.Frame.H, Space: geometry.SpaceLocal}
}
