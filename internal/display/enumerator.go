package display

import (
	"fmt"

	"github.com/kbinani/screenshot"

	"github.com/reelcap/reelcap/internal/geometry"
	"github.com/reelcap/reelcap/internal/logger"
)

// desktopEnumerator enumerates screens through the platform screenshot
// backend. The backend reports display 0 as the primary display and frames
// in physical pixels, so the scale factor is 1.0 here.
type desktopEnumerator struct{}

// NewEnumerator returns an Enumerator backed by the live display set.
func NewEnumerator() Enumerator {
	return &desktopEnumerator{}
}

func (d *desktopEnumerator) ListScreens() ([]Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays detected: %w", ErrNotFound)
	}

	screens := make([]Screen, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		screens = append(screens, Screen{
			Index: i + 1,
			ID:    i,
			Frame: geometry.Rect{
				X:     bounds.Min.X,
				Y:     bounds.Min.Y,
				W:     bounds.Dx(),
				H:     bounds.Dy(),
				Space: geometry.SpaceGlobal,
			},
			Name:        fmt.Sprintf("Display %d", i+1),
			Primary:     i == 0,
			ScaleFactor: 1.0,
		})
	}

	logger.WithComponent("display").Debug().
		Int("count", len(screens)).
		Msg("Enumerated displays")

	return screens, nil
}

func (d *desktopEnumerator) ScreenAt(index int) (Screen, error) {
	screens, err := d.ListScreens()
	if err != nil {
		return Screen{}, err
	}
	for _, s := range screens {
		if s.Index == index {
			return s, nil
		}
	}
	return Screen{}, fmt.Errorf("screen %d of %d: %w", index, len(screens), ErrNotFound)
}
