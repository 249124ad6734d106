// Package capture selects what the session actually records (which display,
// which window, which rectangle) and drives the capture engine that produces
// samples for the sink.
package capture

import (
	"fmt"

	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/config"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/geometry"
	"github.com/reelcap/reelcap/internal/logger"
)

// Mode is the capture mode, chosen once per session and immutable
// thereafter.
type Mode int

const (
	// ModeScreen records a rectangle of one display.
	ModeScreen Mode = iota
	// ModeApplication records one application window.
	ModeApplication
	// ModeHybrid records the display rectangle under an application window
	// to obtain system-wide audio.
	ModeHybrid
)

func (m Mode) String() string {
	switch m {
	case ModeScreen:
		return "screen"
	case ModeApplication:
		return "application"
	case ModeHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// Plan is the fully-targeted capture description handed to the engine.
type Plan struct {
	Mode Mode

	// Screen is the targeted display. Set in screen and hybrid modes.
	Screen display.Screen

	// Application and Window are set in application and hybrid modes.
	Application *apps.Application
	Window      *apps.Window

	// SourceRect is the capture rectangle in the screen's local space.
	// Unused in application mode, where the full window is the target.
	SourceRect geometry.Rect

	// Output is the artifact's pixel size after scale-factor conversion.
	Output config.PixelSize

	FPS        int
	ShowCursor bool
	Audio      config.AudioPolicy
	Quality    config.Quality

	// Notices are informational trade-off messages the caller must surface
	// (e.g. the hybrid-mode overlap caveat). Never silently applied.
	Notices []string
}

// Select decides the capture mode for a resolved configuration and builds
// the content-targeting plan against the live display set.
func Select(cfg *config.RecordingConfiguration, displays display.Enumerator) (*Plan, error) {
	screens, err := displays.ListScreens()
	if err != nil {
		return nil, &Error{Kind: ErrNoMatchingDisplay, Msg: "failed to enumerate displays", Err: err}
	}

	if cfg.Application != nil {
		if cfg.HybridAudio {
			return selectHybrid(cfg, screens)
		}
		return selectApplication(cfg, screens)
	}
	return selectScreen(cfg, screens)
}

func selectScreen(cfg *config.RecordingConfiguration, screens []display.Screen) (*Plan, error) {
	// The configuration resolved a screen earlier; re-verify it against
	// the live set, since displays can detach between resolve and start.
	var screen display.Screen
	found := false
	for _, s := range screens {
		if cfg.Screen != nil && s.ID == cfg.Screen.ID {
			screen = s
			found = true
			break
		}
	}
	if !found {
		idx := 0
		if cfg.Screen != nil {
			idx = cfg.Screen.Index
		}
		return nil, &Error{
			Kind: ErrNoMatchingDisplay,
			Msg:  fmt.Sprintf("screen %d is no longer attached (%d displays present)", idx, len(screens)),
		}
	}

	rect := geometry.Resolve(cfg.Area, screen.LocalFrame())

	plan := &Plan{
		Mode:       ModeScreen,
		Screen:     screen,
		SourceRect: rect,
		Output:     scaled(rect.W, rect.H, screen.ScaleFactor),
		FPS:        cfg.Video.FPS,
		ShowCursor: cfg.Video.ShowCursor,
		Audio:      cfg.Audio,
		Quality:    cfg.Video.Quality,
	}

	logger.WithComponent("capture").Debug().
		Stringer("mode", plan.Mode).
		Str("screen", screen.Name).
		Str("rect", rect.String()).
		Msg("Capture plan selected")

	return plan, nil
}

func selectApplication(cfg *config.RecordingConfiguration, screens []display.Screen) (*Plan, error) {
	window, err := selectWindow(cfg.Application)
	if err != nil {
		return nil, err
	}

	scale := scaleForWindow(window, screens)

	plan := &Plan{
		Mode:        ModeApplication,
		Application: cfg.Application,
		Window:      window,
		Output:      scaled(window.Frame.W, window.Frame.H, scale),
		FPS:         cfg.Video.FPS,
		ShowCursor:  cfg.Video.ShowCursor,
		Audio:       cfg.Audio,
		Quality:     cfg.Video.Quality,
	}

	logger.WithComponent("capture").Debug().
		Stringer("mode", plan.Mode).
		Str("app", cfg.Application.Name).
		Str("window", window.Title).
		Msg("Capture plan selected")

	return plan, nil
}

// selectHybrid targets the display containing the chosen window, clipped to
// the window's rectangle, so system-wide audio stays available. The content
// trade-off (overlapping windows get recorded too) is surfaced as a notice.
func selectHybrid(cfg *config.RecordingConfiguration, screens []display.Screen) (*Plan, error) {
	window, err := selectWindow(cfg.Application)
	if err != nil {
		return nil, err
	}

	cx, cy := window.Frame.Center()
	screen, ok := display.Containing(screens, cx, cy)
	if !ok {
		screen, err = display.Primary(screens)
		if err != nil {
			return nil, &Error{Kind: ErrNoMatchingDisplay, Msg: "no display available for hybrid capture", Err: err}
		}
	}

	local := window.Frame.ToLocal(screen.Frame.X, screen.Frame.Y)
	local = clip(local, screen.LocalFrame())

	plan := &Plan{
		Mode:        ModeHybrid,
		Screen:      screen,
		Application: cfg.Application,
		Window:      window,
		SourceRect:  local,
		Output:      scaled(local.W, local.H, screen.ScaleFactor),
		FPS:         cfg.Video.FPS,
		ShowCursor:  cfg.Video.ShowCursor,
		Audio:       cfg.Audio,
		Quality:     cfg.Video.Quality,
		Notices: []string{
			fmt.Sprintf("hybrid mode: recording the %s region under %q to keep system audio; "+
				"anything overlapping that rectangle will appear in the recording",
				screen.Name, cfg.Application.Name),
		},
	}

	logger.WithComponent("capture").Info().
		Stringer("mode", plan.Mode).
		Str("app", cfg.Application.Name).
		Str("screen", screen.Name).
		Str("rect", local.String()).
		Msg("Hybrid capture selected for system audio")

	return plan, nil
}

// selectWindow picks the best capture window from the application's window
// list using the suitability ordering; first-seen wins remaining ties.
func selectWindow(app *apps.Application) (*apps.Window, error) {
	if len(app.Windows) == 0 {
		return nil, &Error{
			Kind: ErrNoWindowsFound,
			Msg:  fmt.Sprintf("%q has no windows to record", app.Name),
		}
	}

	best := 0
	for i := 1; i < len(app.Windows); i++ {
		if CompareWindows(app.Windows[i], app.Windows[best]) > 0 {
			best = i
		}
	}
	return &app.Windows[best], nil
}

// CompareWindows is the total-order window suitability comparator: a window
// with a title beats one without; among windows tied on title presence, the
// strictly larger area wins. Returns >0 when a is preferable to b, <0 when
// b is preferable, 0 on a tie (callers keep the first-seen window).
func CompareWindows(a, b apps.Window) int {
	aTitled := a.Title != ""
	bTitled := b.Title != ""
	if aTitled != bTitled {
		if aTitled {
			return 1
		}
		return -1
	}

	aArea := a.Frame.Area()
	bArea := b.Frame.Area()
	switch {
	case aArea > bArea:
		return 1
	case aArea < bArea:
		return -1
	default:
		return 0
	}
}

// scaleForWindow returns the scale factor of the screen containing the
// window's center point, falling back to the primary screen's.
func scaleForWindow(window *apps.Window, screens []display.Screen) float64 {
	cx, cy := window.Frame.Center()
	if screen, ok := display.Containing(screens, cx, cy); ok {
		return screen.ScaleFactor
	}
	if primary, err := display.Primary(screens); err == nil {
		return primary.ScaleFactor
	}
	return 1.0
}

func scaled(w, h int, scale float64) config.PixelSize {
	return config.PixelSize{
		Width:  int(float64(w) * scale),
		Height: int(float64(h) * scale),
	}
}

// clip intersects r with bounds, both in the same coordinate space.
func clip(r, bounds geometry.Rect) geometry.Rect {
	x1, y1 := max(r.X, bounds.X), max(r.Y, bounds.Y)
	x2 := min(r.X+r.W, bounds.X+bounds.W)
	y2 := min(r.Y+r.H, bounds.Y+bounds.H)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return geometry.Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1, Space: r.Space}
}
