// Package geometry converts user-supplied capture area specifications into
// concrete pixel rectangles within a screen's frame. All functions are pure
// apart from advisory logging; nothing here talks to a display server.
package geometry

import (
	"fmt"

	"github.com/reelcap/reelcap/internal/logger"
)

// CoordinateSpace tags which coordinate system a Rect is expressed in.
// Local means relative to a single screen's own origin; Global means the
// platform's multi-monitor space as reported for windows.
type CoordinateSpace int

const (
	SpaceLocal CoordinateSpace = iota
	SpaceGlobal
)

func (s CoordinateSpace) String() string {
	switch s {
	case SpaceLocal:
		return "local"
	case SpaceGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Rect is an integer rectangle tagged with the coordinate space it lives in.
type Rect struct {
	X, Y, W, H int
	Space      CoordinateSpace
}

// Area returns the rectangle's area in square pixels.
func (r Rect) Area() int {
	return r.W * r.H
}

// Contains reports whether other lies fully inside r. Both rectangles must
// be in the same coordinate space for the answer to be meaningful.
func (r Rect) Contains(other Rect) bool {
	return other.X >= r.X &&
		other.Y >= r.Y &&
		other.X+other.W <= r.X+r.W &&
		other.Y+other.H <= r.Y+r.H
}

// ToLocal converts a global-space rectangle into the local space of a screen
// whose frame origin is at (frameX, frameY) in global space.
func (r Rect) ToLocal(frameX, frameY int) Rect {
	if r.Space == SpaceLocal {
		return r
	}
	return Rect{
		X:     r.X - frameX,
		Y:     r.Y - frameY,
		W:     r.W,
		H:     r.H,
		Space: SpaceLocal,
	}
}

// ToGlobal converts a local-space rectangle into global space given the
// owning screen's frame origin.
func (r Rect) ToGlobal(frameX, frameY int) Rect {
	if r.Space == SpaceGlobal {
		return r
	}
	return Rect{
		X:     r.X + frameX,
		Y:     r.Y + frameY,
		W:     r.W,
		H:     r.H,
		Space: SpaceGlobal,
	}
}

// Center returns the rectangle's center point.
func (r Rect) Center() (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d) [%s]", r.W, r.H, r.X, r.Y, r.Space)
}

// AreaKind discriminates the capture area variants.
type AreaKind int

const (
	AreaFullScreen AreaKind = iota
	AreaCustom
	AreaCentered
)

// Area is an immutable capture-area specification. FullScreen captures the
// whole screen frame, Custom a literal rectangle in the screen's local space,
// Centered a w x h rectangle centered on the screen.
type Area struct {
	Kind       AreaKind
	X, Y, W, H int
}

// FullScreen returns the full-screen area specification.
func FullScreen() Area {
	return Area{Kind: AreaFullScreen}
}

// Custom returns a literal-rectangle area specification in screen-local space.
func Custom(x, y, w, h int) Area {
	return Area{Kind: AreaCustom, X: x, Y: y, W: w, H: h}
}

// Centered returns a centered area specification.
func Centered(w, h int) Area {
	return Area{Kind: AreaCentered, W: w, H: h}
}

func (a Area) String() string {
	switch a.Kind {
	case AreaFullScreen:
		return "fullscreen"
	case AreaCustom:
		return fmt.Sprintf("%d:%d:%d:%d", a.X, a.Y, a.W, a.H)
	case AreaCentered:
		return fmt.Sprintf("center:%d:%d", a.W, a.H)
	default:
		return "invalid"
	}
}

// minRecommendedSide is the smallest capture side length that records
// legibly; anything smaller gets a quality advisory, not an error.
const minRecommendedSide = 100

// largeAreaRatio is the fraction of the screen above which a performance
// advisory is emitted.
const largeAreaRatio = 0.8

// Resolve converts an area specification into a concrete rectangle inside
// the given screen frame. The frame must be in local space; the result is
// in the same space. Resolve performs no validation; see Validate.
func Resolve(area Area, frame Rect) Rect {
	switch area.Kind {
	case AreaCustom:
		return Rect{X: area.X, Y: area.Y, W: area.W, H: area.H, Space: SpaceLocal}
	case AreaCentered:
		return Rect{
			X:     frame.X + (frame.W-area.W)/2,
			Y:     frame.Y + (frame.H-area.H)/2,
			W:     area.W,
			H:     area.H,
			Space: SpaceLocal,
		}
	default:
		return frame
	}
}

// Validate checks that the area resolves to a usable rectangle inside the
// screen frame. Containment and minimum-size failures are errors; the
// quality and performance thresholds only emit advisory warnings.
func Validate(area Area, frame Rect) error {
	rect := Resolve(area, frame)

	if rect.W < 1 || rect.H < 1 {
		return &Error{
			Kind: ErrTooSmall,
			Msg:  fmt.Sprintf("capture area %dx%d is empty; width and height must be at least 1", rect.W, rect.H),
		}
	}

	if !frame.Contains(rect) {
		return &Error{
			Kind: ErrOutOfBounds,
			Msg: fmt.Sprintf("capture area %dx%d at (%d,%d) does not fit on the %dx%d screen",
				rect.W, rect.H, rect.X, rect.Y, frame.W, frame.H),
		}
	}

	log := logger.WithComponent("geometry")
	if rect.W < minRecommendedSide || rect.H < minRecommendedSide {
		log.Warn().
			Int("width", rect.W).
			Int("height", rect.H).
			Msgf("capture area is smaller than %dx%d; output quality may suffer", minRecommendedSide, minRecommendedSide)
	}
	if frame.Area() > 0 && float64(rect.Area())/float64(frame.Area()) > largeAreaRatio {
		log.Warn().
			Int("area_px", rect.Area()).
			Int("screen_px", frame.Area()).
			Msg("capture area covers most of the screen; expect higher CPU usage")
	}

	return nil
}
