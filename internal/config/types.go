// Package config turns user intent (flags, presets) and live system state
// into a fully-specified, internally-consistent recording configuration.
package config

import (
	"time"

	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/geometry"
)

// Continuous is the duration sentinel meaning record until cancelled.
const Continuous time.Duration = -1

// MinDuration is the shortest accepted bounded recording.
const MinDuration = 100 * time.Millisecond

// Quality is a coarse quality tier mapped onto concrete encoder parameters.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Valid reports whether q is a known quality tier.
func (q Quality) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// AudioRates returns the sample rate (Hz) and bit rate (bps) for the tier.
func (q Quality) AudioRates() (sampleRate, bitRate int) {
	switch q {
	case QualityLow:
		return 22050, 64_000
	case QualityHigh:
		return 48000, 256_000
	default:
		return 44100, 128_000
	}
}

// VideoBitrate returns the target video bit rate (bps) for the tier at the
// given output pixel count.
func (q Quality) VideoBitrate(pixels int) int {
	// Baseline tuned for 1080p, scaled linearly with pixel count.
	var perPixel float64
	switch q {
	case QualityLow:
		perPixel = 1.0
	case QualityHigh:
		perPixel = 4.0
	default:
		perPixel = 2.0
	}
	return int(perPixel * float64(pixels))
}

// JPEGQuality maps the tier to a JPEG encoder quality for the MJPEG sink.
func (q Quality) JPEGQuality() int {
	switch q {
	case QualityLow:
		return 60
	case QualityHigh:
		return 95
	default:
		return 85
	}
}

// AudioPolicy captures which audio streams are requested and at what
// quality. SystemAudio is always true; ForceSystemAudio opts into hybrid
// capture when an application target is set.
type AudioPolicy struct {
	Microphone       bool
	SystemAudio      bool
	ForceSystemAudio bool
	Quality          Quality
}

// PixelSize is an output size in physical pixels.
type PixelSize struct {
	Width  int
	Height int
}

// Pixels returns the total pixel count.
func (p PixelSize) Pixels() int {
	return p.Width * p.Height
}

// IsZero reports whether the size is unset.
func (p PixelSize) IsZero() bool {
	return p.Width == 0 && p.Height == 0
}

// VideoPolicy captures frame rate, quality tier, cursor visibility and the
// computed output resolution. Resolution stays zero in application mode
// until the capture-mode selector picks a window.
type VideoPolicy struct {
	FPS        int
	Quality    Quality
	ShowCursor bool
	Resolution PixelSize
}

// ValidFPS lists the accepted frame rates.
var ValidFPS = []int{15, 30, 60}

// RecordingConfiguration is the fully-resolved recording plan. It is
// constructed once per invocation and never mutated in place; updates
// produce a new value.
type RecordingConfiguration struct {
	// Duration is the bounded recording length, or Continuous.
	Duration time.Duration

	OutputPath string
	Format     string

	Area        geometry.Area
	Screen      *display.Screen
	Application *apps.Application

	// RequestedScreen is the 1-based screen index the user asked for, or 0
	// when the primary screen was defaulted. Presets store this rather
	// than the resolved screen so loading re-targets the live display set.
	RequestedScreen int

	Audio AudioPolicy
	Video VideoPolicy

	// HybridAudio marks an application-targeted configuration accepted
	// under the system-audio exception; the mode selector turns it into a
	// display-level capture clipped to the window rectangle.
	HybridAudio bool

	CountdownSeconds int
	Verbose          bool
}

// IsContinuous reports whether the recording runs until cancelled.
func (c *RecordingConfiguration) IsContinuous() bool {
	return c.Duration < 0
}

// CLIInput is the raw user intent from flags. The *Set fields record which
// flags were explicitly provided so that CLI values override preset fields
// only when actually given.
type CLIInput struct {
	Preset string

	DurationMS  int64
	DurationSet bool

	Area    string
	AreaSet bool

	Screen    int
	ScreenSet bool

	Application string

	Output    string
	Format    string
	FormatSet bool
	Overwrite bool

	FPS    int
	FPSSet bool

	VideoQuality    string
	VideoQualitySet bool

	AudioQuality    string
	AudioQualitySet bool

	Microphone    bool
	MicrophoneSet bool

	SystemAudioOnly    bool
	SystemAudioOnlySet bool

	ShowCursor    bool
	ShowCursorSet bool

	CountdownSeconds int
	CountdownSet     bool

	Verbose bool
}
