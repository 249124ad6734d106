package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/reelcap/reelcap/internal/apps"
	"github.com/reelcap/reelcap/internal/display"
	"github.com/reelcap/reelcap/internal/geometry"
	"github.com/reelcap/reelcap/internal/logger"
	"github.com/reelcap/reelcap/internal/preset"
)

// Resolver merges a base (preset or defaults) with CLI overrides, validates
// every field, resolves named targets against the live system state and
// computes the final recording configuration.
type Resolver struct {
	Displays display.Enumerator
	Apps     apps.Enumerator
	Presets  preset.Store

	// Interactive selects prompting over auto-numbering when the output
	// path collides with an existing file.
	Interactive bool
}

// rawFields is the field-by-field merge target: preset values first, then
// CLI values for every flag the user actually provided. CLI wins ties.
type rawFields struct {
	durationMS       int64
	area             string
	screen           int
	application      string
	format           string
	fps              int
	videoQuality     string
	audioQuality     string
	microphone       bool
	forceSystemAudio bool
	showCursor       bool
	countdown        int
}

func defaults() rawFields {
	return rawFields{
		durationMS:   -1,
		format:       "mjpeg",
		fps:          30,
		videoQuality: string(QualityMedium),
		audioQuality: string(QualityMedium),
		showCursor:   true,
	}
}

var presetNameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Resolve turns raw CLI input into a validated recording configuration.
// Failures are reported per-field with actionable messages; nothing is
// recorded or allocated before validation passes.
func (r *Resolver) Resolve(in CLIInput) (*RecordingConfiguration, error) {
	raw := defaults()

	if in.Preset != "" {
		if !presetNameRe.MatchString(in.Preset) {
			return nil, &ValidationError{
				Field:      "preset",
				Message:    fmt.Sprintf("%q contains unsupported characters", in.Preset),
				Suggestion: "use letters, digits, '.', '_' and '-'",
			}
		}
		record, err := r.Presets.Load(in.Preset)
		if err != nil {
			if errors.Is(err, preset.ErrNotFound) {
				return nil, &ConfigurationError{
					Kind: ErrTargetNotFound,
					Msg:  fmt.Sprintf("preset %q does not exist; run 'reelcap list presets' to see saved presets", in.Preset),
					Err:  err,
				}
			}
			return nil, err
		}
		applyPreset(&raw, record)
		logger.WithComponent("config").Debug().
			Str("preset", in.Preset).
			Msg("Loaded preset as configuration base")
	}

	applyCLI(&raw, in)

	if err := validateScalars(raw); err != nil {
		return nil, err
	}

	area := geometry.FullScreen()
	if raw.area != "" {
		parsed, err := geometry.ParseArea(raw.area)
		if err != nil {
			return nil, err
		}
		area = parsed
	}

	// Application targeting excludes an explicit screen or area, with one
	// exception: system-audio-only capture is accepted and flagged for
	// hybrid mode.
	hybrid := raw.application != "" && raw.forceSystemAudio && !raw.microphone
	if raw.application != "" && (raw.screen != 0 || raw.area != "") && !hybrid {
		return nil, &ConfigurationError{
			Kind: ErrConflictingOperation,
			Msg: fmt.Sprintf("--app %q cannot be combined with an explicit screen or area; "+
				"drop the screen/area flags, or add --system-audio-only without --microphone for hybrid capture", raw.application),
		}
	}

	duration := Continuous
	if raw.durationMS >= 0 {
		duration = time.Duration(raw.durationMS) * time.Millisecond
	}

	cfg := &RecordingConfiguration{
		Duration:        duration,
		Format:          raw.format,
		Area:            area,
		RequestedScreen: raw.screen,
		Audio: AudioPolicy{
			Microphone:       raw.microphone,
			SystemAudio:      true,
			ForceSystemAudio: raw.forceSystemAudio,
			Quality:          Quality(raw.audioQuality),
		},
		Video: VideoPolicy{
			FPS:        raw.fps,
			Quality:    Quality(raw.videoQuality),
			ShowCursor: raw.showCursor,
		},
		HybridAudio:      hybrid,
		CountdownSeconds: raw.countdown,
		Verbose:          in.Verbose,
	}

	if err := r.resolveTargets(cfg, raw); err != nil {
		return nil, err
	}

	outputPath, err := r.resolveOutputPath(in.Output, raw.format, in.Overwrite)
	if err != nil {
		return nil, err
	}
	cfg.OutputPath = outputPath

	return cfg, nil
}

// resolveTargets looks up the screen or application target and, in screen
// mode, computes the final pixel resolution. Application-mode resolution is
// deferred to the capture-mode selector because it depends on which window
// wins selection.
func (r *Resolver) resolveTargets(cfg *RecordingConfiguration, raw rawFields) error {
	if raw.application != "" {
		app, err := r.Apps.ApplicationNamed(raw.application)
		if err != nil {
			if errors.Is(err, apps.ErrNotFound) {
				return &ConfigurationError{
					Kind: ErrTargetNotFound,
					Msg:  r.applicationNotFoundMessage(raw.application),
					Err:  err,
				}
			}
			return err
		}
		cfg.Application = &app
		return nil
	}

	var screen display.Screen
	var err error
	if raw.screen != 0 {
		screen, err = r.Displays.ScreenAt(raw.screen)
		if err != nil {
			if errors.Is(err, display.ErrNotFound) {
				return &ConfigurationError{
					Kind: ErrTargetNotFound,
					Msg:  fmt.Sprintf("screen %d is not attached; run 'reelcap list screens' to see available displays", raw.screen),
					Err:  err,
				}
			}
			return err
		}
	} else {
		screens, listErr := r.Displays.ListScreens()
		if listErr != nil {
			return listErr
		}
		screen, err = display.Primary(screens)
		if err != nil {
			return err
		}
	}

	if err := geometry.Validate(cfg.Area, screen.LocalFrame()); err != nil {
		return err
	}

	rect := geometry.Resolve(cfg.Area, screen.LocalFrame())
	cfg.Screen = &screen
	cfg.Video.Resolution = PixelSize{
		Width:  int(float64(rect.W) * screen.ScaleFactor),
		Height: int(float64(rect.H) * screen.ScaleFactor),
	}

	return nil
}

// applicationNotFoundMessage lists every currently-running application so
// the user can pick a valid name without a second enumeration pass.
func (r *Resolver) applicationNotFoundMessage(name string) string {
	applications, err := r.Apps.ListApplications()
	if err != nil || len(applications) == 0 {
		return fmt.Sprintf("application %q is not running", name)
	}
	return fmt.Sprintf("application %q is not running; currently running: %s",
		name, strings.Join(apps.Names(applications), ", "))
}

func applyPreset(raw *rawFields, record *preset.Record) {
	raw.durationMS = record.DurationMS
	raw.area = record.Area
	raw.screen = record.Screen
	raw.application = record.Application
	if record.Format != "" {
		raw.format = record.Format
	}
	if record.FPS != 0 {
		raw.fps = record.FPS
	}
	if record.VideoQuality != "" {
		raw.videoQuality = record.VideoQuality
	}
	if record.AudioQuality != "" {
		raw.audioQuality = record.AudioQuality
	}
	raw.microphone = record.Microphone
	raw.forceSystemAudio = record.ForceSystemAudio
	raw.showCursor = record.ShowCursor
	raw.countdown = record.CountdownSeconds
}

func applyCLI(raw *rawFields, in CLIInput) {
	if in.DurationSet {
		raw.durationMS = in.DurationMS
	}
	if in.AreaSet {
		raw.area = in.Area
	}
	if in.ScreenSet {
		raw.screen = in.Screen
	}
	if in.Application != "" {
		raw.application = in.Application
	}
	if in.FormatSet {
		raw.format = in.Format
	}
	if in.FPSSet {
		raw.fps = in.FPS
	}
	if in.VideoQualitySet {
		raw.videoQuality = in.VideoQuality
	}
	if in.AudioQualitySet {
		raw.audioQuality = in.AudioQuality
	}
	if in.MicrophoneSet {
		raw.microphone = in.Microphone
	}
	if in.SystemAudioOnlySet {
		raw.forceSystemAudio = in.SystemAudioOnly
	}
	if in.ShowCursorSet {
		raw.showCursor = in.ShowCursor
	}
	if in.CountdownSet {
		raw.countdown = in.CountdownSeconds
	}
}

// validateScalars checks each scalar field in isolation so the first failing
// field is reported with a targeted message.
func validateScalars(raw rawFields) error {
	if raw.durationMS >= 0 && time.Duration(raw.durationMS)*time.Millisecond < MinDuration {
		return &ValidationError{
			Field:      "duration",
			Message:    fmt.Sprintf("%dms is shorter than the %v minimum", raw.durationMS, MinDuration),
			Suggestion: "use at least 100ms, or omit the flag to record until cancelled",
		}
	}

	fpsOK := false
	for _, fps := range ValidFPS {
		if raw.fps == fps {
			fpsOK = true
			break
		}
	}
	if !fpsOK {
		return &ValidationError{
			Field:      "fps",
			Message:    fmt.Sprintf("%d is not supported", raw.fps),
			Suggestion: "use 15, 30 or 60",
		}
	}

	if !Quality(raw.videoQuality).Valid() {
		return &ValidationError{
			Field:      "quality",
			Message:    fmt.Sprintf("%q is not a known tier", raw.videoQuality),
			Suggestion: "use low, medium or high",
		}
	}
	if !Quality(raw.audioQuality).Valid() {
		return &ValidationError{
			Field:      "audio-quality",
			Message:    fmt.Sprintf("%q is not a known tier", raw.audioQuality),
			Suggestion: "use low, medium or high",
		}
	}

	if raw.countdown < 0 {
		return &ValidationError{
			Field:      "countdown",
			Message:    fmt.Sprintf("%d is negative", raw.countdown),
			Suggestion: "use 0 to start immediately",
		}
	}

	if raw.screen < 0 {
		return &ValidationError{
			Field:      "screen",
			Message:    fmt.Sprintf("%d is not a valid index", raw.screen),
			Suggestion: "screen indexes start at 1",
		}
	}

	if raw.format != "mjpeg" {
		return &ValidationError{
			Field:      "format",
			Message:    fmt.Sprintf("%q is not supported", raw.format),
			Suggestion: "use mjpeg",
		}
	}

	return nil
}

// ToRecord converts a resolved configuration into its preset-serializable
// form. Resolution is deliberately not stored; it is recomputed from the
// live screen and area at load time.
func ToRecord(name string, cfg *RecordingConfiguration) *preset.Record {
	durationMS := int64(-1)
	if !cfg.IsContinuous() {
		durationMS = cfg.Duration.Milliseconds()
	}

	areaStr := ""
	if cfg.Area.Kind != geometry.AreaFullScreen {
		areaStr = cfg.Area.String()
	}

	appName := ""
	if cfg.Application != nil {
		appName = cfg.Application.Name
	}

	return &preset.Record{
		Name:             name,
		DurationMS:       durationMS,
		Area:             areaStr,
		Screen:           cfg.RequestedScreen,
		Application:      appName,
		Format:           cfg.Format,
		FPS:              cfg.Video.FPS,
		VideoQuality:     string(cfg.Video.Quality),
		AudioQuality:     string(cfg.Audio.Quality),
		Microphone:       cfg.Audio.Microphone,
		ForceSystemAudio: cfg.Audio.ForceSystemAudio,
		ShowCursor:       cfg.Video.ShowCursor,
		CountdownSeconds: cfg.CountdownSeconds,
	}
}
