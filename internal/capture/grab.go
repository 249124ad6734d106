package capture

import (
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/reelcap/reelcap/internal/geometry"
	"github.com/reelcap/reelcap/internal/logger"
	"github.com/reelcap/reelcap/internal/sink"
)

// dropAdvisoryInterval rate-limits the refused-frame warning.
const dropAdvisoryInterval = time.Second

// GrabEngine captures frames by grabbing the plan's screen rectangle through
// the platform screenshot backend at the configured frame rate.
type GrabEngine struct{}

// NewGrabEngine returns the screenshot-backed capture engine.
func NewGrabEngine() *GrabEngine {
	return &GrabEngine{}
}

// grabSession is the engine's session handle: one video producer goroutine
// and a single-shot failure channel.
type grabSession struct {
	stopped atomic.Bool
	failc   chan error
	wg      sync.WaitGroup
}

func (s *grabSession) Failures() <-chan error {
	return s.failc
}

// fail reports the first engine failure; later failures are dropped.
func (s *grabSession) fail(err error) {
	select {
	case s.failc <- err:
	default:
	}
}

// Start launches the frame producer for the plan's capture rectangle.
func (e *GrabEngine) Start(plan *Plan, out sink.Sink) (Handle, error) {
	region := captureRegion(plan)
	if region.Dx() < 1 || region.Dy() < 1 {
		return nil, &Error{
			Kind: ErrStartFailed,
			Msg:  fmt.Sprintf("capture region %v is empty", region),
		}
	}

	log := logger.WithComponent("engine")

	// This backend composites no cursor and exposes no audio taps; both
	// degrade rather than abort.
	if plan.ShowCursor {
		log.Warn().Msg("Cursor rendering is not supported by the grab backend; recording without cursor")
	}
	if plan.Audio.SystemAudio || plan.Audio.Microphone {
		log.Warn().Msg("Audio capture is not supported by the grab backend; recording video only")
	}

	s := &grabSession{failc: make(chan error, 1)}
	s.wg.Add(1)
	go e.produceVideo(s, plan, region, out)

	log.Info().
		Stringer("mode", plan.Mode).
		Int("fps", plan.FPS).
		Str("region", fmt.Sprintf("%dx%d at (%d,%d)", region.Dx(), region.Dy(), region.Min.X, region.Min.Y)).
		Msg("Capture started")

	return s, nil
}

// Stop halts the producers and waits for them to exit. Safe to call again
// on an already-stopped handle.
func (e *GrabEngine) Stop(h Handle) {
	s, ok := h.(*grabSession)
	if !ok {
		return
	}
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	s.wg.Wait()
	logger.WithComponent("engine").Info().Msg("Capture stopped")
}

// produceVideo grabs frames at the plan's frame rate and appends them to the
// sink. A refused frame is dropped with a rate-limited advisory; the
// producer never blocks on the sink.
func (e *GrabEngine) produceVideo(s *grabSession, plan *Plan, region image.Rectangle, out sink.Sink) {
	defer s.wg.Done()

	log := logger.WithComponent("engine")
	ticker := time.NewTicker(time.Second / time.Duration(plan.FPS))
	defer ticker.Stop()

	var anchor time.Time
	var lastAdvisory time.Time
	var dropped uint64

	for range ticker.C {
		if s.stopped.Load() {
			return
		}

		frame, err := screenshot.CaptureRect(region)
		if err != nil {
			s.fail(&Error{
				Kind: ErrCaptureFailed,
				Msg:  fmt.Sprintf("frame grab failed: %v", err),
				Err:  err,
			})
			return
		}

		now := time.Now()
		if anchor.IsZero() {
			anchor = now
		}
		ts := now.Sub(anchor)

		if s.stopped.Load() {
			return
		}
		if !out.ReadyForVideo() || !out.AppendVideo(frame, ts) {
			dropped++
			if now.Sub(lastAdvisory) >= dropAdvisoryInterval {
				lastAdvisory = now
				log.Warn().
					Uint64("dropped", dropped).
					Dur("ts", ts).
					Msg("Sink refused frame, dropping")
			}
		}
	}
}

// captureRegion converts the plan's target into a global pixel rectangle
// for the screenshot backend.
func captureRegion(plan *Plan) image.Rectangle {
	var global geometry.Rect
	switch plan.Mode {
	case ModeApplication:
		global = plan.Window.Frame
	default:
		global = plan.SourceRect.ToGlobal(plan.Screen.Frame.X, plan.Screen.Frame.Y)
	}
	return image.Rect(global.X, global.Y, global.X+global.W, global.Y+global.H)
}
