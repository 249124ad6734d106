// Package session drives a recording from countdown through capture to a
// finalized artifact, guaranteeing a valid output even under asynchronous
// cancellation.
package session

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/reelcap/reelcap/internal/capture"
	"github.com/reelcap/reelcap/internal/config"
	"github.com/reelcap/reelcap/internal/logger"
	"github.com/reelcap/reelcap/internal/sink"
)

// ResultKind classifies how a session ended.
type ResultKind int

const (
	// ResultCompleted means a valid artifact was written.
	ResultCompleted ResultKind = iota
	// ResultCancelled means the session was cancelled before capture
	// started; no artifact exists.
	ResultCancelled
	// ResultFailed means the session failed; PartialPath points at any
	// partial artifact that survived.
	ResultFailed
)

// Result is the session outcome reported to the caller.
type Result struct {
	Kind        ResultKind
	OutputPath  string
	Bytes       int64
	Duration    time.Duration
	PartialPath string
	Err         error
}

// stopRequest is one cancellation event. Confirmed requests (a second
// signal, or a remote stop) bypass the early-stop confirmation for timed
// recordings.
type stopRequest struct {
	confirmed bool
	reason    string
}

// Controller supervises one recording session. It owns the sole stop flag;
// the engine and sink handles are exclusively its for the session's
// duration.
type Controller struct {
	engine capture.Engine
	out    sink.Sink

	finalizeTimeout time.Duration
	confirmWindow   time.Duration

	machine  stateMachine
	requests chan stopRequest
	stopped  atomic.Bool
}

// Option adjusts controller timing.
type Option func(*Controller)

// WithFinalizeTimeout bounds the wait for the sink to report
// write-completion.
func WithFinalizeTimeout(d time.Duration) Option {
	return func(c *Controller) { c.finalizeTimeout = d }
}

// WithConfirmWindow sets how long a timed recording waits for the second
// cancellation signal before resuming.
func WithConfirmWindow(d time.Duration) Option {
	return func(c *Controller) { c.confirmWindow = d }
}

// New creates a session controller over the given engine and sink.
func New(engine capture.Engine, out sink.Sink, opts ...Option) *Controller {
	c := &Controller{
		engine:          engine,
		out:             out,
		finalizeTimeout: 10 * time.Second,
		confirmWindow:   5 * time.Second,
		requests:        make(chan stopRequest, 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.machine.current()
}

// Subscribe registers a listener for state transitions.
func (c *Controller) Subscribe() chan State {
	return c.machine.subscribe()
}

// Unsubscribe removes a transition listener.
func (c *Controller) Unsubscribe(ch chan State) {
	c.machine.unsubscribe(ch)
}

// Cancel delivers one cancellation signal, as from SIGINT. Outside
// Countdown and Capturing this is a no-op.
func (c *Controller) Cancel() {
	c.deliver(stopRequest{reason: "signal"})
}

// RequestStop delivers an explicit, pre-confirmed stop (e.g. from the
// control API). Timed recordings stop without a confirmation step.
func (c *Controller) RequestStop(reason string) {
	c.deliver(stopRequest{confirmed: true, reason: reason})
}

func (c *Controller) deliver(req stopRequest) {
	switch c.machine.current() {
	case StateCountdown, StateCapturing:
	default:
		return
	}
	select {
	case c.requests <- req:
	default:
	}
}

// Run drives the session to completion: Countdown, Capturing, Stopping,
// Finalizing, then Completed or Failed. It returns exactly once and
// finalizes the sink at most once.
func (c *Controller) Run(ctx context.Context, cfg *config.RecordingConfiguration, plan *capture.Plan) Result {
	log := logger.WithComponent("session")
	c.machine.transition(StateIdle)

	if cfg.CountdownSeconds > 0 {
		if cancelled := c.countdown(ctx, cfg.CountdownSeconds); cancelled {
			// Capture never started: nothing to finalize, no artifact.
			c.machine.transition(StateFinalizing)
			c.machine.transition(StateCancelled)
			log.Info().Msg("Cancelled during countdown, no output produced")
			return Result{Kind: ResultCancelled}
		}
	}

	handle, err := c.engine.Start(plan, c.out)
	if err != nil {
		c.machine.transition(StateFailed)
		return Result{
			Kind: ResultFailed,
			Err:  fmt.Errorf("failed to start capture: %w", err),
		}
	}

	started := time.Now()
	c.machine.transition(StateCapturing)
	log.Info().
		Stringer("mode", plan.Mode).
		Dur("duration", cfg.Duration).
		Bool("continuous", cfg.IsContinuous()).
		Msg("Recording")

	captureErr := c.awaitStop(ctx, cfg, handle)
	wallDuration := time.Since(started)

	// Single-use stop guard: only the first trigger reaches the stop path,
	// and the engine's own Stop is a no-op when already stopped.
	if !c.stopped.CompareAndSwap(false, true) {
		return Result{Kind: ResultFailed, Err: fmt.Errorf("session already stopped")}
	}

	c.machine.transition(StateStopping)
	c.engine.Stop(handle)

	c.machine.transition(StateFinalizing)
	return c.finalize(captureErr, wallDuration, cfg.OutputPath)
}

// countdown ticks once per second, printing remaining time. Returns true
// when cancelled.
func (c *Controller) countdown(ctx context.Context, seconds int) bool {
	c.machine.transition(StateCountdown)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for remaining := seconds; remaining > 0; remaining-- {
		fmt.Printf("Recording starts in %d...\n", remaining)
		select {
		case <-ctx.Done():
			return true
		case <-c.requests:
			return true
		case <-ticker.C:
		}
	}
	return false
}

// awaitStop blocks until the first stop trigger: duration timer expiry,
// cancellation, or an engine failure. Returns the engine failure, if that
// is what ended the session.
func (c *Controller) awaitStop(ctx context.Context, cfg *config.RecordingConfiguration, handle capture.Handle) error {
	var timerC <-chan time.Time
	if !cfg.IsContinuous() {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		timerC = timer.C
	}

	log := logger.WithComponent("session")
	for {
		select {
		case <-timerC:
			log.Info().Msg("Duration elapsed, stopping")
			return nil

		case err := <-handle.Failures():
			log.Error().Err(err).Msg("Capture failure, stopping")
			return err

		case <-ctx.Done():
			log.Info().Msg("Cancelled, stopping")
			return nil

		case req := <-c.requests:
			if cfg.IsContinuous() || req.confirmed {
				log.Info().Str("reason", req.reason).Msg("Stop requested, stopping")
				return nil
			}
			// A timed recording needs explicit confirmation so one stray
			// keystroke cannot truncate an intentional capture.
			stop, engineErr := c.confirmEarlyStop(ctx, timerC, handle)
			if engineErr != nil {
				log.Error().Err(engineErr).Msg("Capture failure, stopping")
				return engineErr
			}
			if stop {
				log.Info().Msg("Early stop confirmed, stopping")
				return nil
			}
		}
	}
}

// confirmEarlyStop waits for a second cancellation within the confirmation
// window. The duration timer and engine failures still win the race; an
// engine failure is returned so the session ends as failed, not completed.
func (c *Controller) confirmEarlyStop(ctx context.Context, timerC <-chan time.Time, handle capture.Handle) (bool, error) {
	fmt.Fprintf(os.Stderr, "Recording is timed; press Ctrl+C again within %v to stop early.\n", c.confirmWindow)

	deadline := time.NewTimer(c.confirmWindow)
	defer deadline.Stop()

	select {
	case <-c.requests:
		return true, nil
	case <-ctx.Done():
		return true, nil
	case <-timerC:
		return true, nil
	case err := <-handle.Failures():
		return true, err
	case <-deadline.C:
		fmt.Fprintln(os.Stderr, "Continuing recording.")
		return false, nil
	}
}

// finalize waits (bounded) for the sink to flush and close the artifact,
// preserving partial data on failure.
func (c *Controller) finalize(captureErr error, wallDuration time.Duration, expectedPath string) Result {
	log := logger.WithComponent("session")

	type finishOutcome struct {
		path  string
		bytes int64
		err   error
	}
	done := make(chan finishOutcome, 1)
	go func() {
		path, bytes, err := c.out.Finish()
		done <- finishOutcome{path: path, bytes: bytes, err: err}
	}()

	var outcome finishOutcome
	select {
	case outcome = <-done:
	case <-time.After(c.finalizeTimeout):
		c.machine.transition(StateFailed)
		return Result{
			Kind:        ResultFailed,
			Duration:    wallDuration,
			PartialPath: existingPath(expectedPath),
			Err:         fmt.Errorf("finalize timed out after %v", c.finalizeTimeout),
		}
	}

	if captureErr != nil {
		c.machine.transition(StateFailed)
		return Result{
			Kind:        ResultFailed,
			Duration:    wallDuration,
			PartialPath: outcome.path,
			Err:         captureErr,
		}
	}
	if outcome.err != nil {
		c.machine.transition(StateFailed)
		return Result{
			Kind:        ResultFailed,
			Duration:    wallDuration,
			PartialPath: outcome.path,
			Err:         fmt.Errorf("finalize failed: %w", outcome.err),
		}
	}

	c.machine.transition(StateCompleted)
	log.Info().
		Str("path", outcome.path).
		Int64("bytes", outcome.bytes).
		Dur("duration", wallDuration).
		Msg("Recording complete")

	return Result{
		Kind:       ResultCompleted,
		OutputPath: outcome.path,
		Bytes:      outcome.bytes,
		Duration:   wallDuration,
	}
}

// existingPath returns path when a file exists there, else "".
func existingPath(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
