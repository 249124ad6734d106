package session

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reelcap/reelcap/internal/capture"
	"github.com/reelcap/reelcap/internal/config"
	"github.com/reelcap/reelcap/internal/sink"
)

type fakeHandle struct {
	failc chan error
}

func (h *fakeHandle) Failures() <-chan error {
	return h.failc
}

type fakeEngine struct {
	mu       sync.Mutex
	startErr error
	handle   *fakeHandle
	starts   int
	stops    int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{handle: &fakeHandle{failc: make(chan error, 1)}}
}

func (e *fakeEngine) Start(plan *capture.Plan, out sink.Sink) (capture.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.startErr != nil {
		return nil, e.startErr
	}
	e.starts++
	return e.handle, nil
}

func (e *fakeEngine) Stop(h capture.Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stops++
}

func (e *fakeEngine) counts() (starts, stops int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts, e.stops
}

type fakeSink struct {
	mu          sync.Mutex
	finishPath  string
	finishBytes int64
	finishErr   error
	finishDelay time.Duration
	finishes    int
}

func (s *fakeSink) ReadyForVideo() bool { return true }
func (s *fakeSink) ReadyForAudio() bool { return false }

func (s *fakeSink) AppendVideo(frame *image.RGBA, ts time.Duration) bool { return true }
func (s *fakeSink) AppendAudio(sample []byte, ts time.Duration) bool     { return false }

func (s *fakeSink) Finish() (string, int64, error) {
	if s.finishDelay > 0 {
		time.Sleep(s.finishDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finishes++
	return s.finishPath, s.finishBytes, s.finishErr
}

func (s *fakeSink) finishCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishes
}

func testPlan() *capture.Plan {
	return &capture.Plan{Mode: capture.ModeScreen, FPS: 30}
}

func testConfig(t *testing.T, duration time.Duration) *config.RecordingConfiguration {
	t.Helper()
	return &config.RecordingConfiguration{
		Duration:   duration,
		OutputPath: filepath.Join(t.TempDir(), "out.mjpeg"),
		Video:      config.VideoPolicy{FPS: 30, Quality: config.QualityMedium},
	}
}

// runAsync starts Run in a goroutine and returns the result channel plus a
// channel that closes once the session reaches the wanted state.
func runAsync(t *testing.T, c *Controller, cfg *config.RecordingConfiguration, plan *capture.Plan, await State) (<-chan Result, <-chan struct{}) {
	t.Helper()

	states := c.Subscribe()
	reached := make(chan struct{})
	go func() {
		for s := range states {
			if s == await {
				close(reached)
				return
			}
		}
	}()

	results := make(chan Result, 1)
	go func() {
		results <- c.Run(context.Background(), cfg, plan)
	}()
	return results, reached
}

func waitResult(t *testing.T, results <-chan Result) Result {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish in time")
		return Result{}
	}
}

func waitReached(t *testing.T, reached <-chan struct{}) {
	t.Helper()
	select {
	case <-reached:
	case <-time.After(5 * time.Second):
		t.Fatal("session never reached the awaited state")
	}
}

func TestRun_TimerExpiryCompletes(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg", finishBytes: 2048}
	c := New(engine, out)

	result := c.Run(context.Background(), testConfig(t, 150*time.Millisecond), testPlan())

	require.Equal(t, ResultCompleted, result.Kind)
	require.Equal(t, "out.mjpeg", result.OutputPath)
	require.Equal(t, int64(2048), result.Bytes)
	require.GreaterOrEqual(t, result.Duration, 150*time.Millisecond)
	require.Equal(t, StateCompleted, c.State())

	starts, stops := engine.counts()
	require.Equal(t, 1, starts)
	require.Equal(t, 1, stops)
	require.Equal(t, 1, out.finishCount())
}

func TestRun_CountdownCancelLeavesNoArtifact(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{}
	c := New(engine, out)

	cfg := testConfig(t, config.Continuous)
	cfg.CountdownSeconds = 30

	results, reached := runAsync(t, c, cfg, testPlan(), StateCountdown)
	waitReached(t, reached)
	c.Cancel()

	result := waitResult(t, results)
	require.Equal(t, ResultCancelled, result.Kind)
	require.Empty(t, result.OutputPath)
	require.Equal(t, StateCancelled, c.State(), "the observable state must report the cancellation")

	starts, _ := engine.counts()
	require.Zero(t, starts, "capture must not start after a countdown cancel")
	require.Zero(t, out.finishCount(), "nothing to finalize after a countdown cancel")
}

func TestRun_ContinuousCancelFinalizes(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg", finishBytes: 100}
	c := New(engine, out)

	results, reached := runAsync(t, c, testConfig(t, config.Continuous), testPlan(), StateCapturing)
	waitReached(t, reached)
	c.Cancel()

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind, "cancelling mid-capture keeps the recording so far")
	require.Equal(t, "out.mjpeg", result.OutputPath)
	require.Equal(t, 1, out.finishCount())
}

func TestRun_RepeatedCancelFinalizesOnce(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out)

	results, reached := runAsync(t, c, testConfig(t, config.Continuous), testPlan(), StateCapturing)
	waitReached(t, reached)
	for i := 0; i < 5; i++ {
		c.Cancel()
	}

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind)

	_, stops := engine.counts()
	require.Equal(t, 1, stops)
	require.Equal(t, 1, out.finishCount())
}

func TestRun_StartFailure(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	engine.startErr = errors.New("display gone")
	out := &fakeSink{}
	c := New(engine, out)

	result := c.Run(context.Background(), testConfig(t, config.Continuous), testPlan())

	require.Equal(t, ResultFailed, result.Kind)
	require.ErrorContains(t, result.Err, "display gone")
	require.Equal(t, StateFailed, c.State())
	require.Zero(t, out.finishCount())
}

func TestRun_CaptureFailurePreservesPartial(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "partial.mjpeg", finishBytes: 512}
	c := New(engine, out)

	results, reached := runAsync(t, c, testConfig(t, config.Continuous), testPlan(), StateCapturing)
	waitReached(t, reached)
	engine.handle.failc <- errors.New("grab failed")

	result := waitResult(t, results)
	require.Equal(t, ResultFailed, result.Kind)
	require.ErrorContains(t, result.Err, "grab failed")
	require.Equal(t, "partial.mjpeg", result.PartialPath, "the partial artifact must be reported")
	require.Equal(t, StateFailed, c.State())
	require.Equal(t, 1, out.finishCount(), "a failed session still flushes what it captured")
}

func TestRun_FinishErrorFails(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "partial.mjpeg", finishErr: errors.New("disk full")}
	c := New(engine, out)

	result := c.Run(context.Background(), testConfig(t, 100*time.Millisecond), testPlan())

	require.Equal(t, ResultFailed, result.Kind)
	require.ErrorContains(t, result.Err, "disk full")
	require.Equal(t, "partial.mjpeg", result.PartialPath)
}

func TestRun_FinalizeTimeout(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishDelay: 2 * time.Second}
	c := New(engine, out, WithFinalizeTimeout(100*time.Millisecond))

	result := c.Run(context.Background(), testConfig(t, 100*time.Millisecond), testPlan())

	require.Equal(t, ResultFailed, result.Kind)
	require.ErrorContains(t, result.Err, "timed out")
	require.Equal(t, StateFailed, c.State())
}

func TestRun_TimedRecordingIgnoresSingleCancel(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out, WithConfirmWindow(100*time.Millisecond))

	cfg := testConfig(t, 600*time.Millisecond)
	results, reached := runAsync(t, c, cfg, testPlan(), StateCapturing)
	waitReached(t, reached)

	started := time.Now()
	c.Cancel()

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind)
	require.GreaterOrEqual(t, time.Since(started), 500*time.Millisecond,
		"one unconfirmed signal must not truncate a timed recording")
}

func TestRun_TimedRecordingStopsOnSecondCancel(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out, WithConfirmWindow(2*time.Second))

	cfg := testConfig(t, 10*time.Second)
	results, reached := runAsync(t, c, cfg, testPlan(), StateCapturing)
	waitReached(t, reached)

	c.Cancel()
	time.Sleep(50 * time.Millisecond)
	c.Cancel()

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind)
	require.Less(t, result.Duration, 5*time.Second)
}

func TestRun_EngineFailureDuringConfirmWindowFails(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "partial.mjpeg", finishBytes: 256}
	c := New(engine, out, WithConfirmWindow(5*time.Second))

	cfg := testConfig(t, 30*time.Second)
	results, reached := runAsync(t, c, cfg, testPlan(), StateCapturing)
	waitReached(t, reached)

	// One unconfirmed signal opens the confirmation window; the engine
	// failure arriving inside it must still fail the session.
	c.Cancel()
	time.Sleep(100 * time.Millisecond)
	engine.handle.failc <- errors.New("grab failed")

	result := waitResult(t, results)
	require.Equal(t, ResultFailed, result.Kind)
	require.ErrorContains(t, result.Err, "grab failed")
	require.Equal(t, "partial.mjpeg", result.PartialPath)
	require.Equal(t, StateFailed, c.State())
}

func TestRun_RequestStopSkipsConfirmation(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out, WithConfirmWindow(10*time.Second))

	cfg := testConfig(t, 10*time.Second)
	results, reached := runAsync(t, c, cfg, testPlan(), StateCapturing)
	waitReached(t, reached)

	c.RequestStop("api")

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind)
	require.Less(t, result.Duration, 5*time.Second)
}

func TestRun_ContextCancellation(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out)

	ctx, cancel := context.WithCancel(context.Background())
	states := c.Subscribe()
	reached := make(chan struct{})
	go func() {
		for s := range states {
			if s == StateCapturing {
				close(reached)
				return
			}
		}
	}()

	results := make(chan Result, 1)
	go func() {
		results <- c.Run(ctx, testConfig(t, config.Continuous), testPlan())
	}()

	waitReached(t, reached)
	cancel()

	result := waitResult(t, results)
	require.Equal(t, ResultCompleted, result.Kind)
}

func TestCancel_OutsideActivePhasesIsNoOp(t *testing.T) {
	t.Parallel()

	c := New(newFakeEngine(), &fakeSink{})
	c.Cancel()
	c.RequestStop("api")
	require.Len(t, c.requests, 0)
}

func TestStateTerminal(t *testing.T) {
	t.Parallel()

	require.True(t, StateCompleted.Terminal())
	require.True(t, StateCancelled.Terminal())
	require.True(t, StateFailed.Terminal())
	require.False(t, StateIdle.Terminal())
	require.False(t, StateCountdown.Terminal())
	require.False(t, StateCapturing.Terminal())
	require.False(t, StateStopping.Terminal())
	require.False(t, StateFinalizing.Terminal())
}

func TestSubscribe_SeesLifecycle(t *testing.T) {
	t.Parallel()

	engine := newFakeEngine()
	out := &fakeSink{finishPath: "out.mjpeg"}
	c := New(engine, out)

	states := c.Subscribe()
	defer c.Unsubscribe(states)

	go c.Run(context.Background(), testConfig(t, 100*time.Millisecond), testPlan())

	var seen []State
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			seen = append(seen, s)
			if s == StateCompleted || s == StateFailed {
				require.Equal(t, []State{
					StateIdle, StateCapturing, StateStopping, StateFinalizing, StateCompleted,
				}, seen)
				return
			}
		case <-deadline:
			t.Fatal("never saw a terminal state")
		}
	}
}
