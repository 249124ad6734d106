package capture

import (
	"github.com/reelcap/reelcap/internal/sink"
)

// Handle identifies one running capture session.
type Handle interface {
	// Failures delivers at most one engine-level failure for the session.
	Failures() <-chan error
}

// Engine is the capture backend contract. Start launches the sample
// producers; they append to the sink directly from their own goroutines.
// Stop is idempotent: stopping an already-stopped handle is a safe no-op.
type Engine interface {
	Start(plan *Plan, out sink.Sink) (Handle, error)
	Stop(h Handle)
}
