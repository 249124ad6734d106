// Package sink receives captured samples and writes the durable output
// artifact.
package sink

import (
	"image"
	"time"
)

// Sink is the media output contract. Append calls may arrive concurrently
// from independent video and audio producers; a sample is either accepted
// immediately or refused (returning false), never blocked on.
type Sink interface {
	// ReadyForVideo reports whether the sink currently accepts video.
	ReadyForVideo() bool

	// ReadyForAudio reports whether the sink currently accepts audio.
	ReadyForAudio() bool

	// AppendVideo writes one frame stamped relative to the video stream's
	// first sample. Returns false if the frame was refused.
	AppendVideo(frame *image.RGBA, ts time.Duration) bool

	// AppendAudio writes one audio sample buffer. Returns false if the
	// sample was refused.
	AppendAudio(sample []byte, ts time.Duration) bool

	// Finish stops accepting input, flushes everything written so far and
	// closes the artifact, returning its path and byte size. Data already
	// flushed survives even when Finish reports an error.
	Finish() (path string, bytes int64, err error)
}
