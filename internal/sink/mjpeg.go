package sink

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/reelcap/reelcap/internal/logger"
)

// MJPEGFile writes captured frames as a Motion-JPEG file: concatenated JPEG
// images at the session frame rate. The file is created lazily on the first
// frame so a session cancelled before capture leaves nothing behind.
type MJPEGFile struct {
	path    string
	width   int
	height  int
	quality int

	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	scaleBuf *image.RGBA
	frames   uint64
	finished bool

	audioWarned bool
}

// NewMJPEGFile creates an MJPEG sink targeting path, scaling every frame to
// width x height with the given JPEG quality.
func NewMJPEGFile(path string, width, height, quality int) *MJPEGFile {
	return &MJPEGFile{
		path:    path,
		width:   width,
		height:  height,
		quality: quality,
	}
}

// ReadyForVideo reports whether the sink still accepts frames.
func (m *MJPEGFile) ReadyForVideo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.finished
}

// ReadyForAudio always reports false: the MJPEG container carries no audio
// track. Sessions with audio enabled degrade to video-only with a warning.
func (m *MJPEGFile) ReadyForAudio() bool {
	return false
}

// AppendVideo encodes one frame into the file, scaling when the source size
// differs from the output size.
func (m *MJPEGFile) AppendVideo(frame *image.RGBA, ts time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished {
		return false
	}

	if m.file == nil {
		file, err := os.Create(m.path)
		if err != nil {
			logger.WithComponent("sink").Error().
				Err(err).
				Str("path", m.path).
				Msg("Failed to create output file")
			return false
		}
		m.file = file
		m.writer = bufio.NewWriterSize(file, 1<<20)
		logger.WithComponent("sink").Info().
			Str("path", m.path).
			Int("width", m.width).
			Int("height", m.height).
			Msg("Output file opened")
	}

	img := m.scale(frame)
	if err := jpeg.Encode(m.writer, img, &jpeg.Options{Quality: m.quality}); err != nil {
		logger.WithComponent("sink").Error().
			Err(err).
			Dur("ts", ts).
			Msg("Failed to encode frame")
		return false
	}

	m.frames++
	return true
}

// AppendAudio refuses all samples; MJPEG has no audio track.
func (m *MJPEGFile) AppendAudio(sample []byte, ts time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.audioWarned {
		m.audioWarned = true
		logger.WithComponent("sink").Warn().
			Msg("MJPEG output carries no audio track; audio samples are discarded")
	}
	return false
}

// scale resizes the frame to the output size, reusing the scale buffer.
func (m *MJPEGFile) scale(frame *image.RGBA) *image.RGBA {
	bounds := frame.Bounds()
	if bounds.Dx() == m.width && bounds.Dy() == m.height {
		return frame
	}
	if m.scaleBuf == nil {
		m.scaleBuf = image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	}
	xdraw.ApproxBiLinear.Scale(m.scaleBuf, m.scaleBuf.Bounds(), frame, bounds, xdraw.Src, nil)
	return m.scaleBuf
}

// Finish flushes and closes the artifact. A sink that never received a
// frame reports no artifact (empty path, zero bytes).
func (m *MJPEGFile) Finish() (string, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.finished {
		return m.finishedResult()
	}
	m.finished = true

	if m.file == nil {
		return "", 0, nil
	}

	var firstErr error
	if err := m.writer.Flush(); err != nil {
		firstErr = fmt.Errorf("failed to flush output: %w", err)
	}
	if err := m.file.Sync(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to sync output: %w", err)
	}
	if err := m.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close output: %w", err)
	}

	path, size, _ := m.finishedResult()
	logger.WithComponent("sink").Info().
		Str("path", path).
		Int64("bytes", size).
		Uint64("frames", m.frames).
		Msg("Output finalized")

	return path, size, firstErr
}

// finishedResult reports the artifact path and on-disk size, or nothing when
// no frame was ever written.
func (m *MJPEGFile) finishedResult() (string, int64, error) {
	if m.file == nil {
		return "", 0, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return m.path, 0, nil
	}
	return m.path, info.Size(), nil
}
