package api

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reelcap/reelcap/internal/capture"
	"github.com/reelcap/reelcap/internal/preset"
	"github.com/reelcap/reelcap/internal/session"
	"github.com/reelcap/reelcap/internal/sink"
)

type nullHandle struct{}

func (nullHandle) Failures() <-chan error { return nil }

type nullEngine struct{}

func (nullEngine) Start(plan *capture.Plan, out sink.Sink) (capture.Handle, error) {
	return nullHandle{}, nil
}
func (nullEngine) Stop(h capture.Handle) {}

type nullSink struct{}

func (nullSink) ReadyForVideo() bool                                      { return true }
func (nullSink) ReadyForAudio() bool                                      { return false }
func (nullSink) AppendVideo(frame *image.RGBA, ts time.Duration) bool     { return true }
func (nullSink) AppendAudio(sample []byte, ts time.Duration) bool         { return false }
func (nullSink) Finish() (string, int64, error)                           { return "", 0, nil }

func newTestServer(t *testing.T) (*Server, *preset.FileStore) {
	t.Helper()
	store, err := preset.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctrl := session.New(nullEngine{}, nullSink{})
	return NewServer(ctrl, store), store
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestServer_SessionState(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "idle", body["state"])
}

func TestServer_StopAccepted(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/stop", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestServer_StopRequiresPost(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session/stop", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Presets(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t)
	require.NoError(t, store.Save(&preset.Record{Name: "demo", FPS: 30}))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var records []preset.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	require.Equal(t, "demo", records[0].Name)
}
