package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriterSetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	_, err := NewWriter(rec)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
}

func TestWriteJSONFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	err = w.WriteJSON(context.Background(), map[string]any{"type": "token", "content": "hi"})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"content":"hi","type":"token"}`)
	assert.True(t, rec.Flushed)
}

func TestWriteJSONCancelledContext(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewWriter(rec)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.WriteJSON(ctx, map[string]any{"type": "token"})
	require.Error(t, err)
	assert.Empty(t, rec.Body.String())
}

func TestNewWriterRequiresFlusher(t *testing.T) {
	// nonFlushable hides the recorder's Flush method.
	_, err := NewWriter(nonFlushable{httptest.NewRecorder()})
	require.Error(t, err)
}

type nonFlushable struct{ rec *httptest.ResponseRecorder }

func (n nonFlushable) Header() http.Header        { return n.rec.Header() }
func (n nonFlushable) Write(b []byte) (int, error) { return n.rec.Write(b) }
func (n nonFlushable) WriteHeader(code int)        { n.rec.WriteHeader(code) }
