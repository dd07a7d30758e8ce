package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-nuimo/internal/glyph"
	"github.com/coreman2200/funtimes-nuimo/internal/render"
)

func TestFramesBroadcast(t *testing.T) {
	s := NewState(zerolog.Nop())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	require.NoError(t, s.Render(glyph.Play, render.Centered(render.CrossFade)))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, uint64(1), f.FrameID)
	assert.Equal(t, glyph.Play.Rows(), f.Rows)
	assert.Equal(t, "crossfade", f.Transition)

	two, _ := glyph.Number(42)
	require.NoError(t, s.Render(two, render.Options{Composition: render.Invert, Brightness: render.Brightness(0.3)}))
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, uint64(2), f.FrameID)
	require.Len(t, f.Rows, 9)
	assert.Len(t, f.Rows[0], 9)
	assert.True(t, f.Invert)
	require.NotNil(t, f.Brightness)
	assert.Equal(t, 0.3, *f.Brightness)
}

func TestHealth(t *testing.T) {
	s := NewState(zerolog.Nop())
	require.NoError(t, s.Render(glyph.Pause, render.Options{}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["frame_id"])
	assert.Equal(t, float64(0), body["clients"])
}

func TestRenderRejectsOversize(t *testing.T) {
	s := NewState(zerolog.Nop())
	wide := glyph.MustFromRows(strings.Repeat("*", 10))
	assert.ErrorIs(t, s.Render(wide, render.Options{}), glyph.ErrDimension)
}

func TestRenderDoesNotWaitOnSlowClients(t *testing.T) {
	s := NewState(zerolog.Nop())
	stuck := &client{send: make(chan *Frame, 1)}
	stuck.send <- &Frame{}
	s.clients[stuck] = struct{}{}

	done := make(chan error, 1)
	go func() { done <- s.Render(glyph.Play, render.Options{}) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Render blocked on a client that never reads")
	}

	rec := httptest.NewRecorder()
	s.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["dropped"])
	assert.Equal(t, float64(1), body["clients"])

	s.remove(stuck)
	_, open := <-stuck.send
	assert.True(t, open, "queued frame still readable")
	_, open = <-stuck.send
	assert.False(t, open)
}
