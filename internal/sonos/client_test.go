package sonos

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
)

// recorder keeps the escaped request paths seen by the bridge.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(p string) {
	r.mu.Lock()
	r.paths = append(r.paths, p)
	r.mu.Unlock()
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func newBridge(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL.EscapedPath())
		switch r.URL.Path {
		case "/Living Room/state":
			w.Write([]byte(`{"volume": 37, "mute": false, "playbackState": "PAUSED_PLAYBACK"}`))
		case "/Living Room/playpause", "/Living Room/volume/55":
			w.Write([]byte(`{"status":"success"}`))
		default:
			http.Error(w, "no such room", http.StatusNotFound)
		}
	}))
}

func TestClientCommands(t *testing.T) {
	rec := &recorder{}
	srv := newBridge(t, rec)
	defer srv.Close()

	c := New(srv.URL+"/", "Living Room", time.Second)
	ctx := context.Background()

	st, err := c.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, audio.Paused, st)

	v, err := c.Volume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 37.0, v)

	require.NoError(t, c.SetVolume(ctx, 55))
	require.NoError(t, c.TogglePlayback(ctx))

	assert.Equal(t, []string{
		"/Living%20Room/state",
		"/Living%20Room/state",
		"/Living%20Room/volume/55",
		"/Living%20Room/playpause",
	}, rec.all())
}

func TestClientErrors(t *testing.T) {
	rec := &recorder{}
	srv := newBridge(t, rec)
	defer srv.Close()

	c := New(srv.URL, "Kitchen", time.Second)
	_, err := c.State(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Status)

	assert.Error(t, c.SetVolume(context.Background(), 101))
	assert.Len(t, rec.all(), 1, "out of range volume never hits the bridge")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(srv.URL, "Living Room", time.Second).Volume(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePlaybackState(t *testing.T) {
	assert.Equal(t, audio.Playing, ParsePlaybackState("PLAYING"))
	assert.Equal(t, audio.Paused, ParsePlaybackState("paused_playback"))
	assert.Equal(t, audio.Stopped, ParsePlaybackState("STOPPED"))
	assert.Equal(t, audio.Unknown, ParsePlaybackState(""))
}
