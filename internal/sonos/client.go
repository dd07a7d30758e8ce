// Package sonos talks to a node-sonos-http-api bridge, which exposes every
// zone command as a GET under /{room}/...
package sonos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/coreman2200/funtimes-nuimo/internal/audio"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sonos %s: status %d: %s", e.Path, e.Status, e.Body)
}

// ZoneState is the subset of /{room}/state we read.
type ZoneState struct {
	Volume        float64 `json:"volume"`
	Mute          bool    `json:"mute"`
	PlaybackState string  `json:"playbackState"`
}

// Client controls one room.
type Client struct {
	BaseURL string
	Room    string
	HTTP    *http.Client
}

var _ audio.Endpoint = (*Client)(nil)

func New(baseURL, room string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Room:    room,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) get(ctx context.Context, parts []string, out any) error {
	segs := make([]string, 0, len(parts)+1)
	segs = append(segs, url.PathEscape(c.Room))
	for _, p := range parts {
		segs = append(segs, url.PathEscape(p))
	}
	path := "/" + strings.Join(segs, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("sonos %s: %w", path, err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("sonos %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Path: path, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sonos %s: decode: %w", path, err)
	}
	return nil
}

// Zone fetches the raw zone state.
func (c *Client) Zone(ctx context.Context) (ZoneState, error) {
	var zs ZoneState
	err := c.get(ctx, []string{"state"}, &zs)
	return zs, err
}

func (c *Client) State(ctx context.Context) (audio.PlaybackState, error) {
	zs, err := c.Zone(ctx)
	if err != nil {
		return audio.Unknown, err
	}
	return ParsePlaybackState(zs.PlaybackState), nil
}

func (c *Client) Volume(ctx context.Context) (float64, error) {
	zs, err := c.Zone(ctx)
	if err != nil {
		return 0, err
	}
	return zs.Volume, nil
}

func (c *Client) SetVolume(ctx context.Context, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("sonos: volume %d outside [0, 100]", v)
	}
	return c.get(ctx, []string{"volume", strconv.Itoa(v)}, nil)
}

func (c *Client) TogglePlayback(ctx context.Context) error {
	return c.get(ctx, []string{"playpause"}, nil)
}

// ParsePlaybackState maps the bridge's UPnP transport states.
func ParsePlaybackState(s string) audio.PlaybackState {
	switch strings.ToUpper(s) {
	case "PLAYING", "TRANSITIONING":
		return audio.Playing
	case "PAUSED_PLAYBACK", "PAUSED":
		return audio.Paused
	case "STOPPED":
		return audio.Stopped
	default:
		return audio.Unknown
	}
}
