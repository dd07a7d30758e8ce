// Package audio is the contract with the networked playback endpoint.
package audio

import "context"

// PlaybackState is the endpoint's transport state.
type PlaybackState string

const (
	Playing PlaybackState = "playing"
	Paused  PlaybackState = "paused"
	Stopped PlaybackState = "stopped"
	Unknown PlaybackState = "unknown"
)

// Endpoint controls playback on one zone.
type Endpoint interface {
	State(ctx context.Context) (PlaybackState, error)
	// Volume is reported as a JSON number; it is not guaranteed integral.
	Volume(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, v int) error
	TogglePlayback(ctx context.Context) error
}
