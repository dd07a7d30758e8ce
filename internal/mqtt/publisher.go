// Package mqtt publishes controller events as JSON to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	mqtt "github.com/soypat/natiu-mqtt"
)

const DefaultTimeout = 5 * time.Second

var (
	ErrNotConnected = errors.New("mqtt: not connected")
	errClosing      = errors.New("mqtt: publisher closed")
)

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// DialFunc opens the transport to the broker.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Publisher holds at most one broker session. A failed publish drops the
// session and the next publish dials again.
type Publisher struct {
	Addr     string
	ClientID string
	Topic    string
	Timeout  time.Duration
	Dial     DialFunc
	Log      zerolog.Logger

	mu       sync.Mutex
	conn     net.Conn
	client   *mqtt.Client
	packetID uint16
}

func New(addr, clientID, topic string, log zerolog.Logger) *Publisher {
	return &Publisher{Addr: addr, ClientID: clientID, Topic: topic, Timeout: DefaultTimeout, Log: log}
}

func (p *Publisher) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

// Connect dials the broker and waits for CONNACK.
func (p *Publisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked(ctx)
}

func (p *Publisher) connectLocked(ctx context.Context) error {
	if p.client != nil && p.client.IsConnected() {
		return nil
	}
	p.dropLocked(nil)
	if p.Topic == "" {
		return errors.New("mqtt: empty topic")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	dial := p.Dial
	if dial == nil {
		var d net.Dialer
		dial = d.DialContext
	}
	conn, err := dial(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("mqtt dial %s: %w", p.Addr, err)
	}
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 4096)},
		OnPub: func(_ mqtt.Header, vp mqtt.VariablesPublish, r io.Reader) error {
			p.Log.Debug().Str("topic", string(vp.TopicName)).Msg("mqtt message ignored")
			return nil
		},
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(p.ClientID))

	if err := client.StartConnect(conn, &varconn); err != nil {
		conn.Close()
		return fmt.Errorf("mqtt connect: %w", err)
	}
	for !client.IsConnected() {
		if ctx.Err() != nil {
			conn.Close()
			if cerr := client.Err(); cerr != nil {
				return fmt.Errorf("mqtt connect: %w", cerr)
			}
			return fmt.Errorf("mqtt connect: %w", ctx.Err())
		}
		if err := client.HandleNext(); err != nil {
			p.Log.Debug().Err(err).Msg("mqtt handle next")
			time.Sleep(10 * time.Millisecond)
		}
	}
	p.conn = conn
	p.client = client
	p.Log.Info().Str("addr", p.Addr).Str("topic", p.Topic).Msg("mqtt connected")
	return nil
}

func (p *Publisher) dropLocked(reason error) {
	if p.client != nil && p.client.IsConnected() {
		if reason == nil {
			reason = errClosing
		}
		_ = p.client.Disconnect(reason)
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn = nil
	p.client = nil
}

// Connected reports whether a broker session is up.
func (p *Publisher) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client != nil && p.client.IsConnected()
}

// Publish sends payload on the publisher topic, reconnecting first when
// needed.
func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(ctx); err != nil {
		return err
	}
	p.packetID++
	_ = p.conn.SetDeadline(time.Now().Add(p.timeout()))
	err := p.client.PublishPayload(pubFlags, mqtt.VariablesPublish{
		TopicName:        []byte(p.Topic),
		PacketIdentifier: p.packetID,
	}, payload)
	if err != nil {
		p.dropLocked(err)
		return fmt.Errorf("mqtt publish: %w", err)
	}
	return nil
}

// PublishJSON marshals v and publishes it.
func (p *Publisher) PublishJSON(ctx context.Context, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("mqtt marshal: %w", err)
	}
	return p.Publish(ctx, payload)
}

// Run publishes everything received on events until ctx ends or events is
// closed. Failures are logged and the event dropped.
func (p *Publisher) Run(ctx context.Context, events <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := p.PublishJSON(ctx, ev); err != nil {
				p.Log.Warn().Err(err).Msg("mqtt publish failed")
			}
		}
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropLocked(nil)
	return nil
}
