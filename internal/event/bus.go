// Package event is the in-process pub/sub used for auth-state and
// agent-state notifications. It runs on watermill's gochannel.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"vacai/internal/domain/models"
	"vacai/internal/logging"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Topic string

const (
	// AuthState carries AuthChange payloads.
	AuthState Topic = "auth.state"
	// AgentState carries AgentStateChange payloads.
	AgentState Topic = "agent.state"
)

// Event is what subscribers receive. Key identifies the subject (a user UID).
type Event struct {
	Topic Topic           `json:"topic"`
	Key   string          `json:"key"`
	Data  json.RawMessage `json:"data"`
}

// Decode unmarshals the payload into dst.
func (e Event) Decode(dst any) error {
	return json.Unmarshal(e.Data, dst)
}

type AuthChange struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	SignedIn bool   `json:"signedIn"`
}

// AgentStateChange is published after every accepted replacement of an
// agent's shared state. Key is the owning user's UID.
type AgentStateChange struct {
	UID       string            `json:"uid"`
	Agent     string            `json:"agent"`
	Version   int64             `json:"version"`
	Origin    string            `json:"origin"`
	State     models.AgentState `json:"state"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

var ErrClosed = errors.New("event bus closed")

type Bus struct {
	mu     sync.RWMutex
	pubsub *gochannel.GoChannel
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 64,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		done: make(chan struct{}),
	}
}

// Publish delivers payload to current subscribers of topic. Subscribers that
// join later do not see it.
func (b *Bus) Publish(topic Topic, key string, payload any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	body, err := json.Marshal(Event{Topic: topic, Key: key, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("key", key)
	return b.pubsub.Publish(string(topic), msg)
}

// Subscribe returns a channel of events for topic and a function that ends
// the subscription. The channel is closed after unsubscribe, after ctx is
// done or after the bus is closed. Unsubscribe is idempotent.
func (b *Bus) Subscribe(ctx context.Context, topic Topic) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, func() {}, ErrClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	messages, err := b.pubsub.Subscribe(subCtx, string(topic))
	if err != nil {
		cancel()
		return nil, func() {}, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	out := make(chan Event, 16)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(out)
		for msg := range messages {
			var ev Event
			err := json.Unmarshal(msg.Payload, &ev)
			msg.Ack()
			if err != nil {
				logging.Warn().Err(err).Str("topic", string(topic)).Msg("dropping malformed event")
				continue
			}
			select {
			case out <- ev:
			case <-subCtx.Done():
				return
			case <-b.done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(cancel) }, nil
}

// Close ends every subscription and waits for the forwarding goroutines.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
