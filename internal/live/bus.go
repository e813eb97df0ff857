package live

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const topicPrefix = "mock_interview"

// event kinds
const (
	InterviewCreated = "interview.created"
	InterviewUpdated = "interview.updated"
	InterviewDeleted = "interview.deleted"
	AnswerUpserted   = "answer.upserted"
)

// Event tells subscribers that the data behind a view changed.
type Event struct {
	Kind        string    `json:"kind"`
	OwnerID     string    `json:"ownerId"`
	InterviewID string    `json:"interviewId,omitempty"`
	At          time.Time `json:"at"`
}

// Publisher announces changes; the services only depend on this.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

func InterviewsTopic(ownerID string) string {
	return fmt.Sprintf("%s:interviews:%s", topicPrefix, ownerID)
}

func AnswersTopic(ownerID, interviewID string) string {
	return fmt.Sprintf("%s:answers:%s:%s", topicPrefix, ownerID, interviewID)
}

// Bus is a Redis pub/sub backed Publisher with per-topic subscriptions.
type Bus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewBus(rdb *redis.Client, logger *zap.Logger) *Bus {
	return &Bus{rdb: rdb, logger: logger}
}

func (b *Bus) Publish(ctx context.Context, topic string, event Event) error {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode live event: %w", err)
	}
	if err := b.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection; open subscriptions end with it.
func (b *Bus) Close() error {
	return b.rdb.Close()
}

// Subscription delivers events for one topic until closed or ctx ends.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
}

// Subscribe returns once Redis has confirmed the subscription, so no event
// published afterwards can be missed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &Subscription{pubsub: pubsub, events: make(chan Event, 16)}
	go sub.forward(ctx, b.logger)
	return sub, nil
}

func (s *Subscription) forward(ctx context.Context, logger *zap.Logger) {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn("Dropping malformed live event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case s.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Events is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
