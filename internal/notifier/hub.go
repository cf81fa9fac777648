package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"evote/internal/domain"
	"evote/pkg/redis"

	"go.uber.org/zap"
)

// subscriberBuffer is the per-observer queue depth. An observer that falls
// this far behind starts losing updates instead of blocking the fan-out.
const subscriberBuffer = 8

// Hub is the live notifier. Publish puts a tally update on the Redis
// Pub/Sub channel; a single per-process subscription receives updates
// (from any process) and fans them out to locally attached observers.
// Without Redis the hub degrades to in-process fan-out only.
//
// Delivery is best-effort: no persistence, no cross-observer ordering
// guarantee, and observers may join or leave regardless of voting state.
type Hub struct {
	redis  *redis.Client
	logger *zap.Logger

	mu   sync.Mutex
	subs map[chan []byte]struct{}

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		redis:  redisClient,
		logger: logger,
		subs:   make(map[chan []byte]struct{}),
	}
}

// Publish sends a tally update to all observers, everywhere.
func (h *Hub) Publish(ctx context.Context, tally domain.Tally) error {
	payload, err := json.Marshal(tally)
	if err != nil {
		return fmt.Errorf("failed to encode tally: %w", err)
	}

	if h.redis == nil {
		h.broadcast(payload)
		return nil
	}

	return h.redis.Publish(ctx, redis.ChannelTally, payload)
}

// Start begins consuming the Pub/Sub channel. No-op without Redis.
func (h *Hub) Start(ctx context.Context) error {
	if h.redis == nil {
		h.logger.Info("notifier hub running without redis, local fan-out only")
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})

	pubsub := h.redis.Subscribe(runCtx, redis.ChannelTally)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to tally channel: %w", err)
	}

	go func() {
		defer close(h.done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				h.broadcast([]byte(msg.Payload))
			}
		}
	}()

	h.logger.Info("notifier hub started")
	return nil
}

// Stop shuts down the Pub/Sub consumer and detaches all observers.
func (h *Hub) Stop(ctx context.Context) error {
	if h.cancel != nil {
		h.cancel()
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h.mu.Lock()
	for sub := range h.subs {
		close(sub)
		delete(h.subs, sub)
	}
	h.mu.Unlock()

	h.logger.Info("notifier hub stopped")
	return nil
}

// Attach registers a local observer. The returned channel yields raw JSON
// tally payloads; detach must be called when the observer disconnects.
func (h *Hub) Attach() (<-chan []byte, func()) {
	sub := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	detach := func() {
		h.mu.Lock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub)
		}
		h.mu.Unlock()
	}

	return sub, detach
}

// SubscriberCount returns the number of attached observers.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		select {
		case sub <- payload:
		default:
			// Observer is not keeping up; drop this update for it.
		}
	}
}
