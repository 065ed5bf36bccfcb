// Package notify delivers fire-and-forget creation notices. The caller
// never waits: notices go into a buffered channel, a single worker pushes
// them onto a Redis queue for the out-of-band mailer and fans them out to
// the live event hub. A full channel drops the notice with a warning.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"kedoo/logger"
	"kedoo/model"
)

// Broadcaster fans an event out to live listeners (the admin feed).
type Broadcaster interface {
	Broadcast(v interface{})
}

// QueueNotifier queues notices on Redis for later mailbox delivery.
type QueueNotifier struct {
	client  *redis.Client
	queue   string
	mailbox string
	hub     Broadcaster

	events chan model.Event
	done   chan struct{}
}

// NewQueueNotifier creates and starts a notifier. client and hub may be
// nil; whatever side channel is missing is simply skipped.
func NewQueueNotifier(client *redis.Client, queue, mailbox string, hub Broadcaster) *QueueNotifier {
	n := &QueueNotifier{
		client:  client,
		queue:   queue,
		mailbox: mailbox,
		hub:     hub,
		events:  make(chan model.Event, 64),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

// Notify enqueues a notice and returns immediately.
func (n *QueueNotifier) Notify(kind model.EventKind, payload map[string]interface{}) {
	event := model.Event{
		Kind:      kind,
		Mailbox:   n.mailbox,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	select {
	case n.events <- event:
	default:
		// Better to drop a notice than to block a state transition.
		logger.Warn("notifier queue full, dropping event", logger.String("kind", string(kind)))
	}
}

// Close stops the worker after draining queued events.
func (n *QueueNotifier) Close() {
	close(n.events)
	<-n.done
}

func (n *QueueNotifier) run() {
	defer close(n.done)
	for event := range n.events {
		n.deliver(event)
	}
}

func (n *QueueNotifier) deliver(event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("failed to encode notifier event", logger.ErrorField(err))
		return
	}

	if n.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.client.LPush(ctx, n.queue, data).Err(); err != nil {
			logger.Warn("failed to queue notifier event",
				logger.String("kind", string(event.Kind)),
				logger.ErrorField(err))
		}
		cancel()
	}

	if n.hub != nil {
		n.hub.Broadcast(event)
	}

	logger.Info("notification dispatched",
		logger.String("kind", string(event.Kind)),
		logger.String("mailbox", event.Mailbox))
}
