package clients

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/config"
	"crosschain-hub/internal/metrics"

	"github.com/nats-io/nats.go"
)

// HubEventSubjects subjects captured by the hub event stream
var HubEventSubjects = []string{"hub.events.*"}

// NATSClient NATS client
type NATSClient struct {
	conn       *nats.Conn
	js         nats.JetStreamContext
	streamName string

	mu   sync.Mutex
	subs []*nats.Subscription
}

// NewNATSClient connects to NATS and prepares the hub event stream
func NewNATSClient(cfg config.NATSConfig) (*NATSClient, error) {
	connectTimeout := 10 * time.Second
	if cfg.Timeout > 0 {
		connectTimeout = time.Duration(cfg.Timeout) * time.Second
	}
	reconnectWait := 5 * time.Second
	if cfg.ReconnectWait > 0 {
		reconnectWait = time.Duration(cfg.ReconnectWait) * time.Second
	}
	log.Printf("🔌 Connecting to NATS %s (timeout: %v)", cfg.URL, connectTimeout)

	conn, err := nats.Connect(cfg.URL,
		nats.Name("crosschain-hub"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("⚠️ NATS disconnected: %v", err)
			metrics.NATSConnectionStatus.Set(0)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("✅ NATS reconnected to %s", nc.ConnectedUrl())
			metrics.NATSConnectionStatus.Set(1)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			metrics.NATSConnectionStatus.Set(0)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	metrics.NATSConnectionStatus.Set(1)

	client := &NATSClient{
		conn:       conn,
		streamName: cfg.EventStream,
	}

	if cfg.EnableJetStream {
		js, err := conn.JetStream()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		client.js = js
		if err := client.ensureStream(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	log.Printf("✅ NATS client connected")
	return client, nil
}

// ensureStream creates the hub event stream if it does not exist
func (c *NATSClient) ensureStream() error {
	if _, err := c.js.StreamInfo(c.streamName); err == nil {
		log.Printf("📦 JetStream stream %s already exists", c.streamName)
		return nil
	}

	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:       c.streamName,
		Subjects:   HubEventSubjects,
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", c.streamName, err)
	}

	log.Printf("📦 JetStream stream %s created", c.streamName)
	return nil
}

// Publish sends data on subject. With JetStream enabled msgID deduplicates
// redelivered notifications inside the stream's duplicate window.
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	if c.js == nil {
		if err := c.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("failed to publish %s: %w", subject, err)
		}
		return nil
	}
	if _, err := c.js.Publish(subject, data, nats.MsgId(msgID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// MessageHandler processes one inbound message. Request messages get
// "OK" or "ERR <code>" as the reply.
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Subscribe registers handler on subject as part of a queue group so
// several hub replicas share the work.
func (c *NATSClient) Subscribe(subject, queue string, handler MessageHandler) error {
	sub, err := c.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		metrics.NATSMessagesReceived.WithLabelValues(msg.Subject).Inc()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := c.dispatch(ctx, handler, msg); err != nil {
			metrics.NATSMessagesFailed.WithLabelValues(msg.Subject, string(apperrors.CodeOf(err))).Inc()
			log.Printf("❌ [NATS] Handler failed for %s: %v", msg.Subject, err)
			if msg.Reply != "" {
				_ = msg.Respond([]byte("ERR " + string(apperrors.CodeOf(err))))
			}
			return
		}
		metrics.NATSMessagesProcessed.WithLabelValues(msg.Subject).Inc()
		if msg.Reply != "" {
			_ = msg.Respond([]byte("OK"))
		}
	})
	if err != nil {
		metrics.NATSSubscriptionStatus.WithLabelValues(subject).Set(0)
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	metrics.NATSSubscriptionStatus.WithLabelValues(subject).Set(1)
	log.Printf("✅ NATS subscription active: %s (queue: %s)", subject, queue)
	return nil
}

func (c *NATSClient) dispatch(ctx context.Context, handler MessageHandler, msg *nats.Msg) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, msg.Subject, msg.Data)
}

// IsConnected reports whether the connection is up
func (c *NATSClient) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}

// Close drains subscriptions and closes the connection
func (c *NATSClient) Close() {
	c.mu.Lock()
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()

	if c.conn != nil {
		if err := c.conn.Drain(); err != nil {
			c.conn.Close()
		}
	}
	metrics.NATSConnectionStatus.Set(0)
}
