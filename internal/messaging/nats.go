package messaging

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"

	"busline/internal/logger"
)

type NATSClient struct {
	conn     stan.Conn
	clientID string
}

type Config struct {
	URL       string
	ClusterID string
	ClientID  string
}

// ClientIDFor makes the configured client id unique per process so that two
// replicas never collide in the streaming cluster.
func ClientIDFor(base string) string {
	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8])
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	clientID := ClientIDFor(cfg.ClientID)

	conn, err := stan.Connect(cfg.ClusterID, clientID,
		stan.NatsURL(cfg.URL),
		stan.ConnectWait(5*time.Second),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			logger.Get().Error("NATS Streaming connection lost", "error", reason, "client_id", clientID)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	logger.Get().Info("Connected to NATS Streaming",
		"url", cfg.URL,
		"cluster_id", cfg.ClusterID,
		"client_id", clientID)

	return &NATSClient{conn: conn, clientID: clientID}, nil
}

// NewWithConn wraps an existing streaming connection.
func NewWithConn(conn stan.Conn) *NATSClient {
	return &NATSClient{conn: conn}
}

// Publish sends data as JSON.
func (nc *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	logger.WithFields("subject", subject, "size", len(payload)).Debug("Published message")
	return nil
}

// SubscribeQueue joins a durable queue group with manual acks, one message
// in flight per member.
func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue+"-durable"),
		stan.SetManualAckMode(),
		stan.AckWait(30*time.Second),
		stan.MaxInflight(1))
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	logger.WithFields("subject", subject, "queue", queue).Info("Subscribed to subject")
	return sub, nil
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
