package natsrelay

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// Relay mirrors progress events to a NATS subject. Delivery is fire and
// forget: core NATS publish is at-most-once, the same contract the
// in-process hub gives its observers (no queue, no replay).
type Relay struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
}

func New(url, subject string, logger *slog.Logger) (*Relay, error) {
	return NewWithOptions(url, subject, logger, Options{})
}

func NewWithOptions(url, subject string, logger *slog.Logger, options Options) (*Relay, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docan"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Relay{conn: conn, subject: subject, logger: logger}, nil
}

// Publish implements progress.EventSink.
func (r *Relay) Publish(event domain.ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("encode progress event", "error", err)
		return
	}
	if err := r.conn.Publish(r.subject, payload); err != nil {
		r.logger.Warn("relay progress event", "subject", r.subject, "error", err)
	}
}

func (r *Relay) Close() {
	if r.conn != nil {
		r.conn.Close()
	}
}
