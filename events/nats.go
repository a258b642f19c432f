// Package events publishes tournament results to the NATS bus.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// msgConn is the part of *nats.Conn the publisher needs.
type msgConn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
}

type NATSPublisher struct {
	conn    msgConn
	subject string
	logger  *slog.Logger
	close   func()
}

// Connect dials the server and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if url == "" || subject == "" {
		return nil, errors.New("nats url and subject are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("padel-circuit"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.Any("error", err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	p := newPublisher(nc, subject, logger)
	p.close = nc.Close
	return p, nil
}

func newPublisher(conn msgConn, subject string, logger *slog.Logger) *NATSPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSPublisher{conn: conn, subject: subject, logger: logger, close: func() {}}
}

// Publish sends body with a Nats-Msg-Id header so JetStream streams drop redeliveries of
// the same closure.
func (p *NATSPublisher) Publish(ctx context.Context, msgID string, body []byte) error {
	msg := nats.NewMsg(p.subject)
	msg.Header.Set(nats.MsgIdHdr, msgID)
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = body

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	p.logger.InfoContext(ctx, "event published", slog.String("subject", p.subject), slog.String("msg_id", msgID))
	return nil
}

func (p *NATSPublisher) Close() {
	p.close()
}
