// Package natsrpc exposes the intent parser as a NATS request/reply service.
package natsrpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"affiliate-notify/internal/domain/intent"
	"affiliate-notify/internal/infra/metrics"
	"affiliate-notify/internal/pkg/config"

	"github.com/nats-io/nats.go"
)

const maxQueryLength = 1000

type ParseRequest struct {
	Query string `json:"query"`
}

type ParseReply struct {
	Intent *intent.ParsedIntent `json:"intent,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// ParseResponder answers parse requests on a subject. Replies are computed
// in the subscription callback; parsing is pure and fast.
type ParseResponder struct {
	conn    *nats.Conn
	subject string
	sub     *nats.Subscription
}

func Connect(cfg config.NATSConfig) (*nats.Conn, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("affiliate-notify"),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("Connected to NATS", "url", cfg.URL)
	return conn, nil
}

func NewParseResponder(conn *nats.Conn, cfg config.NATSConfig) *ParseResponder {
	return &ParseResponder{conn: conn, subject: cfg.ParseSubject}
}

func (r *ParseResponder) Start() error {
	sub, err := r.conn.Subscribe(r.subject, r.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
	}
	r.sub = sub
	slog.Info("Parse responder subscribed", "subject", r.subject)
	return nil
}

func (r *ParseResponder) Stop() error {
	if r.sub == nil {
		return nil
	}
	if err := r.sub.Drain(); err != nil {
		return fmt.Errorf("failed to drain %s: %w", r.subject, err)
	}
	r.sub = nil
	return nil
}

// Close drains the subscription and closes the connection.
func (r *ParseResponder) Close() error {
	err := r.Stop()
	r.conn.Close()
	return err
}

func (r *ParseResponder) handle(msg *nats.Msg) {
	reply := Answer(msg.Data)
	data, err := json.Marshal(reply)
	if err != nil {
		slog.Error("failed to marshal parse reply", "error", err.Error())
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.Warn("failed to send parse reply", "subject", msg.Subject, "error", err.Error())
	}
}

// Answer decodes one request payload and builds its reply.
func Answer(data []byte) ParseReply {
	var req ParseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ParseReply{Error: "invalid request format"}
	}
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return ParseReply{Error: "query is required"}
	}
	if len(q) > maxQueryLength {
		return ParseReply{Error: "query is too long"}
	}
	parsed := intent.Parse(q)
	categorized := "false"
	if parsed.Category != nil {
		categorized = "true"
	}
	metrics.IntentsParsedTotal.WithLabelValues("nats", categorized).Inc()
	return ParseReply{Intent: &parsed}
}
