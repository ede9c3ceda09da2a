// Package nats provides the NATS JetStream connection used to publish leads
// and conversation events.
package nats

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/gforma/lead-assistant/pkg/logger"
)

const (
	clientName     = "gforma-lead-assistant"
	reconnectWait  = 2 * time.Second
	reconnectBuf   = 8 * 1024 * 1024
	connectTimeout = 5 * time.Second
)

// ErrIncompleteTLS is returned when only one half of a client key pair is configured.
var ErrIncompleteTLS = errors.New("nats: client certificate and key must be set together")

// Config holds NATS connection configuration. CAFile enables TLS with a
// private root; CertFile and KeyFile enable TLS with a client certificate.
type Config struct {
	URL      string
	CAFile   string
	CertFile string
	KeyFile  string
	Token    string
}

// Client holds the broker connection and its JetStream context.
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect dials the broker and opens a JetStream context. Lost connections
// reconnect forever; messages published meanwhile are buffered. The initial
// dial gives up at ctx's deadline when that is sooner than the default timeout.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	opts, err := connectOptions(cfg, dialTimeout(ctx), log)
	if err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open JetStream: %w", err)
	}

	log.Info("lead broker connected",
		zap.String("url", nc.ConnectedUrl()),
		zap.Bool("tls", cfg.CAFile != "" || cfg.CertFile != ""),
	)

	return &Client{conn: nc, js: js, logger: log}, nil
}

// dialTimeout caps connectTimeout by the time left on ctx.
func dialTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return connectTimeout
	}
	if left := time.Until(deadline); left < connectTimeout {
		return max(left, time.Millisecond)
	}
	return connectTimeout
}

func connectOptions(cfg Config, timeout time.Duration, log *logger.Logger) ([]nats.Option, error) {
	opts := []nats.Option{
		nats.Name(clientName),
		nats.Timeout(timeout),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.ReconnectBufSize(reconnectBuf),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("lead broker disconnected, events are buffered", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("lead broker reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error("lead broker error", zap.Error(err))
		}),
	}

	tlsCfg, err := loadTLS(cfg)
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, nats.Secure(tlsCfg))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}
	return opts, nil
}

// loadTLS returns nil when neither a CA nor a client key pair is configured.
// Without a CA the server is verified against the system roots.
func loadTLS(cfg Config) (*tls.Config, error) {
	if (cfg.CertFile == "") != (cfg.KeyFile == "") {
		return nil, ErrIncompleteTLS
	}
	if cfg.CAFile == "" && cfg.CertFile == "" {
		return nil, nil
	}

	out := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read NATS CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CAFile)
		}
		out.RootCAs = pool
	}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load NATS client certificate: %w", err)
		}
		out.Certificates = []tls.Certificate{cert}
	}
	return out, nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Close flushes pending publications before closing. A failed drain falls
// back to an immediate close.
func (c *Client) Close() {
	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("lead broker drain failed", zap.Error(err))
		c.conn.Close()
	}
}

// IsConnected reports whether the broker connection is up. It backs /ready.
func (c *Client) IsConnected() bool {
	return c.conn != nil && c.conn.IsConnected()
}
