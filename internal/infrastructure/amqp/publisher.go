package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/nerrad567/appliance-sim/internal/infrastructure/config"
)

const (
	exchangeTypeFanout = "fanout"
	contentTypeJSON    = "application/json"

	durable          = true
	deleteWhenUnused = false
	internal         = false
	noWait           = false
	mandatory        = false
	immediate        = false

	defaultConnectTimeout = 30 * time.Second

	// Reconnection after a lost connection never gives up.
	reconnectInitialInterval = 2 * time.Second
	reconnectMaxInterval     = time.Minute
	reconnectMultiplier      = 1.7
)

// Logger interface for optional logging support.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Publisher sends messages to one durable fanout exchange.
//
// A lost connection is re-established in the background; Publish returns
// ErrNotConnected until it is.
type Publisher struct {
	url      string
	exchange string

	mu      sync.RWMutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	closed  bool

	logger Logger
	done   chan struct{}
}

// Connect dials the broker and declares the exchange, retrying with
// exponential backoff for up to cfg.ConnectTimeout seconds.
func Connect(ctx context.Context, cfg config.AMQPConfig, logger Logger) (*Publisher, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	p := &Publisher{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		logger:   logger,
		done:     make(chan struct{}),
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = defaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		policy.MaxElapsedTime = time.Duration(cfg.ConnectTimeout) * time.Second
	}

	if err := backoff.Retry(p.connect, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	go p.watch()
	return p, nil
}

// connect opens a connection and channel and declares the exchange.
func (p *Publisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(p.exchange, exchangeTypeFanout, durable, deleteWhenUnused, internal, noWait, nil); err != nil {
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		conn.Close()
		return nil
	}
	p.conn = conn
	p.channel = channel
	return nil
}

// watch reconnects whenever the broker drops the connection, until Close.
func (p *Publisher) watch() {
	for {
		p.mu.RLock()
		conn := p.conn
		p.mu.RUnlock()

		reason, ok := <-conn.NotifyClose(make(chan *amqp091.Error, 1))
		if !ok || reason == nil {
			// Closed on purpose.
			return
		}

		p.mu.Lock()
		p.channel = nil
		p.mu.Unlock()
		p.warn("AMQP connection lost, reconnecting", "reason", reason.Error())

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = reconnectInitialInterval
		policy.MaxInterval = reconnectMaxInterval
		policy.Multiplier = reconnectMultiplier
		policy.MaxElapsedTime = 0

		reconnect := func() error {
			select {
			case <-p.done:
				return nil
			default:
			}
			return p.connect()
		}
		if err := backoff.Retry(reconnect, policy); err != nil {
			return
		}

		select {
		case <-p.done:
			return
		default:
		}
		if p.logger != nil {
			p.logger.Info("AMQP reconnected", "exchange", p.exchange)
		}
	}
}

// Publish sends body to the exchange with routingKey.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()

	if channel == nil {
		return ErrNotConnected
	}

	err := channel.PublishWithContext(ctx, p.exchange, routingKey, mandatory, immediate, amqp091.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp091.Transient,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Exchange returns the exchange name.
func (p *Publisher) Exchange() string {
	return p.exchange
}

// IsConnected reports whether a channel is currently open.
func (p *Publisher) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.channel != nil && p.conn != nil && !p.conn.IsClosed()
}

// Close stops reconnection and closes the connection. It is safe to call
// more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	if p.done != nil {
		close(p.done)
	}

	p.channel = nil
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
