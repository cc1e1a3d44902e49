package amqp

import "errors"

// Sentinel errors for AMQP operations.
var (
	// ErrDisabled indicates the AMQP exporter is disabled in config.
	ErrDisabled = errors.New("amqp: disabled in configuration")

	// ErrConnectionFailed indicates the broker could not be reached before
	// the connect timeout expired.
	ErrConnectionFailed = errors.New("amqp: connection failed")

	// ErrNotConnected is returned when publishing without an open channel,
	// for example while a reconnect is in progress.
	ErrNotConnected = errors.New("amqp: not connected")

	// ErrPublishFailed wraps broker-side publish errors.
	ErrPublishFailed = errors.New("amqp: publish failed")
)
