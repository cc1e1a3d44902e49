// Package amqp publishes simulator snapshots to a RabbitMQ fanout exchange.
//
// The exchange is declared durable on connect. Messages are transient JSON
// with the simulation mode as routing key. Connection attempts back off
// exponentially; a connection lost at runtime is re-established in the
// background without bound until Close.
//
//	pub, err := amqp.Connect(ctx, cfg.AMQP, logger)
//	if err != nil {
//	    return err
//	}
//	defer pub.Close()
//
//	err = pub.Publish(ctx, "wattage", body)
package amqp
