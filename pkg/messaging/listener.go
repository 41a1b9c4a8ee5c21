package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	if err := DefineTopic(ch, prefix, topic); err != nil {
		return nil, err
	}
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	if err = ch.QueueBind(q.Name, name, name, false, nil); err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// ListenToTopic consumes the topic on its own goroutine until the channel
// closes. Failed messages are rejected without requeue.
func ListenToTopic(ch *amqp.Channel, logger *zap.Logger, prefix string, topic ChangeTopic, handle func([]byte) error) error {
	msgs, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}
	go consume(msgs, logger.With(zap.String("topic", string(topic))), handle)
	return nil
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func consume(msgs <-chan amqp.Delivery, logger *zap.Logger, handle func([]byte) error) {
	for d := range msgs {
		process(&d, d.Body, logger, handle)
	}
	logger.Info("change listener stopped")
}

func process(d acknowledger, body []byte, logger *zap.Logger, handle func([]byte) error) {
	if err := handle(body); err != nil {
		logger.Error("failed to process change", zap.Error(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			logger.Warn("nack failed", zap.Error(nackErr))
		}
		return
	}
	if err := d.Ack(false); err != nil {
		logger.Warn("ack failed", zap.Error(err))
	}
}
