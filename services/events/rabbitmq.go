package eventsvc

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pragya-git-bug/aibackend/core"
)

// RabbitMQPublisher publishes domain events on a topic exchange, routed by event type.
type RabbitMQPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	appName  string
}

var _ core.EventPublisher = (*RabbitMQPublisher)(nil)

func NewRabbitMQPublisher(conf *core.Config) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(conf.RabbitMQ.URL)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening channel")
	}

	err = channel.ExchangeDeclare(
		conf.RabbitMQ.Exchange, // name
		"topic",                // type
		true,                   // durable
		false,                  // auto-deleted
		false,                  // internal
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declaring exchange")
	}

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		exchange: conf.RabbitMQ.Exchange,
		appName:  conf.AppName,
	}, nil
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, evt core.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "marshalling event")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,       // exchange
		string(evt.Type), // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    evt.ID,
			AppId:        p.appName,
			Timestamp:    time.Unix(evt.Timestamp, 0),
			Type:         string(evt.Type),
			Body:         body,
		},
	)
	return errors.Wrapf(err, "publishing %s", evt.Type)
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		_ = p.conn.Close()
		return errors.Wrap(err, "closing channel")
	}
	return errors.Wrap(p.conn.Close(), "closing connection")
}
