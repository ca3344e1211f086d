// Package rabbitmq содержит обвязку над брокером сообщений: подключение
// с повторами, объявление топологии журнала активности, публикацию и
// потребление сообщений.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Топология журнала активности: один direct-обмен и одна очередь.
const (
	ActivityExchange   = "activity"
	ActivityQueue      = "activity_log_queue"
	ActivityRoutingKey = "activity.log"
)

// Connect подключается к брокеру с повторами.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет топологию журнала активности.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err := ch.ExchangeDeclare(ActivityExchange, "direct", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := ch.QueueDeclare(ActivityQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, ActivityQueue, err)
	}
	if err := ch.QueueBind(ActivityQueue, ActivityRoutingKey, ActivityExchange, false, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, ActivityQueue, err)
	}

	return ch, nil
}

// PublishMessage публикует сообщение в обмен с сериализацией в JSON.
func PublishMessage(ch *amqp.Channel, exchange, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConsumeMessages создает потребителя сообщений из очереди.
// Сообщение подтверждается после обработки; ошибка обработчика приводит
// к nack без повторной постановки — журнал активности пишется по
// принципу "отправил и забыл".
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte) error) error {
	const op = "rabbitmq.ConsumeMessages"
	delivery, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	go func() {
		for {
			select {
			case d, ok := <-delivery:
				if !ok {
					return
				}
				if err := handler(d.Body); err != nil {
					if nackErr := d.Nack(false, false); nackErr != nil {
						log.Printf("failed to nack message: %v", nackErr)
					}
					continue
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Printf("failed to ack message: %v", ackErr)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
