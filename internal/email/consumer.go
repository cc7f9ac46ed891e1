package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/wrightlabs/marketplace/internal/events"
)

// StartOrderPaidConsumer consumes order.paid events and sends confirmation
// mails. Delivery is fire-and-forget from the payment pipeline's point of
// view; a failed send is logged and the message dropped.
func StartOrderPaidConsumer(ctx context.Context, conn *amqp.Connection, sender Sender, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		events.OrderPaidQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(
		events.OrderPaidQueue,
		"marketplace-mailer", // consumer tag
		false,                // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping order.paid consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("messages channel closed")
					return
				}

				if err := handleOrderPaid(ctx, sender, msg.Body); err != nil {
					logger.Printf("send order confirmation failed: %v", err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleOrderPaid(ctx context.Context, sender Sender, body []byte) error {
	var ev events.OrderPaid
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal OrderPaid: %w", err)
	}
	return sender.SendOrderConfirmation(ctx, ev)
}
