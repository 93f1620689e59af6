package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/ms-lab/commerce-go/internal/messaging"
	"github.com/ms-lab/commerce-go/internal/models"
)

const OrderCreatedQueue = "order.created"

// OrderPublisher announces committed orders on RabbitMQ. Consumers use the
// event for read-side concerns (cache invalidation); inventory decrements
// are not driven by it.
type OrderPublisher struct {
	mq *messaging.RabbitMQ
}

func NewOrderPublisher(mq *messaging.RabbitMQ) (*OrderPublisher, error) {
	if err := mq.DeclareQueue(OrderCreatedQueue); err != nil {
		return nil, err
	}

	return &OrderPublisher{mq: mq}, nil
}

func (p *OrderPublisher) PublishOrderCreated(order *models.Order) error {
	event := models.OrderCreatedEvent{
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		TotalAmount: order.TotalAmount,
	}

	for _, item := range order.OrderItems {
		event.Items = append(event.Items, models.OrderItemEvent{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(OrderCreatedQueue, data)
}
