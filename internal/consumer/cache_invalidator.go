package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/db"
	"github.com/ms-lab/commerce-go/internal/models"
)

// CacheInvalidator drops cached product entries when orders are placed,
// so product reads reflect the synchronous stock decrements made by the
// order service.
type CacheInvalidator struct {
	repo *db.CachedProductRepository
	log  *zap.SugaredLogger
}

func NewCacheInvalidator(repo *db.CachedProductRepository, log *zap.SugaredLogger) *CacheInvalidator {
	return &CacheInvalidator{repo: repo, log: log}
}

// ProcessOrderCreated consumes order.created events until the channel
// closes. Undecodable messages are dropped, not requeued.
func (c *CacheInvalidator) ProcessOrderCreated(messages <-chan amqp.Delivery) {
	for msg := range messages {
		var event models.OrderCreatedEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			c.log.Errorw("failed to parse order.created event", "error", err)
			msg.Nack(false, false)
			continue
		}

		ids := make([]int, 0, len(event.Items))
		for _, item := range event.Items {
			ids = append(ids, item.ProductID)
		}

		c.repo.InvalidateProducts(context.Background(), ids...)
		c.log.Infow("invalidated product cache for order", "order_id", event.OrderID, "products", ids)

		msg.Ack(false)
	}
}
