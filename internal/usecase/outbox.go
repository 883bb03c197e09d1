package usecase

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub-io/go-backend/internal/domain"
)

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	OrderCreatedEvent   OutboxEventType = "order.created"
	OrderCancelledEvent OutboxEventType = "order.cancelled"
)

// OutboxEvent — запись transactional outbox: пишется в той же транзакции,
// что и изменение заказа, и публикуется в Kafka воркером после коммита.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	OrderID     int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventType OutboxEventType, orderID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		OrderID:   orderID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now(),
	}
}

// OrderEventPayload — тело события жизненного цикла заказа для внешних потребителей.
type OrderEventPayload struct {
	EventType  string       `json:"event_type"`
	OccurredAt int64        `json:"occurred_at"`
	Order      OrderPayload `json:"order"`
}

type OrderPayload struct {
	ID           int64              `json:"id"`
	CustomerName string             `json:"customer_name"`
	Status       string             `json:"status"`
	Items        []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

// MarshalOrderEvent сериализует снимок заказа в JSON-полезную нагрузку события.
func MarshalOrderEvent(eventType OutboxEventType, order *domain.Order) ([]byte, error) {
	items := make([]OrderItemPayload, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemPayload{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	payload := OrderEventPayload{
		EventType:  string(eventType),
		OccurredAt: time.Now().UnixNano(),
		Order: OrderPayload{
			ID:           order.ID,
			CustomerName: order.CustomerName,
			Status:       order.Status.String(),
			Items:        items,
		},
	}

	return json.Marshal(payload)
}
