package domain

import "time"

// Order описывает заказ покупателя
type Order struct {
	ID           int64
	CustomerName string
	Status       OrderStatus
	Items        []OrderItem
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time // Мягкое удаление: запись остаётся, но скрыта из обычных выборок
}

func NewOrder(customerName string) *Order {
	return &Order{
		CustomerName: customerName,
		Status:       StatusPending,
	}
}

// CanBeCancelled сообщает, допустимо ли отменить заказ из текущего статуса.
// Завершённый заказ отменить нельзя.
func (o *Order) CanBeCancelled() bool {
	return o.Status != StatusCompleted
}
