package usecase

import (
	"context"

	"github.com/orderhub-io/go-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)

	// Методы ниже работают только внутри транзакции (pgx.Tx берётся из контекста).
	GetForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, id int64, qty int64) error
	IncrementStock(ctx context.Context, id int64, qty int64) error
	HasOrderItems(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// Методы ниже работают только внутри транзакции (pgx.Tx берётся из контекста).
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

type OutboxRepository interface {
	// Create пишет событие в рамках транзакции вызывающего кода.
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
