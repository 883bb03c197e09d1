package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
)

type orderFixture struct {
	uc       *OrderUseCase
	orders   *memOrderRepo
	products *memProductRepo
	outbox   *memOutboxRepo
	cache    *memCacheRepo
	db       *fakeDB
}

func newOrderFixture() *orderFixture {
	products := newMemProductRepo()
	f := &orderFixture{
		orders:   newMemOrderRepo(products),
		products: products,
		outbox:   newMemOutboxRepo(),
		cache:    newMemCacheRepo(),
		db:       newFakeDB(),
	}
	f.uc = NewOrderUC(f.orders, f.products, f.outbox, f.db, f.cache, nopLogger{})

	return f
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)
	pen := f.products.add("Ручка", 1500, 3)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван Петров", []OrderItemReq{
		{ProductID: book.ID, Quantity: 2},
		{ProductID: pen.ID, Quantity: 3},
	}))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, "Иван Петров", order.CustomerName)
	require.Len(t, order.Items, 2)

	// Цены позиций зафиксированы из каталога на момент заказа
	assert.Equal(t, int64(45000), order.Items[0].Price)
	assert.Equal(t, int64(1500), order.Items[1].Price)

	// Остатки списаны в той же транзакции
	assert.Equal(t, int64(8), f.products.stock(book.ID))
	assert.Equal(t, int64(0), f.products.stock(pen.ID))

	// Ответ перечитан после коммита: товары в позициях отражают остатки после списания
	require.NotNil(t, order.Items[0].Product)
	assert.Equal(t, int64(8), order.Items[0].Product.Stock)
	require.NotNil(t, order.Items[1].Product)
	assert.Equal(t, int64(0), order.Items[1].Product.Stock)

	commits, rollbacks := f.db.tx.counts()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)

	events := f.outbox.created()
	require.Len(t, events, 1)
	assert.Equal(t, OrderCreatedEvent, events[0].EventType)
	assert.Equal(t, order.ID, events[0].OrderID)

	var payload OrderEventPayload
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "order.created", payload.EventType)
	assert.Len(t, payload.Order.Items, 2)

	require.Len(t, f.cache.deleted(), 1)
	assert.ElementsMatch(t, []int64{book.ID, pen.ID}, f.cache.deleted()[0])
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)
	pen := f.products.add("Ручка", 1500, 1)

	_, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 2},
		{ProductID: pen.ID, Quantity: 5},
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrInsufficientStock)

	var insufficientErr *e.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "Ручка", insufficientErr.ProductName)
	assert.Equal(t, int64(1), insufficientErr.Available)
	assert.Equal(t, int64(5), insufficientErr.Requested)

	// Весь заказ отклонён: ничего не создано и не списано
	_, getErr := f.orders.GetByID(context.Background(), 1)
	assert.ErrorIs(t, getErr, e.ErrOrderNotFound)
	assert.Equal(t, int64(10), f.products.stock(book.ID))
	assert.Equal(t, int64(1), f.products.stock(pen.ID))
	assert.Empty(t, f.outbox.created())

	commits, rollbacks := f.db.tx.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
}

func TestCreateOrderProductNotFound(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: 42, Quantity: 1},
	}))
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	_, rollbacks := f.db.tx.counts()
	assert.Equal(t, 1, rollbacks)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	tests := []struct {
		name    string
		req     *CreateOrderReq
		wantErr error
	}{
		{
			name:    "empty customer name",
			req:     NewCreateOrderReq("   ", []OrderItemReq{{ProductID: book.ID, Quantity: 1}}),
			wantErr: e.ErrCustomerNameRequired,
		},
		{
			name:    "no items",
			req:     NewCreateOrderReq("Иван", nil),
			wantErr: e.ErrNoOrderItems,
		},
		{
			name:    "zero quantity",
			req:     NewCreateOrderReq("Иван", []OrderItemReq{{ProductID: book.ID, Quantity: 0}}),
			wantErr: e.ErrQuantityMustBeOne,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateOrder(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Валидация отсекает запрос до открытия транзакции
	commits, rollbacks := f.db.tx.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 0, rollbacks)
}

func TestCreateOrderLockOrdering(t *testing.T) {
	f := newOrderFixture()
	a := f.products.add("A", 100, 5)
	b := f.products.add("B", 200, 5)
	c := f.products.add("C", 300, 5)

	_, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: c.ID, Quantity: 1},
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 1},
	}))
	require.NoError(t, err)

	// Блокировки берутся в порядке возрастания ID независимо от порядка в запросе
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, f.products.lockedIDs)
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 4},
	}))
	require.NoError(t, err)
	require.Equal(t, int64(6), f.products.stock(book.ID))

	cancelled, err := f.uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, domain.StatusCancelled, f.orders.status(order.ID))
	assert.Equal(t, int64(10), f.products.stock(book.ID))

	events := f.outbox.created()
	require.Len(t, events, 2)
	assert.Equal(t, OrderCancelledEvent, events[1].EventType)
}

func TestCancelOrderCompleted(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 2},
	}))
	require.NoError(t, err)

	_, err = f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(order.ID, "completed"))
	require.NoError(t, err)

	_, err = f.uc.CancelOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, e.ErrOrderCompleted)

	// Заказ и остатки не изменились
	assert.Equal(t, domain.StatusCompleted, f.orders.status(order.ID))
	assert.Equal(t, int64(8), f.products.stock(book.ID))
}

func TestCancelOrderAlreadyCancelled(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 3},
	}))
	require.NoError(t, err)

	_, err = f.uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), f.products.stock(book.ID))

	again, err := f.uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, again.Status)

	// Возврат остатков и событие отмены применяются не более одного раза
	assert.Equal(t, int64(10), f.products.stock(book.ID))
	assert.Equal(t, int64(3), f.products.incremented[book.ID])
	assert.Len(t, f.outbox.created(), 2)
}

func TestCancelOrderNotFound(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.CancelOrder(context.Background(), 77)
	assert.ErrorIs(t, err, e.ErrOrderNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 2},
	}))
	require.NoError(t, err)

	updated, err := f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(order.ID, "processing"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	updated, err = f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(order.ID, "completed"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	// Обычные переходы не трогают остатки
	assert.Equal(t, int64(8), f.products.stock(book.ID))
	assert.Len(t, f.outbox.created(), 1)
}

func TestUpdateOrderStatusInvalid(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(1, "shipped"))
	assert.ErrorIs(t, err, e.ErrInvalidOrderStatus)
}

func TestUpdateOrderStatusToCancelledRestoresStock(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 5},
	}))
	require.NoError(t, err)
	require.Equal(t, int64(5), f.products.stock(book.ID))

	updated, err := f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(order.ID, "cancelled"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Equal(t, int64(10), f.products.stock(book.ID))

	events := f.outbox.created()
	require.Len(t, events, 2)
	assert.Equal(t, OrderCancelledEvent, events[1].EventType)

	// Повторный перевод в cancelled не возвращает остатки второй раз
	_, err = f.uc.UpdateOrderStatus(context.Background(), NewUpdateOrderStatusReq(order.ID, "cancelled"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.products.stock(book.ID))
	assert.Len(t, f.outbox.created(), 2)
}

func TestGetOrder(t *testing.T) {
	f := newOrderFixture()
	book := f.products.add("Книга", 45000, 10)

	order, err := f.uc.CreateOrder(context.Background(), NewCreateOrderReq("Иван", []OrderItemReq{
		{ProductID: book.ID, Quantity: 1},
	}))
	require.NoError(t, err)

	got, err := f.uc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Len(t, got.Items, 1)

	_, err = f.uc.GetOrder(context.Background(), 999)
	assert.True(t, errors.Is(err, e.ErrOrderNotFound))
}
