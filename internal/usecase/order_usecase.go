package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
	"github.com/orderhub-io/go-backend/pkg/logger"
)

// OrderUseCase реализует жизненный цикл заказа: создание с резервированием остатков,
// смену статуса и отмену с возвратом товара на склад.
//
// Списание и возврат остатков выполняются в той же транзакции, что и изменение заказа.
// Outbox-событие в той же транзакции фиксирует факт перехода для внешних потребителей,
// но корректность остатков от его доставки не зависит.
type OrderUseCase struct {
	orderRepo   OrderRepository
	productRepo ProductRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewOrderUC(
	orderRepo OrderRepository,
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// CreateOrder атомарно проверяет остатки, создаёт заказ со статусом pending,
// фиксирует цены позиций и списывает товар со склада. Любая недоступная позиция
// отклоняет весь заказ целиком.
func (o *OrderUseCase) CreateOrder(ctx context.Context, req *CreateOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.CreateOrder"

	var err error
	err = o.validateCreateOrder(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(txCtx)
		}
	}()
	txCtx = context.WithValue(txCtx, "tx", tx.Transaction())

	// Резервирование: блокируем строки товаров и проверяем доступность
	items, err := o.reserveItems(txCtx, req.Items)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	order := domain.NewOrder(req.CustomerName)
	order.Items = items

	created, err := o.orderRepo.Create(txCtx, order)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Списание остатков в той же транзакции
	for _, item := range created.Items {
		if err = o.productRepo.DecrementStock(txCtx, item.ProductID, item.Quantity); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	err = o.recordOrderEvent(txCtx, OrderCreatedEvent, created)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = tx.Commit(txCtx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateProducts(ctx, op, created.Items)

	// Перечитываем заказ после коммита: товары в ответе отражают остатки после списания
	return o.loadOrder(ctx, op, created)
}

// GetOrder возвращает заказ с позициями и связанными товарами.
func (o *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return order, nil
}

// UpdateOrderStatus переводит заказ в новый статус. При переходе в cancelled
// из любого другого статуса возвращает остатки на склад и публикует событие
// отмены; повторный перевод в cancelled — no-op по остаткам и событиям.
func (o *OrderUseCase) UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error) {
	const op = "OrderUseCase.UpdateOrderStatus"

	status := domain.OrderStatus(req.Status)
	if !status.IsValid() {
		return nil, e.Wrap(op, e.ErrInvalidOrderStatus)
	}

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(txCtx)
		}
	}()
	txCtx = context.WithValue(txCtx, "tx", tx.Transaction())

	order, err := o.orderRepo.GetForUpdate(txCtx, req.OrderID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	oldStatus := order.Status

	err = o.orderRepo.UpdateStatus(txCtx, order.ID, status)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	order.Status = status

	restored := false
	if status == domain.StatusCancelled && oldStatus != domain.StatusCancelled {
		if err = o.restoreStock(txCtx, order); err != nil {
			return nil, e.Wrap(op, err)
		}
		restored = true
	}

	err = tx.Commit(txCtx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if restored {
		o.invalidateProducts(ctx, op, order.Items)
	}

	return o.loadOrder(ctx, op, order)
}

// CancelOrder отменяет заказ и возвращает остатки на склад.
// Завершённый заказ отменить нельзя; уже отменённый возвращается как есть,
// повторного возврата остатков не происходит.
func (o *OrderUseCase) CancelOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.CancelOrder"

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, o.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(txCtx)
		}
	}()
	txCtx = context.WithValue(txCtx, "tx", tx.Transaction())

	order, err := o.orderRepo.GetForUpdate(txCtx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !order.CanBeCancelled() {
		err = e.ErrOrderCompleted
		return nil, e.Wrap(op, err)
	}

	if order.Status == domain.StatusCancelled {
		// Эффект отмены применяется не более одного раза
		tx.Rollback(txCtx)
		return o.loadOrder(ctx, op, order)
	}

	err = o.orderRepo.UpdateStatus(txCtx, order.ID, domain.StatusCancelled)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	order.Status = domain.StatusCancelled

	err = o.restoreStock(txCtx, order)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = tx.Commit(txCtx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.invalidateProducts(ctx, op, order.Items)

	return o.loadOrder(ctx, op, order)
}

// reserveItems блокирует строки товаров, проверяет остатки и снимает снимок цен.
// Блокировки берутся в порядке возрастания product_id, чтобы конкурирующие заказы
// не взаимоблокировались.
func (o *OrderUseCase) reserveItems(ctx context.Context, reqItems []OrderItemReq) ([]domain.OrderItem, error) {
	sorted := make([]OrderItemReq, len(reqItems))
	copy(sorted, reqItems)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	items := make([]domain.OrderItem, 0, len(sorted))
	for _, reqItem := range sorted {
		product, err := o.productRepo.GetForUpdate(ctx, reqItem.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock < reqItem.Quantity {
			return nil, e.NewInsufficientStockError(product.Name, product.Stock, reqItem.Quantity)
		}

		item := domain.NewOrderItem(product.ID, reqItem.Quantity, product.Price)
		item.Product = product
		items = append(items, *item)
	}

	return items, nil
}

// restoreStock возвращает остатки по всем позициям заказа и пишет событие отмены.
func (o *OrderUseCase) restoreStock(ctx context.Context, order *domain.Order) error {
	for _, item := range order.Items {
		if err := o.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return o.recordOrderEvent(ctx, OrderCancelledEvent, order)
}

// recordOrderEvent пишет outbox-событие перехода в рамках текущей транзакции.
func (o *OrderUseCase) recordOrderEvent(ctx context.Context, eventType OutboxEventType, order *domain.Order) error {
	payload, err := MarshalOrderEvent(eventType, order)
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, NewOutboxEvent(eventType, order.ID, payload))
	return err
}

// invalidateProducts удаляет затронутые товары из кэша; ошибка кэша не фатальна.
func (o *OrderUseCase) invalidateProducts(ctx context.Context, op string, items []domain.OrderItem) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	if err := o.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		o.logger.Warnf("Failed to invalidate products cache: %v", e.Wrap(op, err))
	}
}

// loadOrder перечитывает заказ с позициями и товарами для ответа;
// при неудаче отдаёт уже имеющийся снимок.
func (o *OrderUseCase) loadOrder(ctx context.Context, op string, order *domain.Order) (*domain.Order, error) {
	loaded, err := o.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, e.ErrOrderNotFound) {
			return nil, e.Wrap(op, err)
		}
		o.logger.Warnf("Failed to reload order %d: %v", order.ID, e.Wrap(op, err))
		return order, nil
	}

	return loaded, nil
}

// validateCreateOrder проверяет структурные инварианты команды создания заказа.
func (o *OrderUseCase) validateCreateOrder(req *CreateOrderReq) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return e.ErrCustomerNameRequired
	}

	if len(req.Items) == 0 {
		return e.ErrNoOrderItems
	}

	for _, item := range req.Items {
		if item.Quantity < 1 {
			return e.ErrQuantityMustBeOne
		}
	}

	return nil
}
