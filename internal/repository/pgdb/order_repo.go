package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
	"github.com/orderhub-io/go-backend/pkg/tr"
)

// OrderRepo реализует репозиторий заказов поверх PostgreSQL.
// Мягко удалённые заказы (deleted_at IS NOT NULL) скрыты из всех выборок.
type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Create вставляет заказ и все его позиции в рамках транзакции вызывающего кода.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	orderQuery := `
		INSERT INTO orders (customer_name, status)
		VALUES ($1, $2)
		RETURNING id, created_at;
	`

	err = tx.QueryRow(ctx, orderQuery, order.CustomerName, order.Status.String()).
		Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err = tx.QueryRow(ctx, itemQuery, item.OrderID, item.ProductID, item.Quantity, item.Price).
			Scan(&item.ID)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return order, nil
}

// GetByID возвращает заказ с позициями и снимками связанных товаров.
func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `
		SELECT id, customer_name, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL
	`

	var order domain.Order
	var status string
	err := o.pool.QueryRow(ctx, query, id).
		Scan(&order.ID, &order.CustomerName, &status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	order.Status = domain.OrderStatus(status)

	items, err := o.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// GetForUpdate возвращает заказ с позициями, блокируя его строку до конца транзакции.
// Товары в позиции не подгружаются.
func (o *OrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, customer_name, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var order domain.Order
	var status string
	err = tx.QueryRow(ctx, query, id).
		Scan(&order.ID, &order.CustomerName, &status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	order.Status = domain.OrderStatus(status)

	itemsQuery := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := tx.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	order.Items = items

	return &order, nil
}

// UpdateStatus меняет статус заказа в рамках транзакции вызывающего кода.
func (o *OrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := tx.Exec(ctx, query, id, status.String())
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrOrderNotFound)
	}

	return nil
}

// loadItems подгружает позиции заказа вместе с текущим состоянием товаров.
func (o *OrderRepo) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
			p.id, p.name, p.price, p.stock, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := o.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		var product domain.Product
		err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price,
			&product.ID, &product.Name, &product.Price, &product.Stock, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		item.Product = &product
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return items, nil
}
