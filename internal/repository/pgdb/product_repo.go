package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/internal/repository/pgdb/converter"
	"github.com/orderhub-io/go-backend/pkg/e"
	"github.com/orderhub-io/go-backend/pkg/tr"
)

// ProductRepo реализует репозиторий товаров поверх PostgreSQL.
// Мутации остатков выполняются только внутри транзакции вызывающего кода.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create добавляет новый товар.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, price, stock)
		VALUES ($1, $2, $3)
		RETURNING id, name, price, stock, created_at, updated_at;
	`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, product.Name, product.Price, product.Stock).
		Scan(&model.ID, &model.Name, &model.Price, &model.Stock, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// Update обновляет название, цену и остаток товара.
func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, stock = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, price, stock, created_at, updated_at;
	`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, product.ID, product.Name, product.Price, product.Stock).
		Scan(&model.ID, &model.Name, &model.Price, &model.Stock, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// GetByID возвращает товар по идентификатору.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var model converter.ProductModel
	err := p.pool.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.Price, &model.Stock, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// List возвращает все товары каталога.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		ORDER BY id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := rows.Scan(&model.ID, &model.Name, &model.Price, &model.Stock, &model.CreatedAt, &model.UpdatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *p.conv.ToEntity(&model))
	}

	return result, rows.Err()
}

// GetForUpdate возвращает товар, блокируя его строку до конца транзакции.
func (p *ProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var model converter.ProductModel
	err = tx.QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.Price, &model.Stock, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

// DecrementStock списывает qty со склада. Запрос защищён условием stock >= qty,
// остаток не может уйти в минус даже при ошибке в вызывающем коде.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, qty int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return p.explainDecrementFailure(ctx, tx, id, qty)
	}

	return nil
}

// IncrementStock возвращает qty на склад.
func (p *ProductRepo) IncrementStock(ctx context.Context, id int64, qty int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// HasOrderItems сообщает, ссылается ли на товар хотя бы одна позиция заказа.
func (p *ProductRepo) HasOrderItems(ctx context.Context, id int64) (bool, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)`

	var exists bool
	if err := tx.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}

// Delete удаляет товар. Нарушение внешнего ключа со стороны order_items
// транслируется в ErrProductHasOrders.
func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if postgresFKViolation(err) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProductHasOrders)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// explainDecrementFailure различает отсутствующий товар и нехватку остатка.
func (p *ProductRepo) explainDecrementFailure(ctx context.Context, tx pgx.Tx, id int64, qty int64) error {
	var (
		name  string
		stock int64
	)
	err := tx.QueryRow(ctx, `SELECT name, stock FROM products WHERE id = $1`, id).Scan(&name, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return e.Wrap(whereami.WhereAmI(), e.NewInsufficientStockError(name, stock, qty))
}
