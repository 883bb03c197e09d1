package usecase

import (
	"context"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
	"github.com/orderhub-io/go-backend/pkg/logger"
)

// ProductUseCase реализует управление каталогом товаров.
type ProductUseCase struct {
	productRepo ProductRepository
	dbPool      transaction.Transactional
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	dbPool transaction.Transactional,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		dbPool:      dbPool,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// AddProduct добавляет новый товар в каталог.
func (p *ProductUseCase) AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.AddProduct"

	if err := p.validateProduct(req.Name, req.Price, req.Stock); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(req.Name, req.Price, req.Stock))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// UpdateProduct обновляет товар и вытесняет его из кэша.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if err := p.validateProduct(req.Name, req.Price, req.Stock); err != nil {
		return nil, e.Wrap(op, err)
	}

	product := domain.NewProduct(req.Name, req.Price, req.Stock)
	product.ID = req.ID

	updated, err := p.productRepo.Update(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{updated.ID}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	return updated, nil
}

// GetProduct возвращает товар, предпочитая кэш; промах дочитывается из БД
// и фоново кэшируется.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*ProductInfo, error) {
	const op = "ProductUseCase.GetProduct"

	cached, err := p.cacheRepo.GetProducts(ctx, []int64{id})
	if err == nil {
		if info, ok := cached[id]; ok {
			return &info, nil
		}
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	info := NewProductInfo(product.ID, product.Name, product.Price, product.Stock)

	// Фоновое добавление товара в кэш
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		defer cancel()

		if err := p.cacheRepo.SetProducts(bgCtx, []ProductInfo{info}); err != nil {
			p.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}()

	return &info, nil
}

// ListProducts возвращает весь каталог.
func (p *ProductUseCase) ListProducts(ctx context.Context) ([]ProductInfo, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]ProductInfo, 0, len(products))
	for _, product := range products {
		result = append(result, NewProductInfo(product.ID, product.Name, product.Price, product.Stock))
	}

	return result, nil
}

// DeleteProduct удаляет товар, если на него не ссылается ни одна позиция заказа.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	txCtx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(txCtx)
		}
	}()
	txCtx = context.WithValue(txCtx, "tx", tx.Transaction())

	hasItems, err := p.productRepo.HasOrderItems(txCtx, id)
	if err != nil {
		return e.Wrap(op, err)
	}
	if hasItems {
		err = e.ErrProductHasOrders
		return e.Wrap(op, err)
	}

	err = p.productRepo.Delete(txCtx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	err = tx.Commit(txCtx)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	return nil
}

// validateProduct проверяет структурные инварианты товара.
func (p *ProductUseCase) validateProduct(name string, price int64, stock int64) error {
	if strings.TrimSpace(name) == "" {
		return e.ErrProductNameRequired
	}

	if price < 0 {
		return e.ErrPriceNegative
	}

	if stock < 0 {
		return e.ErrStockNegative
	}

	return nil
}
