package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub-io/go-backend/pkg/e"
)

type productFixture struct {
	uc       *ProductUseCase
	products *memProductRepo
	cache    *memCacheRepo
	db       *fakeDB
}

func newProductFixture() *productFixture {
	f := &productFixture{
		products: newMemProductRepo(),
		cache:    newMemCacheRepo(),
		db:       newFakeDB(),
	}
	f.uc = NewProductUC(f.products, f.db, f.cache, nopLogger{})

	return f
}

func TestAddProduct(t *testing.T) {
	f := newProductFixture()

	product, err := f.uc.AddProduct(context.Background(), NewAddProductReq("Книга", 45000, 10))
	require.NoError(t, err)

	assert.NotZero(t, product.ID)
	assert.Equal(t, "Книга", product.Name)
	assert.Equal(t, int64(45000), product.Price)
	assert.Equal(t, int64(10), product.Stock)
}

func TestAddProductValidation(t *testing.T) {
	f := newProductFixture()

	tests := []struct {
		name    string
		req     *AddProductReq
		wantErr error
	}{
		{name: "empty name", req: NewAddProductReq("  ", 100, 1), wantErr: e.ErrProductNameRequired},
		{name: "negative price", req: NewAddProductReq("Книга", -1, 1), wantErr: e.ErrPriceNegative},
		{name: "negative stock", req: NewAddProductReq("Книга", 100, -1), wantErr: e.ErrStockNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.AddProduct(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	f := newProductFixture()
	created := f.products.add("Книга", 45000, 10)

	updated, err := f.uc.UpdateProduct(context.Background(), NewUpdateProductReq(created.ID, "Книга 2-е изд.", 52000, 7))
	require.NoError(t, err)

	assert.Equal(t, "Книга 2-е изд.", updated.Name)
	assert.Equal(t, int64(52000), updated.Price)
	assert.Equal(t, int64(7), updated.Stock)

	// Обновление вытесняет товар из кэша
	require.Len(t, f.cache.deleted(), 1)
	assert.Equal(t, []int64{created.ID}, f.cache.deleted()[0])
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.UpdateProduct(context.Background(), NewUpdateProductReq(99, "Книга", 100, 1))
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestGetProduct(t *testing.T) {
	f := newProductFixture()
	created := f.products.add("Книга", 45000, 10)

	info, err := f.uc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, info.ID)
	assert.Equal(t, "Книга", info.Name)

	// Промах дочитывается из БД и фоново попадает в кэш
	assert.Eventually(t, func() bool {
		cached, err := f.cache.GetProducts(context.Background(), []int64{created.ID})
		if err != nil {
			return false
		}
		_, ok := cached[created.ID]
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestGetProductFromCache(t *testing.T) {
	f := newProductFixture()

	// Товара нет в БД, но есть в кэше
	require.NoError(t, f.cache.SetProducts(context.Background(), []ProductInfo{
		NewProductInfo(5, "Кэшированная книга", 30000, 2),
	}))

	info, err := f.uc.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Кэшированная книга", info.Name)
}

func TestGetProductNotFound(t *testing.T) {
	f := newProductFixture()

	_, err := f.uc.GetProduct(context.Background(), 404)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestListProducts(t *testing.T) {
	f := newProductFixture()
	f.products.add("Книга", 45000, 10)
	f.products.add("Ручка", 1500, 3)

	list, err := f.uc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDeleteProduct(t *testing.T) {
	f := newProductFixture()
	created := f.products.add("Книга", 45000, 10)

	require.NoError(t, f.uc.DeleteProduct(context.Background(), created.ID))

	_, err := f.products.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	commits, rollbacks := f.db.tx.counts()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)
}

func TestDeleteProductWithOrders(t *testing.T) {
	f := newProductFixture()
	created := f.products.add("Книга", 45000, 10)
	f.products.withOrders[created.ID] = true

	err := f.uc.DeleteProduct(context.Background(), created.ID)
	assert.ErrorIs(t, err, e.ErrProductHasOrders)

	// Товар остаётся в каталоге
	_, getErr := f.products.GetByID(context.Background(), created.ID)
	assert.NoError(t, getErr)

	commits, rollbacks := f.db.tx.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
}
