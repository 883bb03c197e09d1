package usecase

import (
	"context"

	"github.com/orderhub-io/go-backend/internal/domain"
)

type OrderUC interface {
	CreateOrder(ctx context.Context, req *CreateOrderReq) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, req *UpdateOrderStatusReq) (*domain.Order, error)
	CancelOrder(ctx context.Context, id int64) (*domain.Order, error)
}

type ProductUC interface {
	AddProduct(ctx context.Context, req *AddProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, req *UpdateProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*ProductInfo, error)
	ListProducts(ctx context.Context) ([]ProductInfo, error)
	DeleteProduct(ctx context.Context, id int64) error
}
