package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrOrderNotFound   = fmt.Errorf("order not found")

	// 400 Bad Request
	ErrCustomerNameRequired = fmt.Errorf("customer name is required")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrPriceNegative        = fmt.Errorf("price must not be negative")
	ErrStockNegative        = fmt.Errorf("stock must not be negative")
	ErrNoOrderItems         = fmt.Errorf("order must contain at least one item")
	ErrQuantityMustBeOne    = fmt.Errorf("quantity must be at least 1")
	ErrInvalidOrderStatus   = fmt.Errorf("invalid order status")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 409 Conflict — нарушения бизнес-правил
	ErrInsufficientStock = fmt.Errorf("insufficient stock")
	ErrOrderCompleted    = fmt.Errorf("cannot cancel a completed order")
	ErrProductHasOrders  = fmt.Errorf("cannot delete product that is part of an order")

	// HTTP-слой
	ErrStatusBadRequest    = fmt.Errorf("bad request")
	ErrInvalidBody         = fmt.Errorf("invalid request body")
	ErrInvalidPrice        = fmt.Errorf("invalid price")
	ErrPricePrecision      = fmt.Errorf("price must have at most 2 decimal places")
	ErrMissingFields       = fmt.Errorf("missing required fields")
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// InsufficientStockError содержит детали нехватки товара: что просили и что было доступно.
type InsufficientStockError struct {
	ProductName string
	Available   int64
	Requested   int64
}

func NewInsufficientStockError(name string, available, requested int64) *InsufficientStockError {
	return &InsufficientStockError{
		ProductName: name,
		Available:   available,
		Requested:   requested,
	}
}

func (i *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product: %s. Available: %d, Requested: %d",
		i.ProductName, i.Available, i.Requested,
	)
}

// Is сопоставляет типизированную ошибку с сентинелом ErrInsufficientStock через errors.Is.
func (i *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
