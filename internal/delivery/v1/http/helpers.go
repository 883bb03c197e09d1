package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse — единый конверт успешного ответа API.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, e.ErrProductNotFound.Error()
	case errors.Is(err, e.ErrOrderNotFound):
		return http.StatusNotFound, e.ErrOrderNotFound.Error()
	case errors.Is(err, e.ErrInsufficientStock):
		var insufficientErr *e.InsufficientStockError
		if errors.As(err, &insufficientErr) {
			return http.StatusConflict, insufficientErr.Error()
		}
		return http.StatusConflict, e.ErrInsufficientStock.Error()
	case errors.Is(err, e.ErrOrderCompleted):
		return http.StatusConflict, e.ErrOrderCompleted.Error()
	case errors.Is(err, e.ErrProductHasOrders):
		return http.StatusConflict, e.ErrProductHasOrders.Error()
	case errors.Is(err, e.ErrCustomerNameRequired):
		return http.StatusBadRequest, e.ErrCustomerNameRequired.Error()
	case errors.Is(err, e.ErrProductNameRequired):
		return http.StatusBadRequest, e.ErrProductNameRequired.Error()
	case errors.Is(err, e.ErrPriceNegative):
		return http.StatusBadRequest, e.ErrPriceNegative.Error()
	case errors.Is(err, e.ErrStockNegative):
		return http.StatusBadRequest, e.ErrStockNegative.Error()
	case errors.Is(err, e.ErrNoOrderItems):
		return http.StatusBadRequest, e.ErrNoOrderItems.Error()
	case errors.Is(err, e.ErrQuantityMustBeOne):
		return http.StatusBadRequest, e.ErrQuantityMustBeOne.Error()
	case errors.Is(err, e.ErrInvalidOrderStatus):
		return http.StatusBadRequest, e.ErrInvalidOrderStatus.Error()
	case errors.Is(err, e.ErrInvalidBody):
		return http.StatusBadRequest, e.ErrInvalidBody.Error()
	case errors.Is(err, e.ErrInvalidPrice):
		return http.StatusBadRequest, e.ErrInvalidPrice.Error()
	case errors.Is(err, e.ErrPricePrecision):
		return http.StatusBadRequest, e.ErrPricePrecision.Error()
	case errors.Is(err, e.ErrMissingFields):
		return http.StatusBadRequest, e.ErrMissingFields.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// decodeBody читает JSON-тело запроса в dst.
func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidBody)
	}

	return nil
}

// idFromURL извлекает числовой идентификатор из URL-параметра id.
func idFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap("id: "+idStr, e.ErrMissingFields)
	}

	return id, nil
}

// parsePriceToCents переводит строку вида "599.99" или "600" в копейки.
// Отклоняет отрицательные значения, более двух знаков после запятой
// и цены выше 10^9.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	if d.GreaterThan(decimal.NewFromInt(1_000_000_000)) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return 0, e.ErrPricePrecision
	}

	cents := d.Mul(decimal.NewFromInt(100)).Round(0)

	return cents.IntPart(), nil
}

// formatCents переводит цену из копеек в строку вида "599.99".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// ORDER RESPONSE DTO

type orderResponse struct {
	ID           int64               `json:"id"`
	CustomerName string              `json:"customer_name"`
	Status       string              `json:"status"`
	CreatedAt    string              `json:"created_at"`
	Items        []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ProductID int64            `json:"product_id"`
	Quantity  int64            `json:"quantity"`
	Price     string           `json:"price"`
	Product   *productResponse `json:"product,omitempty"`
}

type productResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

func toOrderResponse(order *domain.Order) *orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		itemRes := orderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     formatCents(item.Price),
		}
		if item.Product != nil {
			itemRes.Product = &productResponse{
				ID:    item.Product.ID,
				Name:  item.Product.Name,
				Price: formatCents(item.Product.Price),
				Stock: item.Product.Stock,
			}
		}
		items = append(items, itemRes)
	}

	return &orderResponse{
		ID:           order.ID,
		CustomerName: order.CustomerName,
		Status:       order.Status.String(),
		CreatedAt:    order.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Items:        items,
	}
}
