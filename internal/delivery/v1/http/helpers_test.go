package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderhub-io/go-backend/pkg/e"
)

func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "599.99", want: 59999},
		{in: "600", want: 60000},
		{in: "0", want: 0},
		{in: "0.01", want: 1},
		{in: "1000000000", want: 100_000_000_000},
		{in: "", wantErr: e.ErrInvalidPrice},
		{in: "abc", wantErr: e.ErrInvalidPrice},
		{in: "-1", wantErr: e.ErrInvalidPrice},
		{in: "1000000000.01", wantErr: e.ErrInvalidPrice},
		{in: "5.999", wantErr: e.ErrPricePrecision},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePriceToCents(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "599.99", formatCents(59999))
	assert.Equal(t, "600.00", formatCents(60000))
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.01", formatCents(1))
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "product not found", err: e.ErrProductNotFound, code: http.StatusNotFound},
		{name: "order not found", err: e.Wrap("op", e.ErrOrderNotFound), code: http.StatusNotFound},
		{name: "insufficient stock", err: e.NewInsufficientStockError("Книга", 1, 5), code: http.StatusConflict},
		{name: "order completed", err: e.ErrOrderCompleted, code: http.StatusConflict},
		{name: "product has orders", err: e.ErrProductHasOrders, code: http.StatusConflict},
		{name: "invalid status", err: e.ErrInvalidOrderStatus, code: http.StatusBadRequest},
		{name: "no items", err: e.ErrNoOrderItems, code: http.StatusBadRequest},
		{name: "unknown", err: assert.AnError, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := ToHTTPResponse(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestToHTTPResponseInsufficientStockMessage(t *testing.T) {
	err := e.Wrap("OrderUseCase.CreateOrder", e.NewInsufficientStockError("Ручка", 1, 5))

	code, msg := ToHTTPResponse(err)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "insufficient stock for product: Ручка. Available: 1, Requested: 5", msg)
}
