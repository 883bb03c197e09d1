package http

import (
	"net/http"

	"github.com/orderhub-io/go-backend/internal/usecase"
	"github.com/orderhub-io/go-backend/pkg/logger"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

type createOrderRequest struct {
	CustomerName string                   `json:"customer_name"`
	Items        []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type updateOrderRequest struct {
	Status string `json:"status"`
}

// createOrder
//
//	@Summary		Создание заказа
//	@Description	Атомарно проверяет остатки, создает заказ и списывает товар со склада
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createOrderRequest	true	"Заказ"
//	@Success		201		{object}	SuccessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Недостаточно товара на складе"
//	@Router			/orders [post]
func (o *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeBody(r, &req); err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	items := make([]usecase.OrderItemReq, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.OrderItemReq{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := o.orderUsecase.CreateOrder(r.Context(), usecase.NewCreateOrderReq(req.CustomerName, items))
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, "Order created successfully", toOrderResponse(order))
}

// getOrder
//
//	@Summary		Информация о заказе
//	@Description	Возвращает заказ с позициями и связанными товарами
//	@Tags			orders
//	@Produce		json
//	@Param			id	path		int	true	"ID заказа"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/orders/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.GetOrder(r.Context(), id)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "", toOrderResponse(order))
}

// updateOrderStatus
//
//	@Summary		Смена статуса заказа
//	@Description	Переводит заказ в новый статус; при переходе в cancelled возвращает остатки на склад
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"ID заказа"
//	@Param			request	body		updateOrderRequest	true	"Новый статус"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id} [put]
func (o *OrderHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req updateOrderRequest
	if err := decodeBody(r, &req); err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.UpdateOrderStatus(r.Context(), usecase.NewUpdateOrderStatusReq(id, req.Status))
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Order status updated successfully", toOrderResponse(order))
}

// cancelOrder
//
//	@Summary		Отмена заказа
//	@Description	Отменяет заказ и возвращает остатки на склад; завершенный заказ отменить нельзя
//	@Tags			orders
//	@Produce		json
//	@Param			id	path		int	true	"ID заказа"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse	"Заказ уже завершен"
//	@Router			/orders/{id} [delete]
func (o *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	order, err := o.orderUsecase.CancelOrder(r.Context(), id)
	if err != nil {
		o.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Order cancelled successfully", toOrderResponse(order))
}
