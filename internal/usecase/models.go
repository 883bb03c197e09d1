package usecase

// ORDER USECASE

// CreateOrderReq — провалидированная снаружи команда на создание заказа.
type CreateOrderReq struct {
	CustomerName string
	Items        []OrderItemReq
}

// OrderItemReq — запрошенная позиция заказа.
type OrderItemReq struct {
	ProductID int64
	Quantity  int64
}

// UpdateOrderStatusReq — команда на смену статуса заказа.
type UpdateOrderStatusReq struct {
	OrderID int64
	Status  string
}

// PRODUCT USECASE

// AddProductReq — запрос на добавление нового товара.
type AddProductReq struct {
	Name  string
	Price int64
	Stock int64
}

// UpdateProductReq — запрос на обновление товара.
type UpdateProductReq struct {
	ID    int64
	Name  string
	Price int64
	Stock int64
}

// ProductInfo — DTO с информацией о товаре для внешнего использования.
type ProductInfo struct {
	ID    int64
	Name  string
	Price int64
	Stock int64
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	OrderID int64
	Payload []byte
}

// MAPPERS

func NewCreateOrderReq(customerName string, items []OrderItemReq) *CreateOrderReq {
	return &CreateOrderReq{
		CustomerName: customerName,
		Items:        items,
	}
}

func NewUpdateOrderStatusReq(orderID int64, status string) *UpdateOrderStatusReq {
	return &UpdateOrderStatusReq{
		OrderID: orderID,
		Status:  status,
	}
}

func NewAddProductReq(name string, price int64, stock int64) *AddProductReq {
	return &AddProductReq{
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func NewUpdateProductReq(id int64, name string, price int64, stock int64) *UpdateProductReq {
	return &UpdateProductReq{
		ID:    id,
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func NewProductInfo(id int64, name string, price int64, stock int64) ProductInfo {
	return ProductInfo{
		ID:    id,
		Name:  name,
		Price: price,
		Stock: stock,
	}
}

func NewWriteRawMessageReq(orderID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		OrderID: orderID,
		Payload: payload,
	}
}
