package domain

// OrderItem — позиция заказа: количество одного товара по зафиксированной цене.
// Price снимается с товара в момент создания заказа и больше не меняется.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Price     int64 // Копия цены товара на момент оформления, в копейках
	Product   *Product
}

func NewOrderItem(productID int64, quantity int64, price int64) *OrderItem {
	return &OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}
}
