package domain

import "time"

// Product описывает товар на складе
type Product struct {
	ID        int64
	Name      string
	Price     int64 // Цена хранится в копейках
	Stock     int64 // Остаток на складе, не может быть отрицательным
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func NewProduct(name string, price int64, stock int64) *Product {
	return &Product{
		Name:  name,
		Price: price,
		Stock: stock,
	}
}
