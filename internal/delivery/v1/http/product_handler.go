package http

import (
	"net/http"

	"github.com/orderhub-io/go-backend/internal/usecase"
	"github.com/orderhub-io/go-backend/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

type createProductRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock int64  `json:"stock"`
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Возвращает весь каталог товаров
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	SuccessResponse
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := p.productUsecase.ListProducts(r.Context())
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	res := make([]productResponse, 0, len(products))
	for _, product := range products {
		res = append(res, productResponse{
			ID:    product.ID,
			Name:  product.Name,
			Price: formatCents(product.Price),
			Stock: product.Stock,
		})
	}

	WriteSuccess(w, http.StatusOK, "", res)
}

// createProduct
//
//	@Summary		Добавление товара
//	@Description	Создает новый товар в каталоге
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createProductRequest	true	"Товар"
//	@Success		201		{object}	SuccessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.AddProduct(r.Context(), usecase.NewAddProductReq(req.Name, priceCents, req.Stock))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, "Product created successfully", productResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: formatCents(product.Price),
		Stock: product.Stock,
	})
}

// getProduct
//
//	@Summary		Информация о товаре
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"ID товара"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "", productResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: formatCents(product.Price),
		Stock: product.Stock,
	})
}

// updateProduct
//
//	@Summary		Обновление товара
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"ID товара"
//	@Param			request	body		createProductRequest	true	"Товар"
//	@Success		200		{object}	SuccessResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	priceCents, err := parsePriceToCents(req.Price)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), usecase.NewUpdateProductReq(id, req.Name, priceCents, req.Stock))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Product updated successfully", productResponse{
		ID:    product.ID,
		Name:  product.Name,
		Price: formatCents(product.Price),
		Stock: product.Stock,
	})
}

// deleteProduct
//
//	@Summary		Удаление товара
//	@Description	Удаляет товар, если он не входит ни в один заказ
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"ID товара"
//	@Success		200	{object}	SuccessResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Router			/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idFromURL(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}
