package api

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"shop-platform/internal/entity"
	"shop-platform/internal/service"
)

// Catalog is the product listing surface used by the storefront.
type Catalog interface {
	Query(ctx context.Context, q service.CatalogQuery) ([]*entity.Product, error)
	Categories(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
}

type CatalogHandler struct {
	catalog Catalog
}

func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetProducts lists products --> /products?q=&category=&sort=
func (h *CatalogHandler) GetProducts(c echo.Context) error {
	products, err := h.catalog.Query(c.Request().Context(), service.CatalogQuery{
		Search:   c.QueryParam("q"),
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to list products"})
	}

	return c.JSON(200, products)
}

// GetCategories lists distinct categories --> /categories
func (h *CatalogHandler) GetCategories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return c.JSON(500, map[string]string{"error": "failed to list categories"})
	}

	return c.JSON(200, categories)
}

// GetProduct retrieves a product by ID --> /products/:id
func (h *CatalogHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return c.JSON(404, map[string]string{"error": "product not found"})
	}

	return c.JSON(200, product)
}
