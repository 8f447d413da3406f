package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gkats/catalog-api/internal/core/ports"
)

// ProductHandler serves the catalog endpoints.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /api/v1/products.
//
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  productListResponse
// @Failure      401  {object}  map[string]string
// @Router       /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	items, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(items))
}

// Get handles GET /api/v1/products/:id.
//
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  domain.Product
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ByCategory handles GET /api/v1/products/category/:category.
//
// @Summary      List products in a category
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        category  path      string  true  "Category, matched ignoring case"
// @Success      200       {object}  productListResponse
// @Failure      400       {object}  map[string]string
// @Router       /products/category/{category} [get]
func (h *ProductHandler) ByCategory(c echo.Context) error {
	items, err := h.service.ProductsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(items))
}

// ByPriceRange handles GET /api/v1/products/price?min=&max=.
//
// @Summary      List products within a price range
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        min  query     number  true  "Lowest price, inclusive"
// @Param        max  query     number  true  "Highest price, inclusive"
// @Success      200  {object}  productListResponse
// @Failure      400  {object}  map[string]string
// @Router       /products/price [get]
func (h *ProductHandler) ByPriceRange(c echo.Context) error {
	min, err := floatQueryParam(c, "min")
	if err != nil {
		return err
	}
	max, err := floatQueryParam(c, "max")
	if err != nil {
		return err
	}

	items, err := h.service.ProductsByPriceRange(c.Request().Context(), min, max)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(items))
}

// Search handles GET /api/v1/products/search?name=.
//
// @Summary      Search products by name
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Substring of the product name"
// @Success      200   {object}  productListResponse
// @Failure      400   {object}  map[string]string
// @Router       /products/search [get]
func (h *ProductHandler) Search(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	items, err := h.service.SearchProducts(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProductList(items))
}

// Categories handles GET /api/v1/categories.
//
// @Summary      List distinct categories
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Router       /categories [get]
func (h *ProductHandler) Categories(c echo.Context) error {
	cats, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cats})
}

// Create handles POST /api/v1/products. Admin only.
//
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product fields"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.CreateProduct(c.Request().Context(), ports.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/v1/products/:id. Fields left out of the body keep
// their stored values. Admin only.
//
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product ID"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  domain.Product
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	p, err := h.service.UpdateProduct(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/v1/products/:id. Admin only.
//
// @Summary      Delete a product
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "Product ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func floatQueryParam(c echo.Context, name string) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a number")
	}
	return v, nil
}
