package handler

import "github.com/gkats/catalog-api/internal/core/domain"

type createProductRequest struct {
	Name        string  `json:"name"        validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Category    string  `json:"category"    validate:"required,max=100"`
	Price       float64 `json:"price"       validate:"gte=0"`
	Quantity    int     `json:"quantity"    validate:"gte=0"`
	ImageURL    string  `json:"image_url"   validate:"omitempty,url"`
}

// updateProductRequest is a partial update: omitted or null fields keep the
// stored value.
type updateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Category    *string  `json:"category"    validate:"omitempty,min=1,max=100"`
	Price       *float64 `json:"price"       validate:"omitempty,gte=0"`
	Quantity    *int     `json:"quantity"    validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"image_url"   validate:"omitempty,url"`
}

func (r updateProductRequest) toPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Quantity:    r.Quantity,
		ImageURL:    r.ImageURL,
	}
}

type productListResponse struct {
	Items []*domain.Product `json:"items"`
	Count int               `json:"count"`
}

func newProductList(items []*domain.Product) productListResponse {
	if items == nil {
		items = []*domain.Product{}
	}
	return productListResponse{Items: items, Count: len(items)}
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}
