package dto

import "kala/internal/domain/product"

type ProductListResponse struct {
	Filter product.Filter    `json:"filter"`
	Count  int               `json:"count"`
	Items  []product.Product `json:"items"`
}
