package dto

import "kala/internal/domain/catalog"

type CatalogKindResponse struct {
	Kind    catalog.Kind     `json:"kind"`
	Options []catalog.Option `json:"options"`
}
