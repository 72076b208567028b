package handler

import (
	"errors"

	"kala/internal/delivery/http/dto"
	"kala/internal/delivery/http/middleware"
	"kala/internal/domain/catalog"
	"kala/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

func (h *CatalogHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/catalog", h.All)
	r.Get("/catalog/:kind", h.Kind)
}

func (h *CatalogHandler) All(c fiber.Ctx) error {
	out := make(map[catalog.Kind][]catalog.Option, len(catalog.Kinds()))
	for _, k := range catalog.Kinds() {
		opts, err := h.cat.Options(k)
		if err != nil {
			return mapUsecaseError(err)
		}
		out[k] = opts
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *CatalogHandler) Kind(c fiber.Ctx) error {
	kind, err := catalog.ParseKind(c.Params("kind"))
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownKind) {
			return middleware.NewAppError(fiber.StatusNotFound, "Unknown catalog kind", nil, err)
		}
		return mapUsecaseError(err)
	}
	opts, err := h.cat.Options(kind)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CatalogKindResponse{Kind: kind, Options: opts})
}
