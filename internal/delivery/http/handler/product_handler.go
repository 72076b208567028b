package handler

import (
	"kala/internal/delivery/http/dto"
	"kala/internal/domain/product"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type ProductHandler struct {
	uc usecase.ProductUsecase
}

func NewProductHandler(uc usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	g := r.Group("/products")
	g.Get("", h.List)
	g.Post("", h.Create)
	g.Get("/:id", h.Get)
	g.Patch("/:id", h.Update)
	g.Post("/:id/suggestions/:field", h.ApplySuggestion)
	g.Post("/:id/recommendations/:rec", h.ApplyRecommendation)
	g.Post("/:id/images/demo", h.AttachDemoImages)
	g.Post("/:id/publish", h.Publish)
}

func (h *ProductHandler) List(c fiber.Ctx) error {
	owner, err := sessionID(c)
	if err != nil {
		return err
	}
	filter, err := product.ParseFilter(c.Query("filter"))
	if err != nil {
		return mapUsecaseError(err)
	}
	items, err := h.uc.List(c.Context(), owner, string(filter))
	if err != nil {
		return mapUsecaseError(err)
	}
	if items == nil {
		items = []product.Product{}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ProductListResponse{
		Filter: filter,
		Count:  len(items),
		Items:  items,
	})
}

func (h *ProductHandler) Create(c fiber.Ctx) error {
	owner, err := sessionID(c)
	if err != nil {
		return err
	}
	var patch product.Patch
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&patch); err != nil {
			return badRequest(err)
		}
	}
	v, err := h.uc.Create(c.Context(), owner, patch)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, v)
}

func (h *ProductHandler) Get(c fiber.Ctx) error {
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.Get(c.Context(), owner, id)
	})
}

func (h *ProductHandler) Update(c fiber.Ctx) error {
	var patch product.Patch
	if err := c.Bind().Body(&patch); err != nil {
		return badRequest(err)
	}
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.Update(c.Context(), owner, id, patch)
	})
}

func (h *ProductHandler) ApplySuggestion(c fiber.Ctx) error {
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.ApplySuggestion(c.Context(), owner, id, c.Params("field"))
	})
}

func (h *ProductHandler) ApplyRecommendation(c fiber.Ctx) error {
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.ApplyRecommendation(c.Context(), owner, id, c.Params("rec"))
	})
}

func (h *ProductHandler) AttachDemoImages(c fiber.Ctx) error {
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.AttachDemoImages(c.Context(), owner, id)
	})
}

func (h *ProductHandler) Publish(c fiber.Ctx) error {
	return h.withProduct(c, func(owner, id uuid.UUID) (usecase.ProductView, error) {
		return h.uc.Publish(c.Context(), owner, id)
	})
}

func (h *ProductHandler) withProduct(c fiber.Ctx, fn func(owner, id uuid.UUID) (usecase.ProductView, error)) error {
	owner, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	v, err := fn(owner, id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, v)
}
