package usecase

import (
	"context"
	"time"

	"kala/internal/domain/catalog"
	"kala/internal/domain/product"

	"github.com/google/uuid"
)

// ProductView carries the product with the hints shown next to the form.
type ProductView struct {
	Product         product.Product          `json:"product"`
	PhotoTip        string                   `json:"photo_tip,omitempty"`
	Suggestions     []product.Suggestion     `json:"suggestions"`
	Recommendations []product.Recommendation `json:"recommendations"`
}

type ProductUsecase interface {
	Create(ctx context.Context, owner uuid.UUID, p product.Patch) (ProductView, error)
	Get(ctx context.Context, owner, id uuid.UUID) (ProductView, error)
	Update(ctx context.Context, owner, id uuid.UUID, p product.Patch) (ProductView, error)
	ApplySuggestion(ctx context.Context, owner, id uuid.UUID, field string) (ProductView, error)
	ApplyRecommendation(ctx context.Context, owner, id uuid.UUID, recommendationID string) (ProductView, error)
	AttachDemoImages(ctx context.Context, owner, id uuid.UUID) (ProductView, error)
	Publish(ctx context.Context, owner, id uuid.UUID) (ProductView, error)
	List(ctx context.Context, owner uuid.UUID, filter string) ([]product.Product, error)
}

type Products struct {
	repo  product.Repository
	cat   *catalog.Catalog
	locks *SessionLocks
	now   func() time.Time
}

func NewProductUsecase(repo product.Repository, cat *catalog.Catalog) *Products {
	return &Products{repo: repo, cat: cat, locks: NewSessionLocks(), now: time.Now}
}

// Create saves a new draft. An empty patch is a valid draft.
func (u *Products) Create(ctx context.Context, owner uuid.UUID, p product.Patch) (ProductView, error) {
	now := u.now()
	prod, err := product.New(owner, now).Apply(u.cat, p, now)
	if err != nil {
		return ProductView{}, err
	}
	if err := u.repo.Create(ctx, prod); err != nil {
		return ProductView{}, err
	}
	return productView(prod), nil
}

func (u *Products) Get(ctx context.Context, owner, id uuid.UUID) (ProductView, error) {
	prod, err := u.repo.Get(ctx, owner, id)
	if err != nil {
		return ProductView{}, err
	}
	return productView(prod), nil
}

func (u *Products) Update(ctx context.Context, owner, id uuid.UUID, p product.Patch) (ProductView, error) {
	return u.mutate(ctx, owner, id, func(prod product.Product, now time.Time) (product.Product, error) {
		return prod.Apply(u.cat, p, now)
	})
}

func (u *Products) ApplySuggestion(ctx context.Context, owner, id uuid.UUID, field string) (ProductView, error) {
	return u.mutate(ctx, owner, id, func(prod product.Product, now time.Time) (product.Product, error) {
		return prod.ApplySuggestion(field, now)
	})
}

func (u *Products) ApplyRecommendation(ctx context.Context, owner, id uuid.UUID, recommendationID string) (ProductView, error) {
	return u.mutate(ctx, owner, id, func(prod product.Product, now time.Time) (product.Product, error) {
		return prod.ApplyRecommendation(recommendationID, now)
	})
}

func (u *Products) AttachDemoImages(ctx context.Context, owner, id uuid.UUID) (ProductView, error) {
	return u.mutate(ctx, owner, id, func(prod product.Product, now time.Time) (product.Product, error) {
		return prod.AttachDemoImages(now), nil
	})
}

func (u *Products) Publish(ctx context.Context, owner, id uuid.UUID) (ProductView, error) {
	return u.mutate(ctx, owner, id, func(prod product.Product, now time.Time) (product.Product, error) {
		return prod.Publish(now)
	})
}

func (u *Products) List(ctx context.Context, owner uuid.UUID, filter string) ([]product.Product, error) {
	f, err := product.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return u.repo.List(ctx, owner, f)
}

func (u *Products) mutate(ctx context.Context, owner, id uuid.UUID, fn func(product.Product, time.Time) (product.Product, error)) (ProductView, error) {
	unlock := u.locks.Lock(id)
	defer unlock()

	prod, err := u.repo.Get(ctx, owner, id)
	if err != nil {
		return ProductView{}, err
	}
	next, err := fn(prod, u.now())
	if err != nil {
		return ProductView{}, err
	}
	if err := u.repo.Update(ctx, next); err != nil {
		return ProductView{}, err
	}
	return productView(next), nil
}

func productView(p product.Product) ProductView {
	return ProductView{
		Product:         p,
		PhotoTip:        p.Tip(),
		Suggestions:     product.Suggestions(),
		Recommendations: product.Recommendations(),
	}
}
