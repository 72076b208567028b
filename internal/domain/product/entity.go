package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrIncompleteProduct = errors.New("product is incomplete")
	ErrTooManyImages     = errors.New("too many images")
	ErrUnknownSuggestion = errors.New("no suggestion for field")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidFilter     = errors.New("invalid product filter")
)

const MaxImages = 5

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Product struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Tags        string    `json:"tags"`
	Images      []string  `json:"images"`
	Status      Status    `json:"status"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IncompleteError lists the fields that block publishing.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteProduct, strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Is(target error) bool { return target == ErrIncompleteProduct }

// Filter selects products on the products tab.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPublished Filter = "published"
	FilterDraft     Filter = "draft"
)

func ParseFilter(v string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPublished, FilterDraft:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, v)
	}
}

func (f Filter) Match(p Product) bool {
	switch f {
	case FilterPublished:
		return p.Status == StatusPublished
	case FilterDraft:
		return p.Status == StatusDraft
	default:
		return true
	}
}

type Repository interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	Get(ctx context.Context, ownerID, id uuid.UUID) (Product, error)
	List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Product, error)
}
