package product

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"kala/internal/domain/catalog"

	"github.com/google/uuid"
)

// Patch is an update-merge over the editable product fields.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Price       *string   `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *string   `json:"tags,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

type Suggestion struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

var suggestions = map[string]string{
	"title":       "Handwoven Cotton Scarf",
	"description": "Beautiful handwoven cotton scarf with traditional patterns, perfect for any season. Made with 100% organic cotton using sustainable practices.",
	"tags":        "#handwoven #cotton #scarf #sustainable #traditional #organic",
	"price":       "$45",
}

var suggestionOrder = []string{"title", "description", "price", "tags"}

var demoImages = []string{
	"https://images.unsplash.com/photo-1571945153237-4929e783af4a?w=300&h=300&fit=crop",
	"https://images.unsplash.com/photo-1434389677669-e08b4cac3105?w=300&h=300&fit=crop",
}

const PhotoTip = "Great lighting! These photos will get 40% more views."

type Recommendation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	// Keywords are appended to the tags when the recommendation is applied.
	Keywords []string `json:"keywords,omitempty"`
}

var recommendations = []Recommendation{
	{
		ID:          "trending_keywords",
		Title:       "Trending Keywords",
		Description: `Add "eco-friendly" and "sustainable" to increase visibility by 25%`,
		Icon:        "trending-up",
		Keywords:    []string{"#eco-friendly", "#sustainable"},
	},
	{
		ID:          "pricing",
		Title:       "Pricing Suggestion",
		Description: "Similar products sell for $40-50. Consider pricing at $45 for optimal sales.",
		Icon:        "dollar-sign",
	},
}

func Suggestions() []Suggestion {
	out := make([]Suggestion, 0, len(suggestionOrder))
	for _, f := range suggestionOrder {
		out = append(out, Suggestion{Field: f, Value: suggestions[f]})
	}
	return out
}

func Recommendations() []Recommendation {
	out := make([]Recommendation, len(recommendations))
	copy(out, recommendations)
	return out
}

// New returns an empty draft product owned by ownerID.
func New(ownerID uuid.UUID, now time.Time) Product {
	now = now.UTC()
	return Product{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Images:    []string{},
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p Product) clone() Product {
	out := p
	out.Images = slices.Clone(p.Images)
	return out
}

// Apply merges patch into a copy of p. A published product must stay
// publishable.
func (p Product) Apply(cat *catalog.Catalog, patch Patch, now time.Time) (Product, error) {
	next := p.clone()

	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Price != nil {
		next.Price = strings.TrimSpace(*patch.Price)
	}
	if patch.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*patch.Category))
		if c != "" {
			if _, err := cat.Option(catalog.KindProductCategories, c); err != nil {
				return p, err
			}
		}
		next.Category = c
	}
	if patch.Tags != nil {
		next.Tags = *patch.Tags
	}
	if patch.Images != nil {
		if len(*patch.Images) > MaxImages {
			return p, fmt.Errorf("%w: at most %d", ErrTooManyImages, MaxImages)
		}
		next.Images = slices.Clone(*patch.Images)
	}

	if next.Status == StatusPublished {
		if err := next.checkPublishable(); err != nil {
			return p, err
		}
	}
	next.UpdatedAt = now.UTC()
	return next, nil
}

// ApplySuggestion fills field with its fixed suggestion.
func (p Product) ApplySuggestion(field string, now time.Time) (Product, error) {
	v, ok := suggestions[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownSuggestion, field)
	}
	next := p.clone()
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "title":
		next.Title = v
	case "description":
		next.Description = v
	case "tags":
		next.Tags = v
	case "price":
		next.Price = v
	}
	next.UpdatedAt = now.UTC()
	return next, nil
}

// ApplyRecommendation appends a recommendation's keywords to the tags.
func (p Product) ApplyRecommendation(id string, now time.Time) (Product, error) {
	for _, r := range recommendations {
		if r.ID != id {
			continue
		}
		if len(r.Keywords) == 0 {
			return p, fmt.Errorf("%w: %q", ErrUnknownSuggestion, id)
		}
		next := p.clone()
		have := strings.Fields(next.Tags)
		for _, kw := range r.Keywords {
			if !slices.Contains(have, kw) {
				have = append(have, kw)
			}
		}
		next.Tags = strings.Join(have, " ")
		next.UpdatedAt = now.UTC()
		return next, nil
	}
	return p, fmt.Errorf("%w: %q", ErrUnknownSuggestion, id)
}

// AttachDemoImages stands in for the image picker.
func (p Product) AttachDemoImages(now time.Time) Product {
	next := p.clone()
	next.Images = slices.Clone(demoImages)
	next.UpdatedAt = now.UTC()
	return next
}

// Tip is the photo hint shown once the product has images.
func (p Product) Tip() string {
	if len(p.Images) == 0 {
		return ""
	}
	return PhotoTip
}

func (p Product) Publish(now time.Time) (Product, error) {
	if err := p.checkPublishable(); err != nil {
		return p, err
	}
	next := p.clone()
	next.Status = StatusPublished
	next.UpdatedAt = now.UTC()
	return next, nil
}

func (p Product) checkPublishable() error {
	var missing []string
	if strings.TrimSpace(p.Title) == "" {
		missing = append(missing, "title")
	}
	if v, err := ParsePrice(p.Price); err != nil || v <= 0 {
		missing = append(missing, "price")
	}
	if p.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return &IncompleteError{Missing: missing}
	}
	return nil
}

// ParsePrice reads prices like "$45", "₹1,250" or "99.50".
func ParsePrice(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimPrefix(v, "$")
	v = strings.TrimPrefix(v, "₹")
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	return f, nil
}
