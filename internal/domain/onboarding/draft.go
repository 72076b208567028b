package onboarding

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"kala/internal/domain/catalog"
)

// Draft accumulates everything the wizard collects. It is committed as the
// artisan profile once the goals step completes.
type Draft struct {
	FullName            string            `json:"full_name"`
	PreferredLanguage   *catalog.Language `json:"preferred_language"`
	CraftCategory       string            `json:"craft_category"`
	Specialization      string            `json:"specialization"`
	Story               string            `json:"story"`
	ExperienceLevel     string            `json:"experience_level"`
	ProductTypes        []string          `json:"product_types"`
	PriceRangeTier      string            `json:"price_range_tier"`
	SelectedPlatforms   []string          `json:"selected_platforms"`
	ConnectedPlatforms  []string          `json:"connected_platforms"`
	PrimaryGoals        []string          `json:"primary_goals"`
	AdditionalGoals     []string          `json:"additional_goals"`
	CustomGoalText      string            `json:"custom_goal_text"`
	MonthlyTargetAmount string            `json:"monthly_target_amount"`
}

// DraftPatch is an update-merge over Draft. Nil fields are left unchanged,
// set fields replace the whole set, and an empty string clears an enum.
type DraftPatch struct {
	FullName            *string   `json:"full_name,omitempty"`
	PreferredLanguage   *string   `json:"preferred_language,omitempty"`
	CraftCategory       *string   `json:"craft_category,omitempty"`
	Specialization      *string   `json:"specialization,omitempty"`
	Story               *string   `json:"story,omitempty"`
	ExperienceLevel     *string   `json:"experience_level,omitempty"`
	ProductTypes        *[]string `json:"product_types,omitempty"`
	PriceRangeTier      *string   `json:"price_range_tier,omitempty"`
	SelectedPlatforms   *[]string `json:"selected_platforms,omitempty"`
	PrimaryGoals        *[]string `json:"primary_goals,omitempty"`
	AdditionalGoals     *[]string `json:"additional_goals,omitempty"`
	CustomGoalText      *string   `json:"custom_goal_text,omitempty"`
	MonthlyTargetAmount *string   `json:"monthly_target_amount,omitempty"`
}

// SetField names a multi-select field of the draft.
type SetField string

const (
	FieldProductTypes      SetField = "product_types"
	FieldSelectedPlatforms SetField = "selected_platforms"
	FieldPrimaryGoals      SetField = "primary_goals"
	FieldAdditionalGoals   SetField = "additional_goals"
)

var setFieldKinds = map[SetField]catalog.Kind{
	FieldProductTypes:      catalog.KindProductTypes,
	FieldSelectedPlatforms: catalog.KindPlatforms,
	FieldPrimaryGoals:      catalog.KindPrimaryGoals,
	FieldAdditionalGoals:   catalog.KindAdditionalGoals,
}

func ParseSetField(v string) (SetField, error) {
	f := SetField(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := setFieldKinds[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, v)
	}
	return f, nil
}

func (d Draft) Clone() Draft {
	out := d
	if d.PreferredLanguage != nil {
		l := *d.PreferredLanguage
		out.PreferredLanguage = &l
	}
	out.ProductTypes = slices.Clone(d.ProductTypes)
	out.SelectedPlatforms = slices.Clone(d.SelectedPlatforms)
	out.ConnectedPlatforms = slices.Clone(d.ConnectedPlatforms)
	out.PrimaryGoals = slices.Clone(d.PrimaryGoals)
	out.AdditionalGoals = slices.Clone(d.AdditionalGoals)
	return out
}

// Apply merges p into a copy of d. Nothing is changed when any field of p
// is rejected.
func (d Draft) Apply(cat *catalog.Catalog, p DraftPatch) (Draft, error) {
	next := d.Clone()

	if p.FullName != nil {
		next.FullName = *p.FullName
	}
	if p.PreferredLanguage != nil {
		if code := strings.TrimSpace(*p.PreferredLanguage); code == "" {
			next.PreferredLanguage = nil
		} else {
			lang, err := cat.Language(code)
			if err != nil {
				return d, err
			}
			next.PreferredLanguage = &lang
		}
	}

	enums := []struct {
		val  *string
		kind catalog.Kind
		dst  *string
	}{
		{p.CraftCategory, catalog.KindCraftCategories, &next.CraftCategory},
		{p.ExperienceLevel, catalog.KindExperienceLevels, &next.ExperienceLevel},
		{p.PriceRangeTier, catalog.KindPriceTiers, &next.PriceRangeTier},
	}
	for _, e := range enums {
		if e.val == nil {
			continue
		}
		id := strings.TrimSpace(*e.val)
		if id != "" {
			if _, err := cat.Option(e.kind, id); err != nil {
				return d, err
			}
		}
		*e.dst = id
	}

	sets := []struct {
		val   *[]string
		field SetField
		dst   *[]string
	}{
		{p.ProductTypes, FieldProductTypes, &next.ProductTypes},
		{p.SelectedPlatforms, FieldSelectedPlatforms, &next.SelectedPlatforms},
		{p.PrimaryGoals, FieldPrimaryGoals, &next.PrimaryGoals},
		{p.AdditionalGoals, FieldAdditionalGoals, &next.AdditionalGoals},
	}
	for _, s := range sets {
		if s.val == nil {
			continue
		}
		ids, err := normalizeSet(cat, setFieldKinds[s.field], *s.val)
		if err != nil {
			return d, err
		}
		*s.dst = ids
	}

	if p.Specialization != nil {
		next.Specialization = *p.Specialization
	}
	if p.Story != nil {
		next.Story = *p.Story
	}
	if p.CustomGoalText != nil {
		next.CustomGoalText = *p.CustomGoalText
	}
	if p.MonthlyTargetAmount != nil {
		amount, err := normalizeTarget(*p.MonthlyTargetAmount)
		if err != nil {
			return d, err
		}
		next.MonthlyTargetAmount = amount
	}

	next.ConnectedPlatforms = keepSelected(next.ConnectedPlatforms, next.SelectedPlatforms)
	return next, nil
}

// Toggle flips membership of id in the given set field.
func (d Draft) Toggle(cat *catalog.Catalog, field SetField, id string) (Draft, error) {
	kind, ok := setFieldKinds[field]
	if !ok {
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	id = strings.TrimSpace(id)
	if _, err := cat.Option(kind, id); err != nil {
		return d, err
	}

	next := d.Clone()
	dst := next.set(field)
	if i := slices.Index(*dst, id); i >= 0 {
		*dst = slices.Delete(*dst, i, i+1)
	} else {
		*dst = append(*dst, id)
	}
	next.ConnectedPlatforms = keepSelected(next.ConnectedPlatforms, next.SelectedPlatforms)
	return next, nil
}

// ConnectPlatform marks a selected platform as connected. Connecting twice
// is a no-op.
func (d Draft) ConnectPlatform(cat *catalog.Catalog, id string) (Draft, error) {
	id = strings.TrimSpace(id)
	if _, err := cat.Option(catalog.KindPlatforms, id); err != nil {
		return d, err
	}
	if !slices.Contains(d.SelectedPlatforms, id) {
		return d, fmt.Errorf("%w: %q", ErrPlatformNotSelected, id)
	}
	next := d.Clone()
	if !slices.Contains(next.ConnectedPlatforms, id) {
		next.ConnectedPlatforms = append(next.ConnectedPlatforms, id)
	}
	return next, nil
}

func (d *Draft) set(field SetField) *[]string {
	switch field {
	case FieldProductTypes:
		return &d.ProductTypes
	case FieldSelectedPlatforms:
		return &d.SelectedPlatforms
	case FieldPrimaryGoals:
		return &d.PrimaryGoals
	default:
		return &d.AdditionalGoals
	}
}

func normalizeSet(cat *catalog.Catalog, kind catalog.Kind, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, err := cat.Option(kind, id); err != nil {
			return nil, err
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func normalizeTarget(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTarget, v)
	}
	return v, nil
}

func keepSelected(connected, selected []string) []string {
	if len(connected) == 0 {
		return connected
	}
	out := connected[:0]
	for _, id := range connected {
		if slices.Contains(selected, id) {
			out = append(out, id)
		}
	}
	return out
}
