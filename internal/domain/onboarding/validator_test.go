package onboarding

import (
	"testing"

	"kala/internal/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var telugu = &catalog.Language{Code: "te", Name: "Telugu", NativeName: "తెలుగు"}

func completeDraft() Draft {
	return Draft{
		FullName:          "Maya",
		PreferredLanguage: telugu,
		CraftCategory:     "pottery",
		ExperienceLevel:   "expert",
		ProductTypes:      []string{"pottery"},
		PriceRangeTier:    "premium",
		SelectedPlatforms: []string{"instagram"},
		PrimaryGoals:      []string{"visibility"},
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		draft   Draft
		valid   bool
		reason  string
		missing []string
	}{
		{"identity blank name", StepIdentity, Draft{FullName: "   ", PreferredLanguage: telugu}, false, "name and language required", []string{"full_name"}},
		{"identity no language", StepIdentity, Draft{FullName: "Maya"}, false, "name and language required", []string{"preferred_language"}},
		{"identity ok", StepIdentity, Draft{FullName: "Maya", PreferredLanguage: telugu}, true, "", nil},
		{"profile empty", StepProfile, Draft{Specialization: "blue pottery"}, false, "craft category and experience level required", []string{"craft_category", "experience_level"}},
		{"profile ok without optional fields", StepProfile, Draft{CraftCategory: "pottery", ExperienceLevel: "new"}, true, "", nil},
		{"business empty set with tier", StepBusiness, Draft{ProductTypes: []string{}, PriceRangeTier: "premium"}, false, "product type and price range required", []string{"product_types"}},
		{"business ok", StepBusiness, Draft{ProductTypes: []string{"sarees"}, PriceRangeTier: "budget"}, true, "", nil},
		{"presence empty", StepPresence, Draft{}, false, "at least one platform required", []string{"selected_platforms"}},
		{"goals additional only", StepGoals, Draft{AdditionalGoals: []string{"time-saving"}}, false, "primary goal required", []string{"primary_goals"}},
		{"goals ok", StepGoals, Draft{PrimaryGoals: []string{"insights"}}, true, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.step, tt.draft)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Equal(t, tt.missing, res.Missing)
			assert.Equal(t, tt.step, res.Step)
			if tt.valid {
				assert.Nil(t, res.Notice)
			} else {
				require.NotNil(t, res.Notice)
				assert.NotEmpty(t, res.Notice.Title)
			}
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	d := Draft{FullName: "", PreferredLanguage: telugu}
	first := Validate(StepIdentity, d)
	second := Validate(StepIdentity, d)
	assert.Equal(t, first, second)
}

func TestValidate_NoticeText(t *testing.T) {
	res := Validate(StepPresence, Draft{})
	require.NotNil(t, res.Notice)
	assert.Equal(t, "No Platforms Selected", res.Notice.Title)
	assert.Equal(t, "Please select at least one platform where you want to showcase your work.", res.Notice.Message)
}

func TestValidate_UnknownStep(t *testing.T) {
	res := Validate(Step(9), completeDraft())
	assert.False(t, res.Valid)
}

func TestValidateAll_FirstFailingStep(t *testing.T) {
	d := completeDraft()
	assert.True(t, ValidateAll(d).Valid)

	d.PriceRangeTier = ""
	d.SelectedPlatforms = nil
	res := ValidateAll(d)
	assert.False(t, res.Valid)
	assert.Equal(t, StepBusiness, res.Step)
}

func TestComputeProgress(t *testing.T) {
	p := ComputeProgress(Draft{})
	assert.Equal(t, 0, p.Completed)
	assert.Equal(t, 0, p.Percentage)
	assert.Len(t, p.Steps, TotalSteps)

	d := Draft{FullName: "Maya", PreferredLanguage: telugu, CraftCategory: "pottery", ExperienceLevel: "new"}
	p = ComputeProgress(d)
	assert.Equal(t, 2, p.Completed)
	assert.Equal(t, 40, p.Percentage)
	assert.True(t, p.Steps[0].Completed)
	assert.Equal(t, "/(onboarding)/identity", p.Steps[0].Route)
	assert.False(t, p.Steps[2].Completed)

	assert.Equal(t, 100, ComputeProgress(completeDraft()).Percentage)
}

func TestComputeProgress_MonotonicInOrder(t *testing.T) {
	full := completeDraft()
	fills := []func(*Draft){
		func(d *Draft) { d.FullName, d.PreferredLanguage = full.FullName, full.PreferredLanguage },
		func(d *Draft) { d.CraftCategory, d.ExperienceLevel = full.CraftCategory, full.ExperienceLevel },
		func(d *Draft) { d.ProductTypes, d.PriceRangeTier = full.ProductTypes, full.PriceRangeTier },
		func(d *Draft) { d.SelectedPlatforms = full.SelectedPlatforms },
		func(d *Draft) { d.PrimaryGoals = full.PrimaryGoals },
	}

	var d Draft
	last := ComputeProgress(d).Percentage
	for i, fill := range fills {
		fill(&d)
		p := ComputeProgress(d)
		assert.GreaterOrEqual(t, p.Percentage, last)
		assert.Equal(t, 100*(i+1)/TotalSteps, p.Percentage)
		last = p.Percentage
	}
}

func TestStep_RoutesAndParse(t *testing.T) {
	assert.Equal(t, "/(onboarding)/goals", StepGoals.Route())
	assert.Equal(t, 3, StepBusiness.Ordinal())

	s, err := ParseStep("Presence")
	require.NoError(t, err)
	assert.Equal(t, StepPresence, s)

	s, err = ParseStep("2")
	require.NoError(t, err)
	assert.Equal(t, StepProfile, s)

	_, err = ParseStep("6")
	assert.ErrorIs(t, err, ErrUnknownStep)

	_, ok := StepGoals.Next()
	assert.False(t, ok)
}
