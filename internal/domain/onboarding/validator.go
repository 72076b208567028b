package onboarding

import "strings"

// Notice is the blocking message shown when a step cannot be left.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Result struct {
	Step    Step     `json:"step"`
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Notice  *Notice  `json:"notice,omitempty"`
}

type rule struct {
	reason string
	notice Notice
	check  func(d Draft) []string
}

var rules = map[Step]rule{
	StepIdentity: {
		reason: "name and language required",
		notice: Notice{Title: "Incomplete", Message: "Please fill in your name and select a language."},
		check: func(d Draft) (missing []string) {
			if strings.TrimSpace(d.FullName) == "" {
				missing = append(missing, "full_name")
			}
			if d.PreferredLanguage == nil {
				missing = append(missing, "preferred_language")
			}
			return missing
		},
	},
	StepProfile: {
		reason: "craft category and experience level required",
		notice: Notice{Title: "Incomplete", Message: "Please select your craft category and experience level."},
		check: func(d Draft) (missing []string) {
			if d.CraftCategory == "" {
				missing = append(missing, "craft_category")
			}
			if d.ExperienceLevel == "" {
				missing = append(missing, "experience_level")
			}
			return missing
		},
	},
	StepBusiness: {
		reason: "product type and price range required",
		notice: Notice{Title: "Incomplete", Message: "Please select at least one product type and a price range."},
		check: func(d Draft) (missing []string) {
			if len(d.ProductTypes) == 0 {
				missing = append(missing, "product_types")
			}
			if d.PriceRangeTier == "" {
				missing = append(missing, "price_range_tier")
			}
			return missing
		},
	},
	StepPresence: {
		reason: "at least one platform required",
		notice: Notice{Title: "No Platforms Selected", Message: "Please select at least one platform where you want to showcase your work."},
		check: func(d Draft) (missing []string) {
			if len(d.SelectedPlatforms) == 0 {
				missing = append(missing, "selected_platforms")
			}
			return missing
		},
	},
	StepGoals: {
		reason: "primary goal required",
		notice: Notice{Title: "Primary Goal Required", Message: "Please select your main goal for using కళ."},
		check: func(d Draft) (missing []string) {
			if len(d.PrimaryGoals) == 0 {
				missing = append(missing, "primary_goals")
			}
			return missing
		},
	},
}

// CompletionNotice is shown once the goals step commits the profile.
var CompletionNotice = Notice{
	Title:   "Profile Complete! 🎉",
	Message: "Welcome to కళ! Your artisan profile is now set up. Let's start growing your craft business together.",
}

// Validate reports whether step's required fields are present in d.
func Validate(step Step, d Draft) Result {
	r, ok := rules[step]
	if !ok {
		return Result{Step: step, Reason: ErrUnknownStep.Error()}
	}
	missing := r.check(d)
	if len(missing) == 0 {
		return Result{Step: step, Valid: true}
	}
	n := r.notice
	return Result{Step: step, Reason: r.reason, Missing: missing, Notice: &n}
}

// ValidateAll returns the result of the first step that does not validate,
// or a valid goals result when every step passes.
func ValidateAll(d Draft) Result {
	for _, s := range Steps() {
		if res := Validate(s, d); !res.Valid {
			return res
		}
	}
	return Result{Step: StepGoals, Valid: true}
}
