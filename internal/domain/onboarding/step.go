package onboarding

import (
	"fmt"
	"strconv"
	"strings"
)

type Step int

const (
	StepIdentity Step = iota + 1
	StepProfile
	StepBusiness
	StepPresence
	StepGoals
)

const TotalSteps = 5

var stepNames = map[Step]string{
	StepIdentity: "identity",
	StepProfile:  "profile",
	StepBusiness: "business",
	StepPresence: "presence",
	StepGoals:    "goals",
}

var stepTitles = map[Step]string{
	StepIdentity: "Tell us about yourself",
	StepProfile:  "Your craft profile",
	StepBusiness: "Your business",
	StepPresence: "Online presence",
	StepGoals:    "Your goals",
}

// Steps returns the wizard steps in order.
func Steps() []Step {
	return []Step{StepIdentity, StepProfile, StepBusiness, StepPresence, StepGoals}
}

func (s Step) Valid() bool {
	return s >= StepIdentity && s <= StepGoals
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "step(" + strconv.Itoa(int(s)) + ")"
}

func (s Step) Ordinal() int { return int(s) }

func (s Step) Title() string { return stepTitles[s] }

func (s Step) Route() string {
	if !s.Valid() {
		return ""
	}
	return "/(onboarding)/" + stepNames[s]
}

// Next returns the following step and false when s is the last one.
func (s Step) Next() (Step, bool) {
	if !s.Valid() || s == StepGoals {
		return 0, false
	}
	return s + 1, true
}

// ParseStep accepts a step name or its ordinal.
func ParseStep(v string) (Step, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if n, err := strconv.Atoi(v); err == nil {
		s := Step(n)
		if s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownStep, v)
	}
	for s, name := range stepNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStep, v)
}
