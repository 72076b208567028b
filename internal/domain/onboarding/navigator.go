package onboarding

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"kala/internal/domain/catalog"
)

type State string

const (
	StateWelcome  State = "welcome"
	StateLanguage State = "language"
	StateCarousel State = "carousel"
	StateAuth     State = "auth"
	StateIdentity State = "identity"
	StateProfile  State = "profile"
	StateBusiness State = "business"
	StatePresence State = "presence"
	StateGoals    State = "goals"
	StateMainTabs State = "main_tabs"
)

var stateOrder = []State{
	StateWelcome,
	StateLanguage,
	StateCarousel,
	StateAuth,
	StateIdentity,
	StateProfile,
	StateBusiness,
	StatePresence,
	StateGoals,
	StateMainTabs,
}

var stateRoutes = map[State]string{
	StateWelcome:  "/(onboarding)",
	StateLanguage: "/(onboarding)/language",
	StateCarousel: "/(onboarding)/carousel",
	StateAuth:     "/auth",
	StateMainTabs: "/(tabs)",
}

var stepStates = map[Step]State{
	StepIdentity: StateIdentity,
	StepProfile:  StateProfile,
	StepBusiness: StateBusiness,
	StepPresence: StatePresence,
	StepGoals:    StateGoals,
}

func (s State) Route() string {
	if step, ok := s.Step(); ok {
		return step.Route()
	}
	return stateRoutes[s]
}

// Step maps an onboarding state to its wizard step.
func (s State) Step() (Step, bool) {
	for step, st := range stepStates {
		if st == s {
			return step, true
		}
	}
	return 0, false
}

func (s State) Valid() bool {
	for _, known := range stateOrder {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the main app.
func (s State) Terminal() bool { return s == StateMainTabs }

type Action string

const (
	ActionGetStarted      Action = "get_started"
	ActionSelectLanguage  Action = "select_language"
	ActionContinue        Action = "continue"
	ActionNext            Action = "next"
	ActionSwipe           Action = "swipe"
	ActionSkip            Action = "skip"
	ActionSignUp          Action = "sign_up"
	ActionSignIn          Action = "sign_in"
	ActionContinueAsGuest Action = "continue_as_guest"
	ActionAdvance         Action = "advance"
	ActionBack            Action = "back"
)

var knownActions = []Action{
	ActionGetStarted,
	ActionSelectLanguage,
	ActionContinue,
	ActionNext,
	ActionSwipe,
	ActionSkip,
	ActionSignUp,
	ActionSignIn,
	ActionContinueAsGuest,
	ActionAdvance,
	ActionBack,
}

func ParseAction(v string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(v)))
	for _, known := range knownActions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, v)
}

// Event is one user interaction. Code is read by select_language, Offset
// and Width by swipe.
type Event struct {
	Action Action  `json:"action"`
	Code   string  `json:"code,omitempty"`
	Offset float64 `json:"offset,omitempty"`
	Width  float64 `json:"width,omitempty"`
}

// Wizard is the navigator state of one client.
type Wizard struct {
	State         State            `json:"state"`
	CarouselIndex int              `json:"carousel_index"`
	AppLanguage   catalog.Language `json:"app_language"`
	Guest         bool             `json:"guest"`
	Completed     bool             `json:"completed"`
	Draft         Draft            `json:"draft"`
}

type Transition struct {
	Action Action  `json:"action"`
	From   State   `json:"from"`
	To     State   `json:"to"`
	Route  string  `json:"route"`
	Wizard Wizard  `json:"wizard"`
	Notice *Notice `json:"notice,omitempty"`
	// Committed is set when this transition finished the goals step.
	Committed bool `json:"committed"`
}

type Navigator struct {
	cat *catalog.Catalog
}

func NewNavigator(cat *catalog.Catalog) *Navigator {
	return &Navigator{cat: cat}
}

const defaultAppLanguage = "en"

// Start returns a fresh wizard on the welcome screen.
func (n *Navigator) Start() Wizard {
	w := Wizard{State: StateWelcome}
	if lang, err := n.cat.AppLanguage(defaultAppLanguage); err == nil {
		w.AppLanguage = lang
	}
	return w
}

func (n *Navigator) SlideCount() int {
	return n.cat.Count(catalog.KindCarouselSlides)
}

// Apply runs ev against w. On error the returned transition carries w
// unchanged.
func (n *Navigator) Apply(w Wizard, ev Event) (Transition, error) {
	stay := Transition{Action: ev.Action, From: w.State, To: w.State, Route: w.State.Route(), Wizard: w}

	next, notice, err := n.step(w, ev)
	if err != nil {
		var ie *IncompleteStepError
		if errors.As(err, &ie) {
			stay.Notice = ie.Result.Notice
		}
		return stay, err
	}

	t := Transition{
		Action: ev.Action,
		From:   w.State,
		To:     next.State,
		Route:  next.State.Route(),
		Wizard: next,
		Notice: notice,
	}
	t.Committed = next.Completed && !w.Completed
	return t, nil
}

func (n *Navigator) step(w Wizard, ev Event) (Wizard, *Notice, error) {
	if ev.Action == ActionBack {
		w.State = previous(w.State)
		return w, nil, nil
	}

	switch w.State {
	case StateWelcome:
		switch ev.Action {
		case ActionGetStarted:
			w.State = StateLanguage
			return w, nil, nil
		case ActionContinueAsGuest:
			return enterAsGuest(w), nil, nil
		}

	case StateLanguage:
		switch ev.Action {
		case ActionSelectLanguage:
			lang, err := n.cat.AppLanguage(ev.Code)
			if err != nil {
				return w, nil, err
			}
			w.AppLanguage = lang
			return w, nil, nil
		case ActionContinue:
			w.State = StateCarousel
			w.CarouselIndex = 0
			return w, nil, nil
		}

	case StateCarousel:
		switch ev.Action {
		case ActionNext:
			if w.CarouselIndex < n.SlideCount()-1 {
				w.CarouselIndex++
			} else {
				w.State = StateAuth
			}
			return w, nil, nil
		case ActionSkip:
			w.State = StateAuth
			return w, nil, nil
		case ActionSwipe:
			idx, err := snap(ev.Offset, ev.Width, n.SlideCount())
			if err != nil {
				return w, nil, err
			}
			w.CarouselIndex = idx
			return w, nil, nil
		}

	case StateAuth:
		switch ev.Action {
		case ActionSignUp:
			w.State = StateIdentity
			return w, nil, nil
		case ActionSignIn:
			w.State = StateMainTabs
			return w, nil, nil
		case ActionContinueAsGuest:
			return enterAsGuest(w), nil, nil
		}

	case StateIdentity, StateProfile, StateBusiness, StatePresence, StateGoals:
		if ev.Action != ActionAdvance {
			break
		}
		step, _ := w.State.Step()
		if res := Validate(step, w.Draft); !res.Valid {
			return w, nil, &IncompleteStepError{Result: res}
		}
		if nextStep, ok := step.Next(); ok {
			w.State = stepStates[nextStep]
			return w, nil, nil
		}
		// A later patch may have emptied an earlier step.
		if res := ValidateAll(w.Draft); !res.Valid {
			return w, nil, &IncompleteStepError{Result: res}
		}
		w.State = StateMainTabs
		w.Completed = true
		done := CompletionNotice
		return w, &done, nil
	}

	return w, nil, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, ev.Action, w.State)
}

func enterAsGuest(w Wizard) Wizard {
	w.State = StateMainTabs
	w.Guest = true
	return w
}

// previous is the back target. Welcome and the main tabs have none.
func previous(s State) State {
	if s == StateWelcome || s == StateMainTabs {
		return s
	}
	for i, known := range stateOrder {
		if known == s && i > 0 {
			return stateOrder[i-1]
		}
	}
	return s
}

// snap converts a horizontal scroll offset to the nearest slide index.
func snap(offset, width float64, slides int) (int, error) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) || math.IsNaN(offset) || math.IsInf(offset, 0) {
		return 0, ErrInvalidSwipe
	}
	if slides < 1 {
		return 0, nil
	}
	r := math.Round(offset / width)
	return int(math.Max(0, math.Min(r, float64(slides-1)))), nil
}

// ConnectedNotice is shown after a platform connection is recorded.
func ConnectedNotice(platform string) Notice {
	return Notice{Title: "Connected!", Message: platform + " connected successfully."}
}
