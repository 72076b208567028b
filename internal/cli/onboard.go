package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kala/internal/domain/onboarding"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listFields = map[string]bool{
	string(onboarding.FieldProductTypes):      true,
	string(onboarding.FieldSelectedPlatforms): true,
	string(onboarding.FieldPrimaryGoals):      true,
	string(onboarding.FieldAdditionalGoals):   true,
}

type onboardReport struct {
	Path     []onboarding.State  `json:"path" yaml:"path"`
	State    onboarding.State    `json:"state" yaml:"state"`
	Draft    onboarding.Draft    `json:"draft" yaml:"draft"`
	Progress onboarding.Progress `json:"progress" yaml:"progress"`
	Blocked  *onboarding.Result  `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Notice   *onboarding.Notice  `json:"notice,omitempty" yaml:"notice,omitempty"`
}

func newOnboardCommand(o *options) *cobra.Command {
	var sets []string
	var connect []string

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Fill a draft from flags and advance the wizard as far as it validates",
		Example: `  kalactl onboard --set full_name="Lakshmi Devi" --set preferred_language=te \
    --set craft_category=pottery --set experience_level=expert \
    --set product_types=pottery,home-decor --set price_range_tier=mid \
    --set selected_platforms=instagram --set primary_goals=visibility`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseDraftPatch(sets)
			if err != nil {
				return err
			}
			draft, err := onboarding.Draft{}.Apply(o.cat, patch)
			if err != nil {
				return err
			}
			for _, id := range connect {
				if draft, err = draft.ConnectPlatform(o.cat, id); err != nil {
					return err
				}
			}

			report, runErr := walkWizard(onboarding.NewNavigator(o.cat), draft)
			o.logger.Debug("wizard walked", zap.String("state", string(report.State)), zap.Error(runErr))

			w := cmd.OutOrStdout()
			if done, err := o.render(w, report); done || err != nil {
				if err != nil {
					return err
				}
				return runErr
			}

			fmt.Fprintf(w, "path:     %s\n", joinStates(report.Path))
			fmt.Fprintf(w, "progress: %d/%d (%d%%)\n", report.Progress.Completed, report.Progress.Total, report.Progress.Percentage)
			if report.Notice != nil {
				fmt.Fprintf(w, "%s: %s\n", report.Notice.Title, report.Notice.Message)
			}
			if report.Blocked != nil && len(report.Blocked.Missing) > 0 {
				fmt.Fprintf(w, "missing:  %s\n", strings.Join(report.Blocked.Missing, ", "))
			}
			return runErr
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Draft field as key=value; list fields take comma separated ids")
	cmd.Flags().StringSliceVar(&connect, "connect", nil, "Platform ids to mark connected")
	return cmd
}

// parseDraftPatch decodes key=value pairs through the JSON shape of
// DraftPatch so unknown keys are rejected.
func parseDraftPatch(pairs []string) (onboarding.DraftPatch, error) {
	fields := make(map[string]any, len(pairs))
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return onboarding.DraftPatch{}, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		if listFields[key] {
			list := splitList(value)
			if list == nil {
				list = []string{}
			}
			fields[key] = list
			continue
		}
		fields[key] = value
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return onboarding.DraftPatch{}, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var patch onboarding.DraftPatch
	if err := dec.Decode(&patch); err != nil {
		return onboarding.DraftPatch{}, fmt.Errorf("%w: %v", onboarding.ErrUnknownField, err)
	}
	return patch, nil
}

// walkWizard signs up a new artisan with draft already filled and advances
// until the main tabs or the first step that does not validate.
func walkWizard(nav *onboarding.Navigator, draft onboarding.Draft) (onboardReport, error) {
	w := nav.Start()
	report := onboardReport{Path: []onboarding.State{w.State}}

	apply := func(a onboarding.Action) error {
		t, err := nav.Apply(w, onboarding.Event{Action: a})
		if err != nil {
			return err
		}
		w = t.Wizard
		report.Path = append(report.Path, w.State)
		report.Notice = t.Notice
		return nil
	}

	var err error
	for _, a := range []onboarding.Action{
		onboarding.ActionGetStarted,
		onboarding.ActionContinue,
		onboarding.ActionSkip,
		onboarding.ActionSignUp,
	} {
		if err = apply(a); err != nil {
			break
		}
	}
	if err == nil {
		w.Draft = draft
		for !w.State.Terminal() {
			if err = apply(onboarding.ActionAdvance); err != nil {
				break
			}
		}
	}

	var incomplete *onboarding.IncompleteStepError
	if errors.As(err, &incomplete) {
		res := incomplete.Result
		report.Blocked = &res
		report.Notice = res.Notice
		err = fmt.Errorf("onboarding blocked at %s: %s", res.Step, res.Reason)
	}

	report.State = w.State
	report.Draft = w.Draft
	report.Progress = onboarding.ComputeProgress(w.Draft)
	return report, err
}

func joinStates(states []onboarding.State) string {
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}
