package onboarding

type StepStatus struct {
	Step      Step   `json:"step"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Route     string `json:"route"`
	Completed bool   `json:"completed"`
}

type Progress struct {
	Steps      []StepStatus `json:"steps"`
	Completed  int          `json:"completed"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
}

// ComputeProgress derives step completion from the draft. Nothing is stored.
func ComputeProgress(d Draft) Progress {
	p := Progress{Steps: make([]StepStatus, 0, TotalSteps), Total: TotalSteps}
	for _, s := range Steps() {
		done := Validate(s, d).Valid
		if done {
			p.Completed++
		}
		p.Steps = append(p.Steps, StepStatus{
			Step:      s,
			Name:      s.String(),
			Title:     s.Title(),
			Route:     s.Route(),
			Completed: done,
		})
	}
	p.Percentage = 100 * p.Completed / p.Total
	return p
}
