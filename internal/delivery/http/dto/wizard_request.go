package dto

// WizardActionRequest carries the arguments of a navigator action. Code is
// read by select_language, Offset and Width by swipe.
type WizardActionRequest struct {
	Code   string  `json:"code"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}
