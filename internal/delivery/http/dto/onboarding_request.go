package dto

type ToggleRequest struct {
	Field string `json:"field"`
	ID    string `json:"id"`
}
