package dto

import "kala/internal/usecase"

type SessionResponse struct {
	Session usecase.SessionView `json:"session"`
	usecase.Tokens
}
