package handler

import (
	"context"
	"errors"

	"kala/internal/delivery/http/middleware"
	"kala/internal/domain/catalog"
	"kala/internal/domain/chat"
	"kala/internal/domain/onboarding"
	"kala/internal/domain/product"
	"kala/internal/domain/profile"
	"kala/internal/domain/session"
	"kala/internal/pkg/response"
	"kala/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// mapUsecaseError turns domain and usecase errors into AppErrors.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var incomplete *onboarding.IncompleteStepError
	if errors.As(err, &incomplete) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, incomplete.Result.Reason, incomplete.Result, err)
	}
	var missing *product.IncompleteError
	if errors.As(err, &missing) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Product incomplete", fiber.Map{"missing": missing.Missing}, err)
	}

	switch {
	case errors.Is(err, session.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Session not found", nil, err)
	case errors.Is(err, profile.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Profile not found", nil, err)
	case errors.Is(err, product.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Product not found", nil, err)

	case errors.Is(err, onboarding.ErrInvalidTransition),
		errors.Is(err, onboarding.ErrPlatformNotSelected):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)

	case errors.Is(err, catalog.ErrUnknownOption),
		errors.Is(err, catalog.ErrUnknownKind),
		errors.Is(err, onboarding.ErrUnknownStep),
		errors.Is(err, onboarding.ErrUnknownField),
		errors.Is(err, onboarding.ErrInvalidTarget),
		errors.Is(err, onboarding.ErrInvalidSwipe),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, product.ErrTooManyImages),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidFilter),
		errors.Is(err, product.ErrUnknownSuggestion),
		errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)

	case errors.Is(err, usecase.ErrRefreshTokenExpired):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Refresh token expired", nil, err)
	case errors.Is(err, usecase.ErrInvalidRefreshToken):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid refresh token", nil, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return middleware.NewAppError(fiber.StatusRequestTimeout, "Request cancelled", nil, err)

	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}

func sessionID(c fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.SessionID(c)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return id, nil
}

func pathUUID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+name, nil, err)
	}
	return id, nil
}
