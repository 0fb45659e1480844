package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError translates the service error taxonomy to HTTP status
// codes. Anything unrecognized is a 500 with a generic message so internal
// details never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var quotaErr *services.QuotaExceededError
	var generationErr *services.GenerationError

	switch {
	case errors.As(err, &validationErr):
		RespondError(c, http.StatusUnprocessableEntity, "validation_error", err)
	case errors.As(err, &quotaErr):
		RespondError(c, http.StatusTooManyRequests, "quota_exceeded", err)
	case errors.As(err, &generationErr):
		RespondError(c, http.StatusBadGateway, "generation_failed", err)
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInactiveUser):
		RespondError(c, http.StatusForbidden, "forbidden", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrEmailTaken):
		RespondError(c, http.StatusBadRequest, "email_taken", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal server error"))
	}
}
