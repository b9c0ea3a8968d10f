package utils

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	if v, ok := c.Get("trace_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError translates service-layer sentinels into HTTP responses.
// Quota exhaustion is surfaced as a temporary condition, never as a hard
// failure; raw diagnostics stay in the server log.
func HandleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		RespondError(c, http.StatusServiceUnavailable,
			"The AI service is temporarily unavailable due to usage limits. Please try again later.")
	case errors.Is(err, ErrTimeout):
		RespondError(c, http.StatusGatewayTimeout, "The AI service took too long to respond")
	case errors.Is(err, ErrNetwork):
		RespondError(c, http.StatusBadGateway, "Could not reach the AI service")
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrAPIFailure):
		log.Printf("Model backend error: %v", err)
		RespondError(c, http.StatusBadGateway, "The AI service returned an unusable response")
	case errors.Is(err, ErrParsing), errors.Is(err, ErrValidation):
		log.Printf("Itinerary processing error: %v", err)
		RespondError(c, http.StatusUnprocessableEntity, "The itinerary could not be processed")
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, "Item not found")
	case errors.Is(err, ErrSessionNotFound):
		RespondError(c, http.StatusNotFound, "Chat session not found")
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrInvalidCredentials):
		RespondError(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrEmailAlreadyExists):
		RespondError(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, ErrDatabaseError):
		log.Printf("Database error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Printf("Unknown error: %v", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
