package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"
)

const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeUnauthorized     = "unauthorized"
	CodeMethodNotAllowed = "method_not_allowed"
	CodeInternal         = "internal_error"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(code, message string) APIResponse {
	return APIResponse{
		Success:   false,
		Error:     message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// WriteJSON sends v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse(code, message))
}

// StatusFor maps a service error to its HTTP status, code and client message.
// Unclassified errors get a generic message so driver detail never leaks.
func StatusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, err.Error()
	case errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest, CodeConflict, err.Error()
	default:
		return http.StatusInternalServerError, CodeInternal, "internal server error"
	}
}

// WriteError translates err and logs it under category. Internal errors are
// logged at ERROR level with their cause.
func WriteError(w http.ResponseWriter, log *logger.Logger, category string, err error) {
	status, code, message := StatusFor(err)
	if log != nil {
		if status == http.StatusInternalServerError {
			log.Error(category, fmt.Sprintf("request failed: %v", err))
		} else {
			log.Warn(category, err.Error())
		}
	}
	WriteErrorCode(w, status, code, message)
}
