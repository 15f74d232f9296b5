package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"radiojournal/pkg/apperrors"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError maps the application error taxonomy to HTTP statuses.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case apperrors.IsConcurrencyConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	case apperrors.IsType(err, apperrors.ErrorTypeValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
