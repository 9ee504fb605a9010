package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codeshelf/Codeshelf-sub002/internal/commissioning/aisleimport"
	"github.com/codeshelf/Codeshelf-sub002/internal/lighting"
	"github.com/codeshelf/Codeshelf-sub002/internal/location"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeValidation      = "validation_error"
	ErrCodeTooLarge        = "payload_too_large"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeMethodNotAllow  = "method_not_allowed"
	ErrCodeUnsupportedType = "unsupported_media_type"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// notFoundErrors answer 404.
var notFoundErrors = []error{
	location.ErrFacilityNotFound,
	location.ErrNotFound,
	location.ErrControllerNotFound,
	location.ErrPathNotFound,
}

// validationErrors answer 400 with ErrCodeValidation.
var validationErrors = []error{
	location.ErrLevelMismatch,
	location.ErrInvalidLedRange,
	location.ErrIndicatorLevel,
	location.ErrControllerLevel,
	location.ErrUnknownScope,
	location.ErrInvalidDomainID,
	location.ErrEmptyAlias,
	location.ErrNonPositiveLength,
	lighting.ErrNotAisle,
	lighting.ErrNotTier,
	lighting.ErrInvalidLedRange,
	lighting.ErrSlotCountMismatch,
	lighting.ErrInvalidSlotStarts,
	aisleimport.ErrMissingHeader,
	aisleimport.ErrNoRows,
}

// writeDomainError maps a sentinel error from the domain packages to a
// status code. Anything unrecognised is logged and answered with 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
	}
	switch {
	case errors.Is(err, location.ErrDuplicateDomainID):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, aisleimport.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, err.Error())
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeInternalError(w, "internal server error")
	}
}
