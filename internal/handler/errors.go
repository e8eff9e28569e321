package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/transfer-tracker/internal/domain"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error codes.
const (
	codeValidation     = "validation_error"
	codeSchemaMismatch = "schema_mismatch"
	codeMalformedRow   = "malformed_row"
	codeEmptyInput     = "empty_input"
	codeNotFound       = "not_found"
	codeTooLarge       = "request_too_large"
	codeInternal       = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message, Details: details}})
}

// requestError answers a request rejected before reaching the service layer
// (unreadable body, failed struct validation, body over the size limit).
func requestError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, len(verrs))
		for i, fe := range verrs {
			details[i] = fieldMessage(fe)
		}
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "invalid request", details...)
		return
	}
	writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
}

// fieldMessage renders one struct validation failure.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}

// serviceError maps a service error to a response. Anything unrecognised is
// logged and answered with a generic 500 so internals never leak.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *domain.ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		// Checked first: a truncated upload also surfaces as a malformed row.
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, "request body too large")
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "validation failed", verr.Messages...)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
	case errors.Is(err, domain.ErrSchemaMismatch):
		writeError(w, http.StatusUnprocessableEntity, codeSchemaMismatch, unwrapMessage(err, domain.ErrSchemaMismatch))
	case errors.Is(err, domain.ErrMalformedRow):
		writeError(w, http.StatusUnprocessableEntity, codeMalformedRow, unwrapMessage(err, domain.ErrMalformedRow))
	case errors.Is(err, domain.ErrEmptyInput):
		writeError(w, http.StatusUnprocessableEntity, codeEmptyInput, "the uploaded file is empty")
	case errors.Is(err, domain.ErrArchiveDisabled):
		writeError(w, http.StatusNotFound, codeNotFound, domain.ErrArchiveDisabled.Error())
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// unwrapMessage strips the call-site prefixes from a wrapped sentinel error,
// keeping the sentinel text and whatever detail follows it.
// e.g. "service.ExportService.Import: malformed row: line 3, ..." -> "malformed row: line 3, ..."
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()); i >= 0 {
		return msg[i:]
	}
	return msg
}
