// Package httputil renders the JSON envelope every storefront endpoint
// answers with: {"data": ...} on success, {"error": {...}} otherwise.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/arglo/storefront/pkg/errors"
	"github.com/arglo/storefront/pkg/logger"
	"github.com/arglo/storefront/pkg/validator"
)

// Response is the envelope. Exactly one of Data and Error is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse is the error half of the envelope. RequestID echoes the
// correlation id so a client report can be matched to the server logs.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is out; an encode error cannot be reported anymore.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData answers 200 with v as data.
func WriteData(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, Response{Data: v})
}

// WriteProblem answers with an error envelope built from its parts. r may be
// nil when no request id is available.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeProblem(w, r, status, &ErrorResponse{Code: code, Message: message})
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, body *ErrorResponse) {
	if r != nil {
		body.RequestID = logger.CorrelationIDFromContext(r.Context())
	}
	WriteJSON(w, status, Response{Error: body})
}

// WriteError maps err onto the envelope through apperrors.Describe. Server
// errors are logged with the request logger, or fallback if there is none.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	appErr := apperrors.Describe(err)
	if appErr.Status >= http.StatusInternalServerError {
		l := logger.FromContext(r.Context())
		if l == slog.Default() && fallback != nil {
			l = fallback
		}
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}
	WriteProblem(w, r, appErr.Status, appErr.Code, appErr.Message)
}

// WriteValidationError answers 400. Field errors from the validator are
// listed per JSON field; any other error is shown as is.
func WriteValidationError(w http.ResponseWriter, err error) {
	body := &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		body = &ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields(),
		}
	}
	writeProblem(w, nil, http.StatusBadRequest, body)
}

// ParseID parses a non-negative integer path parameter. On failure it has
// already answered 400 and the caller should return.
func ParseID(w http.ResponseWriter, param string) (int, bool) {
	id, err := strconv.Atoi(param)
	if err == nil && id >= 0 {
		return id, true
	}
	WriteProblem(w, nil, http.StatusBadRequest, "INVALID_PARAMETER", "invalid id: "+param)
	return 0, false
}
