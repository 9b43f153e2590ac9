package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/councilvote/internal/errors"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeBalance        = "BALANCE_MISMATCH"
	ErrCodeMissingReason  = "MISSING_REASON"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`

	// Balance is set for BALANCE_MISMATCH and changes the response body
	Balance *errors.BalanceError `json:"-"`
	cause   error
}

func (e *APIError) Error() string {
	return e.Message
}

// balanceBody is the response for a submission whose counts do not add up
type balanceBody struct {
	Code              string `json:"code"`
	Message           string `json:"error"`
	TotalVotesCounted int    `json:"totalVotesCounted"`
	TotalSignatures   int    `json:"totalSignatures"`
	Difference        int    `json:"difference"`
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error that keeps the original error for logging
func InternalError(err error) *APIError {
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error", cause: err}
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		return InternalError(err)
	}

	switch appErr.Kind {
	case errors.ErrNotFound:
		return NotFound(appErr.Message)
	case errors.ErrValidation:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: appErr.Message}
	case errors.ErrInvalidInput:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeInvalidInput, Message: appErr.Message}
	case errors.ErrMissingReason:
		return &APIError{Status: http.StatusBadRequest, Code: ErrCodeMissingReason, Message: appErr.Message}
	case errors.ErrBalance:
		out := &APIError{Status: http.StatusBadRequest, Code: ErrCodeBalance, Message: appErr.Message}
		var bal *errors.BalanceError
		if stderrors.As(err, &bal) {
			out.Balance = bal
		}
		return out
	case errors.ErrUnauthorized:
		return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: appErr.Message}
	case errors.ErrForbidden:
		return &APIError{Status: http.StatusForbidden, Code: ErrCodeForbidden, Message: appErr.Message}
	case errors.ErrConflict:
		return Conflict(appErr.Message)
	default:
		return InternalError(err)
	}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response. Internal errors are logged and
// their details withheld from the client.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := ToAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError && h.log != nil {
		h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", apiErr.cause)
	}
	if apiErr.Balance != nil {
		respondJSON(w, apiErr.Status, balanceBody{
			Code:              apiErr.Code,
			Message:           apiErr.Message,
			TotalVotesCounted: apiErr.Balance.Counted,
			TotalSignatures:   apiErr.Balance.Signatures,
			Difference:        apiErr.Balance.Difference,
		})
		return
	}
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntParam extracts and parses an integer URL parameter
func parseIntParam(r *http.Request, name string) (int, error) {
	param := chi.URLParam(r, name)
	if param == "" {
		return 0, BadRequest("Missing " + name + " parameter")
	}
	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return id, nil
}

// parseIntQuery reads an optional integer query parameter; nil when absent
func parseIntQuery(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, BadRequest("Invalid " + name + " parameter")
	}
	return &n, nil
}
