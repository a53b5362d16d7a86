package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the API has one
// set of response shapes:
//
//	validation / duplicate user  400 {"errors": [{"param": "email", "message": "..."}]}
//	already liked / not liked    400 {"error": "bad_request",  "message": "..."}
//	ownership failure            401 {"error": "unauthorized", "message": "User not authorized"}
//	missing resource             404 {"error": "not_found",    "message": "..."}
//	anything else                500 {"message": "server error"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/devlink/internal/apperror"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"` // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`
}

// ValidationResponse lists every rejected input field.
type ValidationResponse struct {
	Errors []apperror.FieldError `json:"errors"`
}

// MessageResponse acknowledges an operation that has nothing else to return.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// TokenResponse carries a freshly issued session token.
type TokenResponse struct {
	Token string `json:"token"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a service error to a status code and body. errors.As and
// errors.Is walk the %w chain, so services may wrap freely.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
			writeJSON(w, http.StatusBadRequest, ValidationResponse{Errors: appErr.FieldErrors()})
			return
		case errors.Is(err, apperror.ErrAlreadyLiked), errors.Is(err, apperror.ErrNotLiked):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrForbidden):
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: appErr.Message})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: appErr.Message})
			return
		}
	}

	// Never echo internal details: the cause may carry SQL or file paths.
	slog.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "server error"})
}

// decodeJSON reads a JSON request body into dst. A malformed body is a
// validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("", "Invalid JSON body")
	}
	return nil
}
