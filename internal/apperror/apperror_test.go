package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFoundMessage wraps ErrNotFound",
			err:       NotFoundMessage("There is no profile for this user"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("text", "Text is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "DuplicateUser wraps ErrConflict",
			err:       DuplicateUser(),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "AlreadyLiked wraps ErrAlreadyLiked",
			err:       AlreadyLiked(),
			target:    ErrAlreadyLiked,
			wantMatch: true,
		},
		{
			name:      "NotLiked wraps ErrNotLiked",
			err:       NotLiked(),
			target:    ErrNotLiked,
			wantMatch: true,
		},
		{
			name:      "wrapped Forbidden still matches",
			err:       fmt.Errorf("deleting post: %w", Forbidden("User not authorized")),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "AlreadyLiked does NOT match ErrNotLiked",
			err:       AlreadyLiked(),
			target:    ErrNotLiked,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("post", "abc123"),
			wantMessage: "post not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("text", "Text is required"),
			wantMessage: "Text is required",
		},
		{
			name:        "DuplicateUser message",
			err:         DuplicateUser(),
			wantMessage: "User already exists",
		},
		{
			name:        "AlreadyLiked message",
			err:         AlreadyLiked(),
			wantMessage: "Post already liked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("post", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestFieldErrors(t *testing.T) {
	t.Run("single field", func(t *testing.T) {
		err := ValidationFailed("email", "Please include a valid email")
		got := err.FieldErrors()
		if len(got) != 1 || got[0].Param != "email" || got[0].Message != "Please include a valid email" {
			t.Errorf("FieldErrors() = %+v", got)
		}
	})

	t.Run("multiple fields keep order", func(t *testing.T) {
		err := InvalidFields([]FieldError{
			{Param: "name", Message: "Name is required"},
			{Param: "password", Message: "Please enter a password with 6 or more characters"},
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatal("InvalidFields() should wrap ErrValidation")
		}
		if err.Field != "name" || err.Message != "Name is required" {
			t.Errorf("Field/Message = %q/%q, want first field", err.Field, err.Message)
		}
		if got := err.FieldErrors(); len(got) != 2 || got[1].Param != "password" {
			t.Errorf("FieldErrors() = %+v", got)
		}
	})
}
