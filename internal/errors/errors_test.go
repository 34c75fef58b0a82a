package errors

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
)

func TestErrorConstruction(t *testing.T) {
	validationErr := NewValidationError("missing required fields", "Auditor")
	if validationErr == nil {
		t.Fatal("Expected validation error to be created")
	}

	expectedMsg := "[VALIDATION_ERROR] missing required fields"
	if validationErr.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, validationErr.Error())
	}

	if validationErr.Category != CategoryValidation {
		t.Errorf("Expected category %v, got %v", CategoryValidation, validationErr.Category)
	}

	if validationErr.HTTPStatus != 400 {
		t.Errorf("Expected HTTP status 400, got %d", validationErr.HTTPStatus)
	}

	notFoundErr := NewNotFoundError("audit", "abc-123")
	if notFoundErr.Category != CategoryNotFound {
		t.Errorf("Expected category %v, got %v", CategoryNotFound, notFoundErr.Category)
	}
	if notFoundErr.HTTPStatus != 404 {
		t.Errorf("Expected HTTP status 404, got %d", notFoundErr.HTTPStatus)
	}

	authErr := NewUnauthorizedError("invalid credentials", nil)
	if authErr.HTTPStatus != 401 {
		t.Errorf("Expected HTTP status 401, got %d", authErr.HTTPStatus)
	}

	rateLimitErr := NewRateLimitError("60s")
	if rateLimitErr.HTTPStatus != 429 {
		t.Errorf("Expected HTTP status 429, got %d", rateLimitErr.HTTPStatus)
	}

	storageErr := NewStorageError("insert failed", fmt.Errorf("database is locked"))
	if storageErr.Category != CategoryStorage {
		t.Errorf("Expected category %v, got %v", CategoryStorage, storageErr.Category)
	}
}

func TestToAppError(t *testing.T) {
	if ToAppError(nil) != nil {
		t.Error("Expected nil for nil error")
	}

	appErr := NewValidationError("already wrapped")
	if ToAppError(appErr) != appErr {
		t.Error("Expected AppError to pass through unchanged")
	}

	converted := ToAppError(sql.ErrNoRows)
	if converted.Category != CategoryNotFound {
		t.Errorf("Expected sql.ErrNoRows to map to %v, got %v", CategoryNotFound, converted.Category)
	}

	timeoutErr := ToAppError(context.DeadlineExceeded)
	if timeoutErr.Category != CategoryTimeout {
		t.Errorf("Expected deadline exceeded to map to %v, got %v", CategoryTimeout, timeoutErr.Category)
	}

	lockedErr := ToAppError(fmt.Errorf("database is locked"))
	if lockedErr.Category != CategoryStorage {
		t.Errorf("Expected locked database to map to %v, got %v", CategoryStorage, lockedErr.Category)
	}

	unknownErr := ToAppError(fmt.Errorf("something odd happened"))
	if unknownErr.Category != CategoryInternal {
		t.Errorf("Expected fallback category %v, got %v", CategoryInternal, unknownErr.Category)
	}
}

func TestValidationErrorWithMap(t *testing.T) {
	err := NewValidationErrorWithMap(map[string]string{
		"Auditor":    "required field is missing",
		"Group Code": "required field is missing",
	})

	if err.Category != CategoryValidation {
		t.Errorf("Expected category %v, got %v", CategoryValidation, err.Category)
	}
	if len(err.ErrBuilder.Details.Errors) != 2 {
		t.Errorf("Expected 2 detail entries, got %d", len(err.ErrBuilder.Details.Errors))
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("Expected nil for nil error")
	}

	wrapped := WrapError(fmt.Errorf("inner"), "outer %s", "context")
	expected := "outer context: inner"
	if wrapped.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, wrapped.Error())
	}
}
