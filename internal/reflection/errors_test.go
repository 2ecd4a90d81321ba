package reflection

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want string
	}{
		{CodeValidation, "VALIDATION"},
		{CodeStoreUnavailable, "STORE_UNAVAILABLE"},
		{CodeNotFound, "NOT_FOUND"},
		{CodeSynthesisUnavailable, "SYNTHESIS_UNAVAILABLE"},
	}
	for _, tc := range cases {
		if string(tc.code) != tc.want {
			t.Errorf("code = %q, want %q", tc.code, tc.want)
		}
	}
}

func TestCodeOf(t *testing.T) {
	err := NewValidationError("user_id", "must not be empty")
	if CodeOf(err) != CodeValidation {
		t.Errorf("CodeOf() = %q, want %q", CodeOf(err), CodeValidation)
	}

	// Wrapping must not hide the code.
	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeValidation {
		t.Errorf("CodeOf(wrapped) = %q, want %q", CodeOf(wrapped), CodeValidation)
	}

	if CodeOf(errors.New("plain")) != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", CodeOf(errors.New("plain")))
	}
}

func TestHelpers(t *testing.T) {
	if !IsNotFound(NewNotFoundError("nothing here")) {
		t.Error("IsNotFound() = false for a NOT_FOUND error")
	}
	if !IsStoreUnavailable(NewStoreUnavailableError("ping", errors.New("closed"))) {
		t.Error("IsStoreUnavailable() = false for a STORE_UNAVAILABLE error")
	}
	if !IsSynthesisUnavailable(NewSynthesisUnavailableError(errors.New("timeout"))) {
		t.Error("IsSynthesisUnavailable() = false for a SYNTHESIS_UNAVAILABLE error")
	}
	if IsValidation(NewNotFoundError("nope")) {
		t.Error("IsValidation() = true for a NOT_FOUND error")
	}
}

func TestErrorMessageFormat(t *testing.T) {
	withField := NewValidationError("content", "must not be empty")
	if got := withField.Error(); got != "VALIDATION: must not be empty (field=content)" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("disk full")
	withCause := NewStoreUnavailableError("append reflection", cause)
	if got := withCause.Error(); got != "STORE_UNAVAILABLE: append reflection: disk full" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(withCause, cause) {
		t.Error("errors.Is() lost the wrapped cause")
	}
}
