package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewAndAccessors(t *testing.T) {
	err := New(CodeNotFound, "order not found")
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Message() != "order not found" {
		t.Fatalf("unexpected message %q", err.Message())
	}
	if err.Error() != "NOT_FOUND: order not found" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")
	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error must unwrap to its cause")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsThroughWrapping(t *testing.T) {
	inner := New(CodeConflict, "order no longer available")
	wrapped := fmt.Errorf("accept failed: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}

	if As(stdErrors.New("plain")) != nil {
		t.Fatal("plain errors must not match")
	}
	if As(nil) != nil {
		t.Fatal("nil must not match")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "incomplete delivery address").
		WithDetails(map[string]any{"missing_fields": []string{"city"}})
	details, ok := err.Details().(map[string]any)
	if !ok {
		t.Fatalf("unexpected details type %T", err.Details())
	}
	if _, ok := details["missing_fields"]; !ok {
		t.Fatal("details lost")
	}
}

func TestMetadataFor(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeNotFound:          http.StatusNotFound,
		CodeConflict:          http.StatusConflict,
		CodeStateConflict:     http.StatusUnprocessableEntity,
		CodeInsufficientFunds: http.StatusBadRequest,
		CodeRateLimit:         http.StatusTooManyRequests,
		CodeInternal:          http.StatusInternalServerError,
		CodeDependency:        http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("%s: expected status %d got %d", code, want, got)
		}
	}

	if got := MetadataFor("UNKNOWN").HTTPStatus; got != http.StatusInternalServerError {
		t.Fatalf("unknown codes fall back to 500, got %d", got)
	}
}
