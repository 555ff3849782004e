package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("create submission: %w", WithMetadata(CodeConflict, "pending submission exists", map[string]string{"submission_id": "abc"}))

	if !errors.Is(err, ErrConflict) {
		t.Fatal("expected wrapped conflict to match ErrConflict")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("conflict must not match ErrNotFound")
	}
	if CodeOf(err) != CodeConflict {
		t.Fatalf("CodeOf = %q", CodeOf(err))
	}
	if Meta(err)["submission_id"] != "abc" {
		t.Fatalf("Meta = %v", Meta(err))
	}
}

func TestStoreKeepsClassifiedErrors(t *testing.T) {
	if Store("op", nil) != nil {
		t.Fatal("Store(nil) must be nil")
	}

	raw := errors.New("connection refused")
	wrapped := Store("load submission", raw)
	if !errors.Is(wrapped, ErrStoreUnavailable) {
		t.Fatal("raw error should become STORE_UNAVAILABLE")
	}
	if !errors.Is(wrapped, raw) {
		t.Fatal("cause must stay reachable")
	}

	nf := NotFound("submission not found")
	if got := Store("load submission", nf); got != error(nf) {
		t.Fatalf("classified error was rewrapped: %v", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:       fiber.StatusBadRequest,
		CodeConflict:         fiber.StatusConflict,
		CodeInvalidState:     fiber.StatusConflict,
		CodeNotFound:         fiber.StatusNotFound,
		CodeStoreUnavailable: fiber.StatusServiceUnavailable,
		Code("OTHER"):        fiber.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", code, got, want)
		}
	}
}
