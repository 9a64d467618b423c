package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindAndCode_ThroughWrapping(t *testing.T) {
	base := Precondition("accrued_interest_outstanding", "accrued interest of %s must be settled before revolving", "6250.00")
	wrapped := fmt.Errorf("revolve: %w", base)

	if KindOf(wrapped) != KindPrecondition {
		t.Fatalf("kind = %q", KindOf(wrapped))
	}
	if CodeOf(wrapped) != "accrued_interest_outstanding" {
		t.Fatalf("code = %q", CodeOf(wrapped))
	}
	if base.Error() != "accrued interest of 6250.00 must be settled before revolving" {
		t.Fatalf("message = %q", base.Error())
	}
}

func TestIs_MatchesByKindAndCode(t *testing.T) {
	sentinel := NotFound("loan_not_found", "loan not found")
	got := NotFound("loan_not_found", "loan %s not found", "abc")
	if !errors.Is(got, sentinel) {
		t.Fatal("expected errors.Is to match on code")
	}
	if errors.Is(NotFound("facility_not_found", "x"), sentinel) {
		t.Fatal("different codes must not match")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Fatal("nil must stay nil")
	}
	typed := Validation("bad_amount", "amount must be positive")
	if Wrap(typed) != error(typed) {
		t.Fatal("typed errors pass through")
	}
	raw := errors.New("disk full")
	w := Wrap(raw)
	if KindOf(w) != KindPersistence || !errors.Is(w, raw) {
		t.Fatalf("unexpected wrap: %v", w)
	}
}
