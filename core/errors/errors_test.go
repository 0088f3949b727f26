package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindMatching(t *testing.T) {
	errMissing := New(KindNotFound, "gallery: mosaic not found")
	wrapped := fmt.Errorf("claim: %w", errMissing)

	if !stderrors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected wrapped error to match not found kind")
	}
	if !stderrors.Is(wrapped, errMissing) {
		t.Fatalf("expected wrapped error to match its own sentinel")
	}
	if stderrors.Is(wrapped, ErrStateConflict) {
		t.Fatalf("unexpected state conflict match")
	}
	other := New(KindNotFound, "gallery: gem not found")
	if stderrors.Is(wrapped, other) {
		t.Fatalf("distinct sentinels of the same kind must not match each other")
	}
	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("unexpected kind %v", got)
	}
}

func TestInvariantKind(t *testing.T) {
	err := Invariant("frozen %d exceeds balance %d", 10, 5)
	if !stderrors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if KindOf(err) != KindInvariantViolation {
		t.Fatalf("unexpected kind")
	}
	if KindOf(stderrors.New("plain")) != KindUnknown {
		t.Fatalf("plain errors have no kind")
	}
}
