package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var errSentinel = errors.New("sentinel")

func TestNewStackNil(t *testing.T) {
	if err := NewStack(nil); err != nil {
		t.Fatalf("NewStack(nil) = %v, want nil", err)
	}
}

func TestNewStackKeepsChain(t *testing.T) {
	err := NewStack(fmt.Errorf("select user: %w", errSentinel))

	if !errors.Is(err, errSentinel) {
		t.Fatalf("errors.Is lost the wrapped sentinel: %v", err)
	}
	if err.Error() != "select user: sentinel" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !strings.Contains(Trace(err), "TestNewStackKeepsChain") {
		t.Errorf("trace does not mention the caller:\n%s", Trace(err))
	}
}

func TestNewStackAddsTraceOnce(t *testing.T) {
	first := NewStack(errSentinel)
	second := NewStack(fmt.Errorf("outer: %w", first))

	// the outer fmt wrapper still carries the first trace
	if Trace(second) != Trace(first) {
		t.Errorf("trace was replaced on the second wrap")
	}
}

func TestTraceWithoutStack(t *testing.T) {
	if got := Trace(errSentinel); got != "" {
		t.Errorf("Trace() = %q, want empty", got)
	}
}
