package command

import (
	"errors"
	"testing"
)

func TestExecuteReportsOutcome(t *testing.T) {
	bus := New()

	res := bus.Execute(Request{ID: "append", Run: func() (bool, error) { return true, nil }})
	if !res.Applied || res.Err != nil || res.Rejected() {
		t.Fatalf("expected applied result, got %#v", res)
	}

	res = bus.Execute(Request{ID: "pop", Run: func() (bool, error) { return false, nil }})
	if !res.Rejected() {
		t.Fatalf("expected rejection, got %#v", res)
	}

	boom := errors.New("boom")
	res = bus.Execute(Request{ID: "sample", Run: func() (bool, error) { return false, boom }})
	if !errors.Is(res.Err, boom) || res.Rejected() {
		t.Fatalf("expected error result, got %#v", res)
	}
}

func TestExecuteWithoutHandler(t *testing.T) {
	res := New().Execute(Request{ID: "noop", Label: "nothing"})
	if !res.Rejected() || res.ID != "noop" || res.Label != "nothing" {
		t.Fatalf("expected rejected noop, got %#v", res)
	}
}
