package adoptions

import (
	"errors"
	"testing"
)

func TestCanTransition_ForwardJumpsAllowed(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusNew, StatusReview},
		{StatusNew, StatusTrial},
		{StatusNew, StatusApproved},
		{StatusReview, StatusInterview},
		{StatusReview, StatusApproved},
		{StatusTrial, StatusApproved},
	}
	for _, c := range cases {
		if err := CanTransition(c.from, c.to); err != nil {
			t.Errorf("%s → %s should be legal, got %v", c.from, c.to, err)
		}
	}
}

func TestCanTransition_RejectedReachableFromAnyNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusNew, StatusReview, StatusInterview, StatusTrial} {
		if err := CanTransition(from, StatusRejected); err != nil {
			t.Errorf("%s → rejected should be legal, got %v", from, err)
		}
	}
}

func TestCanTransition_RegressionRejected(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusInterview, StatusReview},
		{StatusTrial, StatusNew},
		{StatusReview, StatusNew},
	}
	for _, c := range cases {
		err := CanTransition(c.from, c.to)
		if !errors.Is(err, ErrIllegalRegression) {
			t.Errorf("%s → %s: expected illegal regression, got %v", c.from, c.to, err)
		}
	}
}

func TestCanTransition_TerminalStatesHaveNoExit(t *testing.T) {
	for _, from := range []Status{StatusApproved, StatusRejected} {
		for _, to := range []Status{StatusNew, StatusReview, StatusInterview, StatusTrial, StatusApproved, StatusRejected} {
			err := CanTransition(from, to)
			if !errors.Is(err, ErrIllegalTransition) {
				t.Errorf("%s → %s: expected illegal transition, got %v", from, to, err)
			}
		}
	}
}

func TestParseStatus(t *testing.T) {
	if _, err := ParseStatus("trial"); err != nil {
		t.Fatalf("trial should parse: %v", err)
	}
	if _, err := ParseStatus("banana"); err == nil {
		t.Fatal("unknown status should fail to parse")
	}
}
