package models

import "testing"

func TestSignupTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{SignupStatusPending, SignupStatusApproved, true},
		{SignupStatusPending, SignupStatusRejected, true},
		{SignupStatusPending, SignupStatusPending, false},
		{SignupStatusApproved, SignupStatusRejected, false},
		{SignupStatusApproved, SignupStatusPending, false},
		{SignupStatusRejected, SignupStatusApproved, false},
		{SignupStatusRejected, SignupStatusPending, false},
	}
	for _, tc := range cases {
		s := AffiliateSignup{Status: tc.from}
		if got := s.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}
