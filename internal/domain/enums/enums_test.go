package enums

import "testing"

func TestParseFilterMode(t *testing.T) {
	cases := map[string]FilterMode{
		"":                FilterModeAll,
		" ALL ":           FilterModeAll,
		"same_city":       FilterModeSameCity,
		"sameCity":        FilterModeSameCity,
		"recentlyJoined":  FilterModeRecentlyJoined,
		"recently_joined": FilterModeRecentlyJoined,
	}
	for raw, want := range cases {
		got, ok := ParseFilterMode(raw)
		if !ok || got != want {
			t.Fatalf("ParseFilterMode(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := ParseFilterMode("nearby"); ok {
		t.Fatalf("expected unknown filter mode to be rejected")
	}
}

func TestReceiptStatusTerminal(t *testing.T) {
	if ReceiptStatusPending.Terminal() {
		t.Fatalf("pending must not be terminal")
	}
	if !ReceiptStatusApproved.Terminal() || !ReceiptStatusRejected.Terminal() {
		t.Fatalf("approved and rejected must be terminal")
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole(" operator "); !ok || role != RoleOperator {
		t.Fatalf("unexpected role: %q ok=%v", role, ok)
	}
	for _, raw := range []string{"", "root", "USERS"} {
		if _, ok := ParseRole(raw); ok {
			t.Fatalf("ParseRole(%q) should fail", raw)
		}
	}
}

func TestSubscriptionStatusReported(t *testing.T) {
	if got := SubscriptionStatusInactive.Reported(); got != SubscriptionStatusTrial {
		t.Fatalf("inactive reported as %q", got)
	}
	for _, s := range []SubscriptionStatus{SubscriptionStatusNone, SubscriptionStatusActive, SubscriptionStatusBlocked} {
		if got := s.Reported(); got != s {
			t.Fatalf("%q reported as %q", s, got)
		}
	}
	if SubscriptionStatusTrial.Valid() {
		t.Fatalf("trial is not a stored status")
	}
}
