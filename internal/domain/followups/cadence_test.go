package followups

import (
	"testing"
	"time"
)

func TestNextType_Cadence(t *testing.T) {
	cases := []struct {
		in   Type
		want Type
	}{
		{TypeInitial, TypeMonthly},
		{TypeMonthly, TypeSemiannual},
		{TypeSemiannual, TypeAnnual},
		{TypeAnnual, TypeAnnual},
		{TypeIssue, TypeMonthly},
	}
	for _, c := range cases {
		if got := NextType(c.in); got != c.want {
			t.Errorf("NextType(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestNextType_Total(t *testing.T) {
	// Todo tipo, incluso uno inválido, tiene sucesor definido.
	if got := NextType(Type("garbage")); got != TypeMonthly {
		t.Fatalf("NextType on unknown type = %s, want monthly", got)
	}
}

func TestNextType_AnnualIsFixedPoint(t *testing.T) {
	cur := TypeInitial
	for i := 0; i < 10; i++ {
		cur = NextType(cur)
	}
	if cur != TypeAnnual {
		t.Fatalf("cadence should converge to annual, got %s", cur)
	}
}

func TestNewInitial_SevenDaysAfterApproval(t *testing.T) {
	approved := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	f := NewInitial("pet-1", "req-1", approved)

	if f.Type != TypeInitial {
		t.Fatalf("expected initial, got %s", f.Type)
	}
	if !f.Scheduled.Equal(approved.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected due %v, got %v", approved.Add(7*24*time.Hour), f.Scheduled)
	}
	if f.Completed {
		t.Fatal("new follow-up must start uncompleted")
	}
	if f.PetID != "pet-1" || f.RequestID != "req-1" {
		t.Fatalf("references not carried: %+v", f)
	}
	if f.ID == "" {
		t.Fatal("expected an assigned ID")
	}
}

func TestSuccessor_CarriesLineage(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	due := now.Add(30 * 24 * time.Hour)
	parent := FollowUp{
		ID:            "fu-1",
		PetID:         "pet-1",
		RequestID:     "req-1",
		Type:          TypeInitial,
		ResponsibleBy: "vet-1",
	}

	next := successor(parent, due, now)
	if next.Type != TypeMonthly {
		t.Fatalf("expected monthly successor, got %s", next.Type)
	}
	if !next.Scheduled.Equal(due) {
		t.Fatalf("expected due %v, got %v", due, next.Scheduled)
	}
	if next.PetID != parent.PetID || next.RequestID != parent.RequestID {
		t.Fatal("successor must reference the same pet and request")
	}
	if next.ResponsibleBy != parent.ResponsibleBy {
		t.Fatal("successor should inherit the responsible")
	}
	if next.ID == parent.ID {
		t.Fatal("successor must have its own ID")
	}
}
