package types

import (
	"errors"
	"testing"
)

func TestAnswerIsEmpty(t *testing.T) {
	tests := []struct {
		name   string
		answer Answer
		want   bool
	}{
		{name: "nil choice", answer: Answer{}, want: true},
		{name: "empty string", answer: Answer{Choice: ""}, want: true},
		{name: "non-empty string", answer: Answer{Choice: "yes"}, want: false},
		{name: "empty slice", answer: Answer{Choice: []any{}}, want: true},
		{name: "non-empty slice", answer: Answer{Choice: []any{"a"}}, want: false},
		{name: "empty map", answer: Answer{Choice: map[string]any{}}, want: true},
		{name: "date range map", answer: Answer{Choice: map[string]any{"start": "2026-01-01"}}, want: false},
		{name: "notes alone do not fill an answer", answer: Answer{Notes: "remember this"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.answer.IsEmpty(); got != tt.want {
				t.Fatalf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanLock(t *testing.T) {
	p := &Plan{PlanID: "p1"}
	if p.IsLocked() {
		t.Fatal("fresh plan should not be locked")
	}

	if err := p.Lock("alice"); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if !p.IsLocked() {
		t.Fatal("plan should be locked")
	}
	if p.LockedBy != "alice" {
		t.Fatalf("expected LockedBy alice, got %q", p.LockedBy)
	}

	if err := p.Lock("bob"); !errors.Is(err, ErrPlanLocked) {
		t.Fatalf("expected ErrPlanLocked, got %v", err)
	}
}

func TestPlanPublish(t *testing.T) {
	t.Run("publish implies lock", func(t *testing.T) {
		p := &Plan{PlanID: "p1"}
		if err := p.Publish("alice"); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if p.Locked == nil || p.Published == nil {
			t.Fatal("publish should set both lock and publish timestamps")
		}
		if p.LockedBy != "alice" || p.PublishedBy != "alice" {
			t.Fatal("publish should record the acting user on both transitions")
		}
	})

	t.Run("publishing a locked plan keeps the original lock", func(t *testing.T) {
		p := &Plan{PlanID: "p1"}
		if err := p.Lock("alice"); err != nil {
			t.Fatalf("lock failed: %v", err)
		}
		locked := *p.Locked
		if err := p.Publish("bob"); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if !p.Locked.Equal(locked) || p.LockedBy != "alice" {
			t.Fatal("publish must not overwrite an existing lock")
		}
	})

	t.Run("double publish is rejected", func(t *testing.T) {
		p := &Plan{PlanID: "p1"}
		if err := p.Publish("alice"); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if err := p.Publish("bob"); !errors.Is(err, ErrAlreadyPublished) {
			t.Fatalf("expected ErrAlreadyPublished, got %v", err)
		}
	})
}

func TestPlanVisit(t *testing.T) {
	p := &Plan{PlanID: "p1"}

	p.Visit("s1", "s2")
	p.Visit("s1")
	p.Visit("")

	if len(p.VisitedSections) != 2 {
		t.Fatalf("expected 2 visited sections, got %d", len(p.VisitedSections))
	}
	if !p.HasVisited("s1") || !p.HasVisited("s2") {
		t.Fatal("expected s1 and s2 visited")
	}
	if p.HasVisited("s3") {
		t.Fatal("s3 should not be visited")
	}
}
