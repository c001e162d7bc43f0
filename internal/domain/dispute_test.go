package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDispute_Resolve(t *testing.T) {
	dispute := &Dispute{ID: "dsp1", DebtID: "d1", RaisedBy: "owner-b"}
	if !dispute.IsOpen() {
		t.Fatal("new dispute should be open")
	}

	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	if err := dispute.Resolve(Actor{ID: "owner-a"}, "paid in cash", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispute.IsOpen() || dispute.ResolvedBy != "owner-a" || dispute.ResolutionNote != "paid in cash" {
		t.Errorf("unexpected resolved dispute: %+v", dispute)
	}

	if err := dispute.Resolve(Actor{ID: "owner-a"}, "", at); !errors.Is(err, ErrDisputeResolved) {
		t.Errorf("expected ErrDisputeResolved, got %v", err)
	}
}

func TestNewActor(t *testing.T) {
	actor, err := NewActor("  owner-a ")
	if err != nil || actor.ID != "owner-a" {
		t.Fatalf("NewActor = %+v, %v", actor, err)
	}

	if _, err := NewActor(" "); !errors.Is(err, ErrMissingActor) {
		t.Fatalf("expected ErrMissingActor, got %v", err)
	}
}
