package domain

import (
	"errors"
	"testing"
)

func TestAdvanceStage(t *testing.T) {
	tests := []struct {
		stage    string
		expected Stage
	}{
		{"modeling", NoStage},
		{"texturing", Modeling},
		{"rigging", Texturing},
		{"lighting", Rigging},
		{"Texturing", Modeling},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			got, err := AdvanceStage("chair", tt.stage)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Stage != tt.expected {
				t.Errorf("AdvanceStage(%q) = %q, want %q", tt.stage, got.Stage, tt.expected)
			}
		})
	}
}

func TestAdvanceStage_FirstStageHasNoPredecessor(t *testing.T) {
	got, err := AdvanceStage("chair", "modeling")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsNone() {
		t.Errorf("expected no predecessor, got %q", got.String())
	}
	if got.String() != "" {
		t.Errorf("expected empty staged name, got %q", got.String())
	}
}

func TestAdvanceStage_StagedName(t *testing.T) {
	got, err := AdvanceStage("chair", "rigging")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "chair_texturing" {
		t.Errorf("got %q, want chair_texturing", got.String())
	}
}

func TestAdvanceStage_Unknown(t *testing.T) {
	_, err := AdvanceStage("chair", "unknown")
	if err == nil {
		t.Fatal("expected error for unknown stage")
	}

	var stageErr *InvalidStageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected InvalidStageError, got %T", err)
	}
	if stageErr.Stage != "unknown" {
		t.Errorf("Stage = %q", stageErr.Stage)
	}
	if !errors.Is(err, ErrInvalidStage) {
		t.Error("expected errors.Is(err, ErrInvalidStage)")
	}
}

func TestStage_Next(t *testing.T) {
	next, err := Rigging.Next()
	if err != nil || next != Lighting {
		t.Errorf("Rigging.Next() = %q, %v", next, err)
	}
	next, err = Lighting.Next()
	if err != nil || next != NoStage {
		t.Errorf("Lighting.Next() = %q, %v", next, err)
	}
	if _, err := Stage("paint").Next(); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestStages_ReturnsCopy(t *testing.T) {
	s := Stages()
	s[0] = "broken"
	if Stages()[0] != Modeling {
		t.Error("Stages() exposed internal order table")
	}
}
