package domain

import (
	"errors"
	"testing"
)

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		base     string
		expected string
	}{
		{
			name:     "skips garbage sibling",
			existing: []string{"foo_rig_000", "foo_rig_001", "foo_rig_garbage"},
			base:     "foo_rig",
			expected: "foo_rig_002",
		},
		{
			name:     "empty set starts at 000",
			existing: nil,
			base:     "foo_rig",
			expected: "foo_rig_000",
		},
		{
			name:     "extensions are ignored",
			existing: []string{"chair_modeling_004.ma", "chair_modeling_010.ma"},
			base:     "chair_modeling",
			expected: "chair_modeling_011",
		},
		{
			name:     "unversioned file alone",
			existing: []string{"chair_modeling.ma"},
			base:     "chair_modeling",
			expected: "chair_modeling_000",
		},
		{
			name:     "other bases are ignored",
			existing: []string{"table_modeling_007", "chair_texturing_003"},
			base:     "chair_modeling",
			expected: "chair_modeling_000",
		},
		{
			name:     "extra segments are malformed",
			existing: []string{"foo_rig_a_009", "foo_rig_002"},
			base:     "foo_rig",
			expected: "foo_rig_003",
		},
		{
			name:     "negative looking suffix is malformed",
			existing: []string{"foo_rig_-5", "foo_rig_"},
			base:     "foo_rig",
			expected: "foo_rig_000",
		},
		{
			name:     "order of siblings does not matter",
			existing: []string{"foo_rig_003", "foo_rig_001", "foo_rig_002"},
			base:     "foo_rig",
			expected: "foo_rig_004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextVersion(tt.existing, tt.base)
			if got != tt.expected {
				t.Errorf("NextVersion(%v, %q) = %q, want %q", tt.existing, tt.base, got, tt.expected)
			}
		})
	}
}

func TestFormatVersion_SortsLikeNumbers(t *testing.T) {
	prev := FormatVersion(0)
	for v := 1; v < 1000; v++ {
		cur := FormatVersion(v)
		if !(prev < cur) {
			t.Fatalf("FormatVersion(%d)=%q does not sort after %q", v, cur, prev)
		}
		prev = cur
	}
}

func TestParseVersionedName(t *testing.T) {
	tests := []struct {
		input  string
		want   VersionedName
		wantOK bool
	}{
		{"chair_rigging_004.ma", VersionedName{"chair", "rigging", 4}, true},
		{"/tmp/props/lamp_lighting_120", VersionedName{"lamp", "lighting", 120}, true},
		{"chair_rigging.ma", VersionedName{}, false},
		{"chair_rigging_v2.ma", VersionedName{}, false},
		{"a_b_c_001.ma", VersionedName{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseVersionedName(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseVersionedName(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseVersionedName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}

	v := VersionedName{Base: "chair", Stage: "rigging", Version: 7}
	if v.String() != "chair_rigging_007" {
		t.Errorf("String() = %q", v.String())
	}
	if v.Staged() != "chair_rigging" {
		t.Errorf("Staged() = %q", v.Staged())
	}
}

func TestParseStagedName(t *testing.T) {
	got, err := ParseStagedName("/work/chair_texturing_002.ma")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Base != "chair" || got.Stage != Texturing {
		t.Errorf("got %+v", got)
	}

	if _, err := ParseStagedName("chair.ma"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	if _, err := ParseStagedName("chair_compositing.ma"); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("expected invalid stage error, got %v", err)
	}
}
