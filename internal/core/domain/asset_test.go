package domain

import (
	"errors"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "arm_CV", false},
		{"with dash and digits", "spine-ctrl-02", false},
		{"with spaces inside", "foot roll", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"leading space", " arm", true},
		{"slash", "arm/leg", true},
		{"backslash", `arm\leg`, true},
		{"colon", "ns:arm", true},
		{"question mark", "arm?", true},
		{"dot dot", "..", true},
		{"hidden", ".arm", true},
		{"control char", "arm\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("expected validation error, got %T", err)
			}
		})
	}
}

func TestAssetRecord_DocumentRoundTrip(t *testing.T) {
	rec := AssetRecord{
		Name:        "arm_CV",
		ScenePath:   "/lib/arm_CV.ma",
		PreviewPath: "/lib/arm_CV.jpg",
		ExtraInfo:   map[string]any{"author": "kh", "name": "ignored"},
	}

	doc := rec.Document()
	if doc[KeyName] != "arm_CV" {
		t.Errorf("reserved key should come from record, got %v", doc[KeyName])
	}

	back := RecordFromDocument(doc)
	if back.Name != rec.Name || back.ScenePath != rec.ScenePath || back.PreviewPath != rec.PreviewPath {
		t.Errorf("round trip mismatch: %+v", back)
	}
	if back.ExtraInfo["author"] != "kh" {
		t.Errorf("extra info lost: %v", back.ExtraInfo)
	}
	if _, ok := back.ExtraInfo[KeyName]; ok {
		t.Error("reserved key leaked into extra info")
	}
}

func TestAssetRecord_DocumentWithoutPreview(t *testing.T) {
	rec := AssetRecord{
		Name:      "arm_CV",
		ScenePath: "/lib/arm_CV.ma",
		ExtraInfo: map[string]any{KeyPreviewPath: "/stale.jpg"},
	}
	if _, ok := rec.Document()[KeyPreviewPath]; ok {
		t.Error("previewPath should be omitted when the record has none")
	}
}

func TestSnapshot_SortedAccessors(t *testing.T) {
	s := Snapshot{
		"zeta":  {Name: "zeta"},
		"alpha": {Name: "alpha"},
		"mid":   {Name: "mid"},
	}
	names := s.Names()
	if names[0] != "alpha" || names[1] != "mid" || names[2] != "zeta" {
		t.Errorf("Names() = %v", names)
	}
	recs := s.Records()
	if recs[2].Name != "zeta" {
		t.Errorf("Records() not sorted: %v", recs)
	}
}
