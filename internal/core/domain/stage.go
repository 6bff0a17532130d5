package domain

import (
	"fmt"
	"strings"
)

// Stage is one department in the fixed pipeline order
type Stage string

const (
	Modeling  Stage = "modeling"
	Texturing Stage = "texturing"
	Rigging   Stage = "rigging"
	Lighting  Stage = "lighting"

	// NoStage is the "no predecessor" sentinel returned for the first stage
	NoStage Stage = ""
)

// stageOrder is total: each stage is seeded by the latest output of the one before it
var stageOrder = []Stage{Modeling, Texturing, Rigging, Lighting}

// Stages returns the pipeline stages in order
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// ParseStage resolves a stage token, case-insensitively
func ParseStage(s string) (Stage, error) {
	token := Stage(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range stageOrder {
		if st == token {
			return st, nil
		}
	}
	return NoStage, &InvalidStageError{Stage: s}
}

// Index returns the stage's position in the pipeline order, or -1
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Previous returns the predecessor stage, NoStage for the first stage
func (s Stage) Previous() (Stage, error) {
	i := s.Index()
	if i < 0 {
		return NoStage, &InvalidStageError{Stage: string(s)}
	}
	if i == 0 {
		return NoStage, nil
	}
	return stageOrder[i-1], nil
}

// Next returns the successor stage, NoStage for the last stage
func (s Stage) Next() (Stage, error) {
	i := s.Index()
	if i < 0 {
		return NoStage, &InvalidStageError{Stage: string(s)}
	}
	if i == len(stageOrder)-1 {
		return NoStage, nil
	}
	return stageOrder[i+1], nil
}

func (s Stage) String() string { return string(s) }

// StagedName is a {base}_{stage} stem, used for stage directories and master files
type StagedName struct {
	Base  string
	Stage Stage
}

// IsNone reports whether this is the "no predecessor" value
func (n StagedName) IsNone() bool {
	return n.Stage == NoStage
}

func (n StagedName) String() string {
	if n.IsNone() {
		return ""
	}
	return n.Base + "_" + string(n.Stage)
}

// AdvanceStage returns the staged name whose latest output seeds currentStage.
// For the first stage the result has Stage == NoStage.
func AdvanceStage(baseName, currentStage string) (StagedName, error) {
	current, err := ParseStage(currentStage)
	if err != nil {
		return StagedName{}, err
	}
	prev, err := current.Previous()
	if err != nil {
		return StagedName{}, err
	}
	return StagedName{Base: baseName, Stage: prev}, nil
}

func stageList() string {
	parts := make([]string, len(stageOrder))
	for i, st := range stageOrder {
		parts[i] = string(st)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
