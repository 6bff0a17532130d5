package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
	"github.com/kamal-hamza/px-cli/internal/core/ports"
)

// Scene check names
const (
	CheckSuffix    = "suffix"
	CheckTransform = "transform"
	CheckTidy      = "tidy"
)

// CheckNames returns the scene checks in the order RunAll runs them
func CheckNames() []string {
	return []string{CheckSuffix, CheckTransform, CheckTidy}
}

// SuffixRules maps node types to their naming suffix. An empty suffix exempts the type.
type SuffixRules struct {
	Suffixes map[string]string
	Default  string
}

// For returns the expected suffix for a node type and whether the type is checked
func (r SuffixRules) For(nodeType string) (string, bool) {
	if s, ok := r.Suffixes[nodeType]; ok {
		return s, s != ""
	}
	return r.Default, r.Default != ""
}

// SceneCheckService validates the open scene against the publishing rules
type SceneCheckService struct {
	query ports.SceneQuery
	rules SuffixRules
}

// NewSceneCheckService creates a new scene check service
func NewSceneCheckService(query ports.SceneQuery, rules SuffixRules) *SceneCheckService {
	return &SceneCheckService{query: query, rules: rules}
}

// SceneCheckResult collects the reports of a full run
type SceneCheckResult struct {
	Reports []domain.CheckReport
	Passed  bool
}

// Failed returns the reports that did not pass
func (r *SceneCheckResult) Failed() []domain.CheckReport {
	var out []domain.CheckReport
	for _, rep := range r.Reports {
		if !rep.Passed {
			out = append(out, rep)
		}
	}
	return out
}

// Summary is a one-line description of the failed checks
func (r *SceneCheckResult) Summary() string {
	if r.Passed {
		return "passed scene check"
	}
	var names []string
	for _, rep := range r.Failed() {
		names = append(names, rep.Check)
	}
	return fmt.Sprintf("failed scene check: %s", strings.Join(names, ", "))
}

func (s *SceneCheckService) snapshot(ctx context.Context) (domain.SceneSnapshot, error) {
	snap, err := s.query.Snapshot(ctx)
	if err != nil {
		return domain.SceneSnapshot{}, domain.WrapHost("snapshot", err)
	}
	return snap, nil
}

// Run executes one check by name
func (s *SceneCheckService) Run(ctx context.Context, name string) (domain.CheckReport, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return domain.CheckReport{}, err
	}
	return s.evaluate(name, snap)
}

func (s *SceneCheckService) evaluate(name string, snap domain.SceneSnapshot) (domain.CheckReport, error) {
	switch name {
	case CheckSuffix:
		return s.Suffix(snap), nil
	case CheckTransform:
		return Transform(snap), nil
	case CheckTidy:
		return Tidy(snap), nil
	}
	return domain.CheckReport{}, domain.NewValidationError("check",
		fmt.Sprintf("unknown check %q (expected one of %s)", name, strings.Join(CheckNames(), ", ")))
}

// RunAll executes every check against one snapshot of the scene
func (s *SceneCheckService) RunAll(ctx context.Context) (*SceneCheckResult, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &SceneCheckResult{Passed: true}
	for _, name := range CheckNames() {
		rep, err := s.evaluate(name, snap)
		if err != nil {
			return nil, err
		}
		result.Reports = append(result.Reports, rep)
		if !rep.Passed {
			result.Passed = false
		}
	}
	return result, nil
}

// Suffix checks that transforms and joints carry the suffix of what they hold.
// A transform with a single child is judged by the child's type.
func (s *SceneCheckService) Suffix(snap domain.SceneSnapshot) domain.CheckReport {
	var failed []string
	for _, obj := range snap.Objects {
		if obj.Type != "transform" && obj.Type != "joint" {
			continue
		}
		suffix, checked := s.rules.For(obj.EffectiveType())
		if !checked || obj.HasSuffix(suffix) || strings.HasSuffix(obj.Name, "Shape") {
			continue
		}
		failed = append(failed, obj.Name)
	}
	return report(CheckSuffix, "The following objects have the incorrect suffix", failed)
}

// Transform checks that transforms are frozen. Joints and lights may be placed
// but not rotated or scaled.
func Transform(snap domain.SceneSnapshot) domain.CheckReport {
	var failed []string
	for _, obj := range snap.Objects {
		if obj.Type != "transform" || len(obj.Children) == 0 {
			continue
		}
		last := obj.Children[len(obj.Children)-1]
		if last == "camera" {
			continue
		}

		frozen := obj.Rotate == domain.Zero3 && obj.Scale == domain.One3
		if last != "joint" && !strings.HasSuffix(obj.Name, "_LGT") {
			frozen = frozen && obj.Translate == domain.Zero3
		}
		if !frozen {
			failed = append(failed, obj.Name)
		}
	}
	return report(CheckTransform, "The following objects need transforms frozen", failed)
}

// Tidy checks for image planes and for geometry with construction history
func Tidy(snap domain.SceneSnapshot) domain.CheckReport {
	problems := append([]string(nil), snap.ImagePlanes...)
	for _, obj := range snap.Objects {
		if obj.IsGeometry() && len(obj.History) > 0 {
			problems = append(problems, obj.Name)
		}
	}

	msg := "The following objects have existing history"
	if len(snap.ImagePlanes) > 0 {
		msg = "Please remove all image planes and construction history"
	}
	return report(CheckTidy, msg, problems)
}

func report(check, message string, failed []string) domain.CheckReport {
	rep := domain.CheckReport{Check: check, Passed: len(failed) == 0, Failures: failed}
	if !rep.Passed {
		rep.Message = message
	}
	return rep
}
