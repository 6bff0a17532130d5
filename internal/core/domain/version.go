package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// VersionWidth is the zero-padding width of version suffixes.
// Lexicographic order of padded suffixes matches numeric order up to 999.
const VersionWidth = 3

// MaxVersion is the highest version that still sorts correctly at VersionWidth
const MaxVersion = 999

// FirstVersion is the version given to the first versioned file of a staged name
const FirstVersion = 0

// FormatVersion renders a version number with fixed-width zero padding
func FormatVersion(v int) string {
	return fmt.Sprintf("%0*d", VersionWidth, v)
}

// VersionedName is a parsed {base}_{stage}_{version} file stem
type VersionedName struct {
	Base    string
	Stage   string
	Version int
}

func (v VersionedName) String() string {
	return fmt.Sprintf("%s_%s_%s", v.Base, v.Stage, FormatVersion(v.Version))
}

// Staged returns the {base}_{stage} stem without the version
func (v VersionedName) Staged() string {
	return v.Base + "_" + v.Stage
}

// Stem strips the directory and the extension from a file name.
// "/p/foo_rig_001.ma" -> "foo_rig_001"
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseVersionedName parses a file name following {base}_{stage}_{version}.
// The base may not contain underscores; anything else is rejected.
func ParseVersionedName(name string) (VersionedName, bool) {
	parts := strings.Split(Stem(name), "_")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return VersionedName{}, false
	}
	v, ok := parseVersion(parts[2])
	if !ok {
		return VersionedName{}, false
	}
	return VersionedName{Base: parts[0], Stage: parts[1], Version: v}, true
}

// ParseStagedName splits the leading {base}_{stage} segments of a file name.
// "chair_rigging_004.ma" -> {chair, rigging}
func ParseStagedName(name string) (StagedName, error) {
	parts := strings.Split(Stem(name), "_")
	if len(parts) < 2 || parts[0] == "" {
		return StagedName{}, NewValidationError("scene name",
			fmt.Sprintf("%q does not follow {prop}_{stage}[_{version}]", filepath.Base(name)))
	}
	st, err := ParseStage(parts[1])
	if err != nil {
		return StagedName{}, err
	}
	return StagedName{Base: parts[0], Stage: st}, nil
}

// NextVersion returns the next versioned stem for baseName given the sibling names.
// Siblings are matched as {baseName}_{digits} after stripping extensions; any other
// name, including malformed suffixes, is ignored. With no versioned sibling the
// first version is returned.
func NextVersion(existingNames []string, baseName string) string {
	highest := -1
	prefix := baseName + "_"
	for _, name := range existingNames {
		stem := Stem(name)
		if !strings.HasPrefix(stem, prefix) {
			continue
		}
		v, ok := parseVersion(strings.TrimPrefix(stem, prefix))
		if !ok {
			continue
		}
		if v > highest {
			highest = v
		}
	}

	next := FirstVersion
	if highest >= 0 {
		next = highest + 1
	}
	return prefix + FormatVersion(next)
}

func parseVersion(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
