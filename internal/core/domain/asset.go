package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Metadata keys owned by the catalog. Anything else in a record file is extra info.
const (
	KeyName        = "name"
	KeyScenePath   = "scenePath"
	KeyPreviewPath = "previewPath"
)

// AssetRecord describes one asset in a catalog directory
type AssetRecord struct {
	Name        string
	ScenePath   string
	PreviewPath string         // empty when no preview was captured
	ExtraInfo   map[string]any // caller supplied, round-tripped verbatim
}

// HasPreview reports whether a preview image is attached
func (r AssetRecord) HasPreview() bool {
	return r.PreviewPath != ""
}

// Document flattens the record into the metadata document written next to the scene.
// Reserved keys always come from the record fields.
func (r AssetRecord) Document() map[string]any {
	doc := make(map[string]any, len(r.ExtraInfo)+3)
	for k, v := range r.ExtraInfo {
		doc[k] = v
	}
	doc[KeyName] = r.Name
	doc[KeyScenePath] = r.ScenePath
	if r.PreviewPath != "" {
		doc[KeyPreviewPath] = r.PreviewPath
	} else {
		delete(doc, KeyPreviewPath)
	}
	return doc
}

// RecordFromDocument splits a parsed metadata document back into a record
func RecordFromDocument(doc map[string]any) AssetRecord {
	rec := AssetRecord{ExtraInfo: make(map[string]any)}
	for k, v := range doc {
		switch k {
		case KeyName:
			rec.Name, _ = v.(string)
		case KeyScenePath:
			rec.ScenePath, _ = v.(string)
		case KeyPreviewPath:
			rec.PreviewPath, _ = v.(string)
		default:
			rec.ExtraInfo[k] = v
		}
	}
	return rec
}

// InfoKeys returns the extra info keys in sorted order
func (r AssetRecord) InfoKeys() []string {
	keys := make([]string, 0, len(r.ExtraInfo))
	for k := range r.ExtraInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot is a point-in-time copy of a catalog index keyed by asset name
type Snapshot map[string]AssetRecord

// Names returns the snapshot's asset names sorted
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns the snapshot's records sorted by name
func (s Snapshot) Records() []AssetRecord {
	out := make([]AssetRecord, 0, len(s))
	for _, name := range s.Names() {
		out = append(out, s[name])
	}
	return out
}

const unsafeNameChars = `/\:*?"<>|`

// ValidateAssetName checks that name is usable as a catalog file name
func ValidateAssetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "name cannot be empty")
	}
	if name != strings.TrimSpace(name) {
		return NewValidationError("name", "name cannot start or end with whitespace")
	}
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return NewValidationError("name", "name cannot start with a dot")
	}
	if len(name) > 200 {
		return NewValidationError("name", "name too long (max 200 characters)")
	}
	for _, r := range name {
		if strings.ContainsRune(unsafeNameChars, r) || unicode.IsControl(r) {
			return NewValidationError("name", "name contains invalid characters")
		}
	}
	return nil
}
