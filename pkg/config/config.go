package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Catalog layout
	SceneExtension    string `yaml:"scene_extension"`
	MetadataExtension string `yaml:"metadata_extension"`
	PreviewExtension  string `yaml:"preview_extension"`

	// Preview capture
	CapturePreview bool `yaml:"capture_preview"`
	PreviewWidth   int  `yaml:"preview_width"`
	PreviewHeight  int  `yaml:"preview_height"`

	// Material importer
	DefaultRenderer   string   `yaml:"default_renderer"`
	TextureExtensions []string `yaml:"texture_extensions"`

	// Scene check. An empty suffix exempts the type from the suffix test.
	Suffixes      map[string]string `yaml:"suffixes"`
	DefaultSuffix string            `yaml:"default_suffix"`

	// Logging
	LogMode  string `yaml:"log_mode"`
	LogLevel string `yaml:"log_level"`

	// UI Settings
	Editor     string `yaml:"editor"`
	ColorTheme string `yaml:"color_theme"`
}

// DefaultSuffixes returns the built-in naming suffix table
func DefaultSuffixes() map[string]string {
	return map[string]string{
		"mesh":             "GEO",
		"joint":            "JNT",
		"camera":           "",
		"nurbsCurve":       "CV",
		"ambientLight":     "LGT",
		"directionalLight": "LGT",
	}
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		SceneExtension:    ".ma",
		MetadataExtension: ".json",
		PreviewExtension:  ".jpg",
		CapturePreview:    true,
		PreviewWidth:      200,
		PreviewHeight:     200,
		DefaultRenderer:   "arnold",
		TextureExtensions: []string{".jpg", ".png", ".tiff"},
		Suffixes:          DefaultSuffixes(),
		DefaultSuffix:     "GRP",
		LogMode:           "dev",
		LogLevel:          "info",
		Editor:            "",
		ColorTheme:        "auto",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if !isValidRenderer(cfg.DefaultRenderer) {
		return nil, fmt.Errorf("invalid default_renderer %q (expected arnold or blinn)", cfg.DefaultRenderer)
	}

	return cfg, nil
}

// applyDefaults back-fills essential values left empty by a partial file
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.SceneExtension == "" {
		c.SceneExtension = def.SceneExtension
	}
	if c.MetadataExtension == "" {
		c.MetadataExtension = def.MetadataExtension
	}
	if c.PreviewExtension == "" {
		c.PreviewExtension = def.PreviewExtension
	}
	c.SceneExtension = normalizeExt(c.SceneExtension)
	c.MetadataExtension = normalizeExt(c.MetadataExtension)
	c.PreviewExtension = normalizeExt(c.PreviewExtension)

	if c.PreviewWidth <= 0 {
		c.PreviewWidth = def.PreviewWidth
	}
	if c.PreviewHeight <= 0 {
		c.PreviewHeight = def.PreviewHeight
	}
	if c.DefaultRenderer == "" {
		c.DefaultRenderer = def.DefaultRenderer
	}
	if len(c.TextureExtensions) == 0 {
		c.TextureExtensions = def.TextureExtensions
	}
	for i, ext := range c.TextureExtensions {
		c.TextureExtensions[i] = normalizeExt(ext)
	}
	// Ensure map is initialized if nil
	if c.Suffixes == nil {
		c.Suffixes = def.Suffixes
	}
	if c.DefaultSuffix == "" {
		c.DefaultSuffix = def.DefaultSuffix
	}
	if c.LogMode == "" {
		c.LogMode = def.LogMode
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.ColorTheme == "" {
		c.ColorTheme = def.ColorTheme
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SuffixFor returns the expected suffix for a node type and whether the type
// is checked at all
func (c *Config) SuffixFor(nodeType string) (string, bool) {
	if suffix, ok := c.Suffixes[nodeType]; ok {
		return suffix, suffix != ""
	}
	return c.DefaultSuffix, true
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func isValidRenderer(r string) bool {
	switch strings.ToLower(r) {
	case "arnold", "ai", "blinn", "maya":
		return true
	}
	return false
}
