// Package config loads docpreview settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdul-Razack/docpreview/internal/dateutil"
	"github.com/Abdul-Razack/docpreview/internal/fileutil"
	"github.com/Abdul-Razack/docpreview/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxNoteLength       = 200
	MaxLangLength       = 10
	MaxPathLength       = 4096
	MaxDateFormatLength = dateutil.MaxDateFormatLength
	MaxPolicyNameLength = 64
)

// DefaultPolicyName keys the policy used for kinds without their own entry.
const DefaultPolicyName = "default"

// Config holds all configuration for previews and exports.
type Config struct {
	Page     PageConfig              `yaml:"page"`
	Budget   BudgetConfig            `yaml:"budget"`
	Policies map[string]PolicyConfig `yaml:"policies"`
	Document DocumentConfig          `yaml:"document"`
	Output   OutputConfig            `yaml:"output"`
	Assets   AssetsConfig            `yaml:"assets"`
	Log      LogConfig               `yaml:"log"`
	Timeout  string                  `yaml:"timeout"` // Go duration, e.g. "30s"
	Workers  int                     `yaml:"workers"` // 0 = auto
}

// PageConfig controls raster export.
type PageConfig struct {
	Oversampling       int    `yaml:"oversampling"`       // 1-4 (default: 2)
	LegacyTrailingBand bool   `yaml:"legacyTrailingBand"` // emit the extra blank page on exact multiples
	BandEncoding       string `yaml:"bandEncoding"`       // "png" or "jpeg" (default: "png")
	JPEGQuality        int    `yaml:"jpegQuality"`        // 1-100, jpeg only (default: 92)
}

// BudgetConfig holds the fallback height estimates and observation timing.
type BudgetConfig struct {
	HeaderPx          float64 `yaml:"headerPx"`
	FooterPx          float64 `yaml:"footerPx"`
	FirstPageMarginPx float64 `yaml:"firstPageMarginPx"`
	PageMarginPx      float64 `yaml:"pageMarginPx"`
	Debounce          string  `yaml:"debounce"`     // default: 300ms
	MountTimeout      string  `yaml:"mountTimeout"` // default: 2s
}

// PolicyConfig describes a capacity policy.
//
//	mode: fixed   -> perPage
//	mode: tiered  -> first, rest, minSplitRemainder
type PolicyConfig struct {
	Mode              string `yaml:"mode"`
	PerPage           int    `yaml:"perPage"`
	First             int    `yaml:"first"`
	Rest              int    `yaml:"rest"`
	MinSplitRemainder int    `yaml:"minSplitRemainder"`
}

// DocumentConfig holds presentation defaults.
type DocumentConfig struct {
	Lang      string `yaml:"lang"`
	Note      string `yaml:"note"`      // footer text on every page
	CreatedAt string `yaml:"createdAt"` // used when a document has none: "auto", "auto:FORMAT" or literal
}

// OutputConfig defines where artifacts are written.
type OutputConfig struct {
	Dir string `yaml:"dir"` // empty = current directory
}

// AssetsConfig defines template and style selection.
type AssetsConfig struct {
	BasePath    string `yaml:"basePath"` // empty = embedded assets only
	TemplateSet string `yaml:"templateSet"`
	Style       string `yaml:"style"`
}

// LogConfig selects the zap logger setup.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Default values.
const (
	DefaultOversampling = 2
	DefaultJPEGQuality  = 92
	DefaultDebounce     = 300 * time.Millisecond
	DefaultMountTimeout = 2 * time.Second
	DefaultTimeout      = 30 * time.Second
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.fillDefaults()
	return cfg
}

// fillDefaults sets every zero-valued field that has a default.
func (c *Config) fillDefaults() {
	if c.Page.Oversampling == 0 {
		c.Page.Oversampling = DefaultOversampling
	}
	if c.Page.BandEncoding == "" {
		c.Page.BandEncoding = "png"
	}
	if c.Page.JPEGQuality == 0 {
		c.Page.JPEGQuality = DefaultJPEGQuality
	}
	if c.Budget.HeaderPx == 0 {
		c.Budget.HeaderPx = 120
	}
	if c.Budget.FooterPx == 0 {
		c.Budget.FooterPx = 60
	}
	if c.Budget.FirstPageMarginPx == 0 {
		c.Budget.FirstPageMarginPx = 96
	}
	if c.Budget.PageMarginPx == 0 {
		c.Budget.PageMarginPx = 32
	}
	if c.Budget.Debounce == "" {
		c.Budget.Debounce = DefaultDebounce.String()
	}
	if c.Budget.MountTimeout == "" {
		c.Budget.MountTimeout = DefaultMountTimeout.String()
	}
	if c.Policies == nil {
		c.Policies = map[string]PolicyConfig{}
	}
	if _, ok := c.Policies[DefaultPolicyName]; !ok {
		c.Policies[DefaultPolicyName] = PolicyConfig{Mode: "tiered", First: 8, Rest: 12, MinSplitRemainder: 6}
	}
	if c.Document.Lang == "" {
		c.Document.Lang = "en"
	}
	if c.Assets.TemplateSet == "" {
		c.Assets.TemplateSet = "default"
	}
	if c.Assets.Style == "" {
		c.Assets.Style = "default"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Timeout == "" {
		c.Timeout = DefaultTimeout.String()
	}
}

// Validate checks ranges, enums and field lengths.
// Called by LoadConfig; available to callers that build a Config by hand.
func (c *Config) Validate() error {
	if err := c.validatePage(); err != nil {
		return err
	}
	if err := c.validateBudget(); err != nil {
		return err
	}
	for name, p := range c.Policies {
		if err := validateFieldLength("policies key", name, MaxPolicyNameLength); err != nil {
			return err
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("policies.%s: %w", name, err)
		}
	}

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"document.lang", c.Document.Lang, MaxLangLength},
		{"document.note", c.Document.Note, MaxNoteLength},
		{"output.dir", c.Output.Dir, MaxPathLength},
		{"document.createdAt", c.Document.CreatedAt, MaxDateFormatLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	if c.Document.CreatedAt != "" {
		if _, err := dateutil.ResolveDate(c.Document.CreatedAt, time.Now()); err != nil {
			return fmt.Errorf("document.createdAt: %w", err)
		}
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("%w: log.level %q (must be debug, info, warn or error)", ErrInvalidValue, c.Log.Level)
		}
	}
	if c.Log.Format != "" && c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format %q (must be console or json)", ErrInvalidValue, c.Log.Format)
	}
	if _, err := parseDuration("timeout", c.Timeout); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidValue, c.Workers)
	}
	return nil
}

func (c *Config) validatePage() error {
	if c.Page.Oversampling != 0 && (c.Page.Oversampling < 1 || c.Page.Oversampling > 4) {
		return fmt.Errorf("%w: page.oversampling must be between 1 and 4, got %d", ErrInvalidValue, c.Page.Oversampling)
	}
	switch c.Page.BandEncoding {
	case "", "png", "jpeg":
	default:
		return fmt.Errorf("%w: page.bandEncoding %q (must be png or jpeg)", ErrInvalidValue, c.Page.BandEncoding)
	}
	if c.Page.JPEGQuality != 0 && (c.Page.JPEGQuality < 1 || c.Page.JPEGQuality > 100) {
		return fmt.Errorf("%w: page.jpegQuality must be between 1 and 100, got %d", ErrInvalidValue, c.Page.JPEGQuality)
	}
	return nil
}

func (c *Config) validateBudget() error {
	sizes := map[string]float64{
		"budget.headerPx":          c.Budget.HeaderPx,
		"budget.footerPx":          c.Budget.FooterPx,
		"budget.firstPageMarginPx": c.Budget.FirstPageMarginPx,
		"budget.pageMarginPx":      c.Budget.PageMarginPx,
	}
	for name, v := range sizes {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %.1f", ErrInvalidValue, name, v)
		}
	}
	if _, err := parseDuration("budget.debounce", c.Budget.Debounce); err != nil {
		return err
	}
	if _, err := parseDuration("budget.mountTimeout", c.Budget.MountTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks the mode and that every capacity is positive.
func (p PolicyConfig) Validate() error {
	switch strings.ToLower(p.Mode) {
	case "fixed":
		if p.PerPage <= 0 {
			return fmt.Errorf("%w: perPage must be positive, got %d", ErrInvalidValue, p.PerPage)
		}
	case "tiered":
		if p.First <= 0 || p.Rest <= 0 {
			return fmt.Errorf("%w: first and rest must be positive, got %d/%d", ErrInvalidValue, p.First, p.Rest)
		}
		if p.MinSplitRemainder < 0 {
			return fmt.Errorf("%w: minSplitRemainder must be >= 0, got %d", ErrInvalidValue, p.MinSplitRemainder)
		}
	default:
		return fmt.Errorf("%w: mode %q (must be fixed or tiered)", ErrInvalidValue, p.Mode)
	}
	return nil
}

// PolicyFor returns the policy configured for kind, or the default policy.
func (c *Config) PolicyFor(kind string) PolicyConfig {
	if p, ok := c.Policies[kind]; ok {
		return p
	}
	return c.Policies[DefaultPolicyName]
}

// DebounceDuration returns budget.debounce, or the default if unset or invalid.
func (c *Config) DebounceDuration() time.Duration {
	return durationOr(c.Budget.Debounce, DefaultDebounce)
}

// MountTimeoutDuration returns budget.mountTimeout, or the default.
func (c *Config) MountTimeoutDuration() time.Duration {
	return durationOr(c.Budget.MountTimeout, DefaultMountTimeout)
}

// TimeoutDuration returns timeout, or the default.
func (c *Config) TimeoutDuration() time.Duration {
	return durationOr(c.Timeout, DefaultTimeout)
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, field, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidValue, field, s)
	}
	return d, nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or a config name.
// Names are searched in the current directory and then in
// ~/.config/docpreview/. A missing file is an error, never a silent default.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	path := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if path, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := yamlutil.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigNotFoundError carries the paths searched so the CLI can hint at them.
type ConfigNotFoundError struct {
	Name  string
	Tried []string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("%v: %q (tried %s)", ErrConfigNotFound, e.Name, strings.Join(e.Tried, ", "))
}

func (e *ConfigNotFoundError) Unwrap() error { return ErrConfigNotFound }

// resolveConfigPath tries .yaml then .yml, in the current directory and
// then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	exts := []string{".yaml", ".yml"}
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, "docpreview"))
	}

	var tried []string
	for _, dir := range dirs {
		for _, ext := range exts {
			p := filepath.Join(dir, name+ext)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", &ConfigNotFoundError{Name: name, Tried: tried}
}
