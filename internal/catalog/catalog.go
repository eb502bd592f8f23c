// Package catalog parses the attack pattern configuration document and holds
// the resulting patterns, per-surface defaults and per-package overrides.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
)

// Document section names, used in logs and metric labels.
const (
	SectionPatterns  = "attackPatterns"
	SectionOverrides = "appSpecificAttacks"
	SectionDefaults  = "defaults"
)

// Override is a package-specific pattern. It replaces the benign control for
// callers whose package name matches.
type Override struct {
	PackageName string
	Pattern     models.AttackPattern
}

// Catalog is the immutable set of patterns loaded at initialization. All
// methods are safe for concurrent use without locking.
type Catalog struct {
	patterns  []models.AttackPattern
	overrides map[string]models.AttackPattern
	packages  []string // override package names in document order
	defaults  map[models.SurfaceType]models.ContentVariant
}

// Empty returns a catalog with no patterns, overrides or defaults.
func Empty() *Catalog {
	return &Catalog{
		overrides: map[string]models.AttackPattern{},
		defaults:  map[models.SurfaceType]models.ContentVariant{},
	}
}

// document mirrors the top level of the configuration file. Elements are kept
// raw so each one can be validated and skipped independently.
type document struct {
	AttackPatterns     []json.RawMessage          `json:"attackPatterns"`
	AppSpecificAttacks []json.RawMessage          `json:"appSpecificAttacks"`
	Defaults           map[string]json.RawMessage `json:"defaults"`
}

type entry struct {
	PackageName string          `json:"packageName"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Format      models.Format   `json:"format"`
	Content     json.RawMessage `json:"content"`
}

var loadSchemas = sync.OnceValues(compileSchemas)

// Load parses a configuration document. A document that cannot be parsed at
// all yields an empty catalog together with a *ConfigError; callers are
// expected to keep using the returned catalog. Invalid elements are skipped
// and logged without failing the load.
func Load(raw []byte, logger *zap.Logger, metrics observability.MetricsRegistry) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	logger = logger.Named("catalog")

	s, err := loadSchemas()
	if err != nil {
		return Empty(), &ConfigError{Op: "compile schema", Err: err}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return Empty(), &ConfigError{Op: "parse", Err: ErrEmptyDocument}
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Empty(), &ConfigError{Op: "parse", Err: err}
	}

	c := Empty()
	if doc.AttackPatterns == nil {
		logger.Warn("configuration has no attack patterns", zap.String("section", SectionPatterns))
	}
	for i, el := range doc.AttackPatterns {
		e, content, err := decodeEntry(el, s.pattern)
		if err != nil {
			skip(logger, metrics, SectionPatterns, i, err)
			continue
		}
		c.patterns = append(c.patterns, models.AttackPattern{ID: e.ID, Name: e.Name, Content: content})
		metrics.IncrementCatalogEntries(SectionPatterns, "accepted")
	}

	for i, el := range doc.AppSpecificAttacks {
		e, content, err := decodeEntry(el, s.override)
		if err != nil {
			skip(logger, metrics, SectionOverrides, i, err)
			continue
		}
		if _, dup := c.overrides[e.PackageName]; dup {
			skip(logger, metrics, SectionOverrides, i, fmt.Errorf("%w: %s", ErrDuplicatePackage, e.PackageName))
			continue
		}
		c.overrides[e.PackageName] = models.AttackPattern{ID: e.ID, Name: e.Name, Content: content}
		c.packages = append(c.packages, e.PackageName)
		metrics.IncrementCatalogEntries(SectionOverrides, "accepted")
	}

	for key, el := range doc.Defaults {
		surface, err := models.ParseSurface(key)
		if err != nil || key != string(surface) {
			logger.Warn("skipping default for unknown surface", zap.String("surface", key))
			metrics.IncrementCatalogEntries(SectionDefaults, "skipped")
			continue
		}
		_, content, err := decodeEntry(el, s.content)
		if err != nil {
			logger.Warn("skipping invalid default",
				zap.String("surface", key),
				zap.Error(err),
			)
			metrics.IncrementCatalogEntries(SectionDefaults, "skipped")
			continue
		}
		c.defaults[surface] = content
		metrics.IncrementCatalogEntries(SectionDefaults, "accepted")
	}

	logger.Info("pattern catalog loaded",
		zap.Int("patterns", len(c.patterns)),
		zap.Int("overrides", len(c.overrides)),
		zap.Int("defaults", len(c.defaults)),
	)
	return c, nil
}

// LoadFile reads path and parses it with Load. A missing or unreadable file is
// reported as a *ConfigError alongside an empty catalog.
func LoadFile(path string, logger *zap.Logger, metrics observability.MetricsRegistry) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Empty(), &ConfigError{Op: "read " + path, Err: err}
	}
	return Load(raw, logger, metrics)
}

func skip(logger *zap.Logger, metrics observability.MetricsRegistry, section string, index int, err error) {
	logger.Warn("skipping invalid configuration entry",
		zap.String("section", section),
		zap.Int("index", index),
		zap.Error(err),
	)
	metrics.IncrementCatalogEntries(section, "skipped")
}

// decodeEntry validates raw against schema and decodes it into an entry and
// its typed content.
func decodeEntry(raw json.RawMessage, schema *jsonschema.Schema) (entry, models.ContentVariant, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return entry{}, nil, err
	}
	if err := schema.Validate(generic); err != nil {
		return entry{}, nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, nil, err
	}
	content, err := decodeContent(e.Format, e.Content)
	if err != nil {
		return entry{}, nil, err
	}
	return e, content, nil
}

func decodeContent(format models.Format, raw json.RawMessage) (models.ContentVariant, error) {
	switch format {
	case models.FormatText:
		var t models.TextContent
		err := json.Unmarshal(raw, &t)
		return t, err
	case models.FormatImage:
		var i models.ImageContent
		err := json.Unmarshal(raw, &i)
		return i, err
	case models.FormatHTML:
		var h models.HTMLContent
		err := json.Unmarshal(raw, &h)
		return h, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// PatternCount returns the number of accepted patterns.
func (c *Catalog) PatternCount() int {
	if c == nil {
		return 0
	}
	return len(c.patterns)
}

// Pattern returns the pattern at index i. It reports false for any index
// outside [0, PatternCount()).
func (c *Catalog) Pattern(i int) (models.AttackPattern, bool) {
	if c == nil || i < 0 || i >= len(c.patterns) {
		return models.AttackPattern{}, false
	}
	return c.patterns[i], true
}

// Patterns returns a copy of all patterns in index order.
func (c *Catalog) Patterns() []models.AttackPattern {
	if c == nil {
		return nil
	}
	out := make([]models.AttackPattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Default returns the configured fallback content for a surface type.
func (c *Catalog) Default(surface models.SurfaceType) (models.ContentVariant, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.defaults[surface]
	return v, ok
}

// Override returns the content configured for packageName.
func (c *Catalog) Override(packageName string) (models.ContentVariant, bool) {
	p, ok := c.OverridePattern(packageName)
	return p.Content, ok
}

// OverridePattern returns the full override pattern for packageName.
func (c *Catalog) OverridePattern(packageName string) (models.AttackPattern, bool) {
	if c == nil || packageName == "" {
		return models.AttackPattern{}, false
	}
	p, ok := c.overrides[packageName]
	return p, ok
}

// Overrides returns every override in document order.
func (c *Catalog) Overrides() []Override {
	if c == nil {
		return nil
	}
	out := make([]Override, 0, len(c.packages))
	for _, pkg := range c.packages {
		out = append(out, Override{PackageName: pkg, Pattern: c.overrides[pkg]})
	}
	return out
}

// IsConfigError reports whether err came from a failed document load.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
