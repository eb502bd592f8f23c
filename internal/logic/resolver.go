package logic

import (
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
)

// Source identifies which precedence step produced a resolution.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceOverride Source = "override"
	SourceControl  Source = "control"
	SourceBuiltin  Source = "builtin"
)

// UnknownPatternName is the telemetry name used when the built-in fallback
// content is shown.
const UnknownPatternName = "Unknown Pattern"

// BuiltinPatternID identifies the built-in fallback content.
const BuiltinPatternID = "default_admob"

var builtinRating = 4.5

// BuiltinContent is the neutral text ad shown when the catalog has no usable
// pattern. It never changes.
var BuiltinContent models.ContentVariant = models.TextContent{
	Text:            "Stay organized with powerful note-taking features!",
	BackgroundColor: "#FFFFFF",
	TextColor:       "#000000",
	Storefront: models.Storefront{
		AppName: "Notepad - Notes & To Do List",
		AppIcon: "notepad.png",
		Rating:  &builtinRating,
		Price:   "FREE",
		CTAText: "INSTALL",
		AppURL:  "https://play.google.com/store/apps/details?id=notes.notepad",
	},
}

// Resolution is the content chosen for an ad instance together with the
// pattern identity that click telemetry reports.
type Resolution struct {
	Content     models.ContentVariant
	PatternID   string
	PatternName string
	Source      Source
	Trace       *ResolutionTrace
}

// Resolver selects content from a catalog. It holds no mutable state, so one
// Resolver can serve every ad instance concurrently.
type Resolver struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	metrics observability.MetricsRegistry
}

// NewResolver creates a resolver over c. A nil catalog behaves as an empty one.
func NewResolver(c *catalog.Catalog, logger *zap.Logger, metrics observability.MetricsRegistry) *Resolver {
	if c == nil {
		c = catalog.Empty()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Resolver{catalog: c, logger: logger.Named("resolver"), metrics: metrics}
}

// Catalog returns the catalog the resolver reads from.
func (r *Resolver) Catalog() *catalog.Catalog { return r.catalog }

// Resolve picks content for a surface. The first matching step wins:
//
//  1. the pattern at explicitIndex, when set and in range
//  2. the override registered for packageID
//  3. pattern 0, the benign control
//  4. BuiltinContent
//
// The surface type does not influence the choice; it is recorded in logs only.
// Resolve never fails.
func (r *Resolver) Resolve(surface models.SurfaceType, explicitIndex *int, packageID string) Resolution {
	trace := &ResolutionTrace{}
	res := r.resolve(surface, explicitIndex, packageID, trace)
	res.Trace = trace
	r.metrics.IncrementResolutions(string(res.Source))
	return res
}

func (r *Resolver) resolve(surface models.SurfaceType, explicitIndex *int, packageID string, trace *ResolutionTrace) Resolution {
	if explicitIndex != nil {
		idx := *explicitIndex
		if p, ok := r.catalog.Pattern(idx); ok {
			trace.AddStep("explicit", true, p.ID)
			return fromPattern(p, SourceExplicit)
		}
		r.logger.Warn("explicit pattern index out of range",
			zap.Int("index", idx),
			zap.Int("pattern_count", r.catalog.PatternCount()),
			zap.String("surface", string(surface)),
		)
		trace.AddStepWithDetails("explicit_miss", false, "", indexDetails(idx, r.catalog.PatternCount()))
	}

	if packageID != "" {
		if p, ok := r.catalog.OverridePattern(packageID); ok {
			trace.AddStep("override", true, p.ID)
			return fromPattern(p, SourceOverride)
		}
		trace.AddStepWithDetails("override", false, "", map[string]string{"package": packageID})
	}

	if p, ok := r.catalog.Pattern(0); ok {
		trace.AddStep("control", true, p.ID)
		return fromPattern(p, SourceControl)
	}
	trace.AddStep("control", false, "")

	r.logger.Debug("using built-in fallback content", zap.String("surface", string(surface)))
	trace.AddStep("builtin", true, BuiltinPatternID)
	return Resolution{
		Content:     BuiltinContent,
		PatternID:   BuiltinPatternID,
		PatternName: UnknownPatternName,
		Source:      SourceBuiltin,
	}
}

func fromPattern(p models.AttackPattern, source Source) Resolution {
	return Resolution{
		Content:     p.Content,
		PatternID:   p.ID,
		PatternName: p.Name,
		Source:      source,
	}
}
