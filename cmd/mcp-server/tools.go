package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/api"
	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/logic"
	"github.com/patrickwarner/adsdk/internal/logic/render"
	"github.com/patrickwarner/adsdk/internal/models"
)

var errNoCounters = errors.New("click counters unavailable: REDIS_ADDR not reachable")

type ListPatternsInput struct{}

type PatternSummary struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Format string `json:"format"`
}

type OverrideSummary struct {
	PackageName string `json:"package_name"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Format      string `json:"format"`
}

type ListPatternsOutput struct {
	Patterns  []PatternSummary  `json:"patterns"`
	Overrides []OverrideSummary `json:"overrides"`
}

type ResolveInput struct {
	Surface     string `json:"surface"`
	Index       *int   `json:"index,omitempty"`
	PackageName string `json:"package_name,omitempty"`
}

type ResolveOutput struct {
	PatternID   string            `json:"pattern_id"`
	PatternName string            `json:"pattern_name"`
	Source      string            `json:"source"`
	Format      string            `json:"format"`
	Content     map[string]any    `json:"content"`
	HTML        string            `json:"html"`
	Trace       []logic.TraceStep `json:"trace"`
}

type StatsInput struct {
	Date string `json:"date,omitempty"`
}

type StatsOutput struct {
	Date     string           `json:"date"`
	Patterns map[string]int64 `json:"patterns"`
	Total    int64            `json:"total"`
}

// Inspector exposes the pattern catalog and click counters as MCP tools.
type Inspector struct {
	catalog  *catalog.Catalog
	resolver *logic.Resolver
	counters api.PatternCounter // nil when Redis is unavailable
	logger   *zap.Logger
	now      func() time.Time
}

// NewInspector creates an Inspector over c. counters may be nil.
func NewInspector(c *catalog.Catalog, counters api.PatternCounter, logger *zap.Logger) *Inspector {
	return &Inspector{
		catalog:  c,
		resolver: logic.NewResolver(c, logger, nil),
		counters: counters,
		logger:   logger,
		now:      time.Now,
	}
}

// ListAttackPatterns implements the list_attack_patterns tool.
func (s *Inspector) ListAttackPatterns(ctx context.Context, req *mcp.CallToolRequest, _ ListPatternsInput) (*mcp.CallToolResult, ListPatternsOutput, error) {
	out := ListPatternsOutput{Patterns: []PatternSummary{}, Overrides: []OverrideSummary{}}
	for i, p := range s.catalog.Patterns() {
		out.Patterns = append(out.Patterns, PatternSummary{Index: i, ID: p.ID, Name: p.Name, Format: string(p.Format())})
	}
	for _, o := range s.catalog.Overrides() {
		out.Overrides = append(out.Overrides, OverrideSummary{
			PackageName: o.PackageName,
			ID:          o.Pattern.ID,
			Name:        o.Pattern.Name,
			Format:      string(o.Pattern.Format()),
		})
	}
	s.logger.Debug("listed attack patterns", zap.Int("patterns", len(out.Patterns)))
	return nil, out, nil
}

// ResolveContent implements the resolve_content tool.
func (s *Inspector) ResolveContent(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, ResolveOutput, error) {
	surface, err := models.ParseSurface(input.Surface)
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	res := s.resolver.Resolve(surface, input.Index, input.PackageName)

	content, err := contentFields(res.Content)
	if err != nil {
		return nil, ResolveOutput{}, err
	}
	out := ResolveOutput{
		PatternID:   res.PatternID,
		PatternName: res.PatternName,
		Source:      string(res.Source),
		Format:      string(res.Content.Format()),
		Content:     content,
		HTML:        render.ComposeContentHTML(res.Content),
		Trace:       []logic.TraceStep{},
	}
	if res.Trace != nil {
		out.Trace = res.Trace.Steps
	}
	s.logger.Info("resolved content",
		zap.String("surface", string(surface)),
		zap.String("pattern", res.PatternName),
		zap.String("source", string(res.Source)))
	return nil, out, nil
}

// PatternClickStats implements the pattern_click_stats tool.
func (s *Inspector) PatternClickStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	if s.counters == nil {
		return nil, StatsOutput{}, errNoCounters
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	day := s.now().UTC()
	if input.Date != "" {
		d, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return nil, StatsOutput{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
		}
		day = d
	}
	counts, err := s.counters.PatternClickCounts(ctx, day)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	out := StatsOutput{Date: day.Format("2006-01-02"), Patterns: counts}
	for _, n := range counts {
		out.Total += n
	}
	return nil, out, nil
}

// contentFields converts content to its JSON object form.
func contentFields(c models.ContentVariant) (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return fields, nil
}

// register adds the inspector tools to server.
func (s *Inspector) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_attack_patterns",
		Description: "List the attack patterns and package overrides loaded from the pattern configuration",
		InputSchema: map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		},
	}, s.ListAttackPatterns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_content",
		Description: "Resolve the content an ad would show, with the resolution trace and an HTML preview",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"surface": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"banner", "interstitial", "appOpen"},
					"description": "Ad surface type",
				},
				"index": map[string]interface{}{
					"type":        "integer",
					"description": "Explicit attack pattern index (optional)",
				},
				"package_name": map[string]interface{}{
					"type":        "string",
					"description": "Host application package used for override lookup (optional)",
				},
			},
			"required": []string{"surface"},
		},
	}, s.ResolveContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pattern_click_stats",
		Description: "Per-pattern click counts recorded by the click collector for one UTC day",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Day as YYYY-MM-DD (optional, defaults to today)",
				},
			},
		},
	}, s.PatternClickStats)
}
