package logic

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap/zaptest"

	"github.com/patrickwarner/adsdk/internal/catalog"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
)

const resolverDoc = `{
  "attackPatterns": [
    {"id": "control", "name": "Benign Control", "format": "text", "content": {"text": "hi", "backgroundColor": "#fff", "textColor": "#000"}},
    {"id": "harm", "name": "Direct Harm Attack", "format": "text", "content": {"text": "tap now", "backgroundColor": "#f00", "textColor": "#fff"}},
    {"id": "img", "name": "Image Attack", "format": "image", "content": {"imageUrl": "i.png", "clickUrl": "https://c"}}
  ],
  "appSpecificAttacks": [
    {"packageName": "com.example.mail", "id": "mail", "name": "Mail Prompt", "format": "html", "content": {"html": "<p>verify</p>"}}
  ],
  "defaults": {"banner": {"format": "html", "content": {"html": "default"}}}
}`

func newTestResolver(t *testing.T, doc string) (*Resolver, *observability.MockMetricsRegistry) {
	t.Helper()
	c, err := catalog.Load([]byte(doc), zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	metrics := observability.NewMockMetricsRegistry()
	return NewResolver(c, zaptest.NewLogger(t), metrics), metrics
}

func intPtr(i int) *int { return &i }

func TestResolvePrecedence(t *testing.T) {
	r, metrics := newTestResolver(t, resolverDoc)

	tests := []struct {
		name     string
		index    *int
		pkg      string
		wantID   string
		wantName string
		source   Source
	}{
		{"explicit wins over override", intPtr(1), "com.example.mail", "harm", "Direct Harm Attack", SourceExplicit},
		{"explicit index zero", intPtr(0), "", "control", "Benign Control", SourceExplicit},
		{"out of range falls to override", intPtr(7), "com.example.mail", "mail", "Mail Prompt", SourceOverride},
		{"negative index falls to control", intPtr(-1), "", "control", "Benign Control", SourceControl},
		{"override without index", nil, "com.example.mail", "mail", "Mail Prompt", SourceOverride},
		{"unknown package uses control", nil, "com.other", "control", "Benign Control", SourceControl},
		{"nothing set uses control", nil, "", "control", "Benign Control", SourceControl},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(models.SurfaceBanner, tt.index, tt.pkg)
			if res.PatternID != tt.wantID || res.PatternName != tt.wantName || res.Source != tt.source {
				t.Fatalf("got %s/%q/%s, want %s/%q/%s", res.PatternID, res.PatternName, res.Source, tt.wantID, tt.wantName, tt.source)
			}
			if res.Content == nil {
				t.Fatal("resolution has no content")
			}
		})
	}
	if metrics.Count("resolutions", "override") != 2 {
		t.Errorf("expected 2 override resolutions, got %d", metrics.Count("resolutions", "override"))
	}
}

func TestResolveIgnoresCatalogDefaults(t *testing.T) {
	r, _ := newTestResolver(t, `{"defaults": {"banner": {"format": "html", "content": {"html": "default"}}}}`)
	res := r.Resolve(models.SurfaceBanner, nil, "")
	if res.Source != SourceBuiltin {
		t.Fatalf("expected builtin fallback, got %s", res.Source)
	}
	if res.PatternName != UnknownPatternName {
		t.Errorf("pattern name = %q, want %q", res.PatternName, UnknownPatternName)
	}
	if res.Content != BuiltinContent {
		t.Error("expected built-in content")
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	r := NewResolver(nil, nil, nil)
	res := r.Resolve(models.SurfaceAppOpen, intPtr(0), "com.example")
	if res.Source != SourceBuiltin || res.PatternID != BuiltinPatternID {
		t.Fatalf("unexpected resolution %+v", res)
	}
	want := []string{"explicit_miss", "override", "control", "builtin"}
	got := res.Trace.Stages()
	if len(got) != len(want) {
		t.Fatalf("trace stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trace stages = %v, want %v", got, want)
		}
	}
	if d := res.Trace.Steps[0].Details["pattern_count"]; d != "0" {
		t.Errorf("explicit_miss pattern_count = %q", d)
	}
}

func TestResolveProperties(t *testing.T) {
	r, _ := newTestResolver(t, resolverDoc)
	count := r.Catalog().PatternCount()
	control, _ := r.Catalog().Pattern(0)
	override, _ := r.Catalog().OverridePattern("com.example.mail")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genSurface := gen.OneConstOf(models.SurfaceBanner, models.SurfaceInterstitial, models.SurfaceAppOpen)

	properties.Property("valid explicit index returns that pattern for any surface", prop.ForAll(
		func(k int, surface models.SurfaceType) bool {
			p, _ := r.Catalog().Pattern(k)
			res := r.Resolve(surface, &k, "com.example.mail")
			return res.PatternID == p.ID && res.Content == p.Content
		},
		gen.IntRange(0, count-1), genSurface,
	))

	properties.Property("without an index the override or the control is returned", prop.ForAll(
		func(useOverride bool, surface models.SurfaceType) bool {
			pkg := "com.unregistered"
			want := control
			if useOverride {
				pkg = "com.example.mail"
				want = override
			}
			res := r.Resolve(surface, nil, pkg)
			return res.PatternID == want.ID && res.PatternName == want.Name
		},
		gen.Bool(), genSurface,
	))

	properties.Property("resolution is deterministic", prop.ForAll(
		func(k int, surface models.SurfaceType) bool {
			a := r.Resolve(surface, &k, "")
			b := r.Resolve(surface, &k, "")
			return a.PatternID == b.PatternID && a.Source == b.Source
		},
		gen.IntRange(-5, 10), genSurface,
	))

	properties.TestingRun(t)
}
