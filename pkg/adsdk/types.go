package adsdk

import (
	"github.com/patrickwarner/adsdk/internal/config"
	"github.com/patrickwarner/adsdk/internal/lifecycle"
	"github.com/patrickwarner/adsdk/internal/logic"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/tracking"
)

// Content and pattern types.
type (
	ContentVariant = models.ContentVariant
	TextContent    = models.TextContent
	ImageContent   = models.ImageContent
	HTMLContent    = models.HTMLContent
	Storefront     = models.Storefront
	Format         = models.Format
	AttackPattern  = models.AttackPattern
	SurfaceType    = models.SurfaceType
	AdStyle        = models.AdStyle
)

// Lifecycle, resolution and tracking types.
type (
	State         = lifecycle.State
	Resolution    = logic.Resolution
	ClickEvent    = tracking.ClickEvent
	Result        = tracking.Result
	DeliveryError = tracking.DeliveryError
	Config        = config.SDKConfig
)

const (
	Banner       = models.SurfaceBanner
	Interstitial = models.SurfaceInterstitial
	AppOpen      = models.SurfaceAppOpen

	StyleAdMob = models.StyleAdMob

	FormatText  = models.FormatText
	FormatImage = models.FormatImage
	FormatHTML  = models.FormatHTML
)

const (
	StateUnloaded  = lifecycle.Unloaded
	StateLoading   = lifecycle.Loading
	StateLoaded    = lifecycle.Loaded
	StateShowing   = lifecycle.Showing
	StateDismissed = lifecycle.Dismissed
	StateExpired   = lifecycle.Expired
	StateDestroyed = lifecycle.Destroyed
)

// AppOpenTTL is how long a loaded app-open ad remains showable.
const AppOpenTTL = lifecycle.TTL

// DefaultConfig returns a Config with default timeouts for endpoint.
func DefaultConfig(endpoint string) Config {
	return config.DefaultSDKConfig(endpoint)
}

// Match calls the function matching the concrete kind of c.
func Match[T any](c ContentVariant, text func(TextContent) T, image func(ImageContent) T, html func(HTMLContent) T) T {
	return models.Match(c, text, image, html)
}

// LoadListener receives load outcomes. Either field may be nil.
type LoadListener struct {
	OnLoaded       func(adID string)
	OnFailedToLoad func(adID string, err error)
}

// ClickListener is notified of every accepted tap.
type ClickListener func(adID string, surface SurfaceType)

// TrackingCallback receives the delivery outcome of a tap's click event. It
// runs on the SDK's foreground executor.
type TrackingCallback = tracking.Callback

// View is what a Renderer receives when an ad is shown.
type View struct {
	AdID        string
	Surface     SurfaceType
	Style       string // e.g. "BANNER/ADMOB"
	PatternName string
	Content     ContentVariant
}

// Renderer displays shown ads. Implementations report taps by calling Ad.Click.
type Renderer interface {
	Render(v View) error
}

// Remover is an optional Renderer extension called when a shown ad is
// dismissed or destroyed.
type Remover interface {
	Remove(adID string)
}

// Navigator opens the destination URL of a tapped ad.
type Navigator interface {
	Open(url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string) error

func (f NavigatorFunc) Open(url string) error { return f(url) }

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v View) error

func (f RendererFunc) Render(v View) error { return f(v) }
