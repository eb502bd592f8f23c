package adsdk

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/lifecycle"
	"github.com/patrickwarner/adsdk/internal/logic"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
	"github.com/patrickwarner/adsdk/internal/tracking"
)

// Ad is one ad instance of a given surface type. Its ID is the surface's ad
// type followed by a random UUID, e.g. "banner_3f0c…".
type Ad struct {
	id      string
	surface SurfaceType
	sdk     *SDK // nil means the process-wide SDK
	style   AdStyle
	machine *lifecycle.Machine

	explicitIndex *int
	packageName   string
	deviceID      string
	resolution    *logic.Resolution

	loadListener     LoadListener
	clickListener    ClickListener
	trackingCallback TrackingCallback
	renderer         Renderer
	navigator        Navigator
}

// NewBanner creates a banner ad that uses the process-wide SDK.
func NewBanner() *Ad { return newAd(nil, Banner) }

// NewInterstitial creates an interstitial ad that uses the process-wide SDK.
func NewInterstitial() *Ad { return newAd(nil, Interstitial) }

// NewAppOpen creates an app-open ad that uses the process-wide SDK.
func NewAppOpen() *Ad { return newAd(nil, AppOpen) }

func newAd(sdk *SDK, surface SurfaceType) *Ad {
	a := &Ad{
		id:      surface.AdType() + "_" + uuid.NewString(),
		surface: surface,
		sdk:     sdk,
		style:   StyleAdMob,
	}
	a.machine = lifecycle.New(surface.Expires(), a.now)
	a.machine.OnTransition(func(_, to lifecycle.State) {
		a.metrics().IncrementLifecycleTransitions(string(a.surface), to.String())
	})
	return a
}

// handle returns the SDK this ad reports to, or nil if none is usable.
func (a *Ad) handle() *SDK {
	if a.sdk != nil {
		if a.sdk.isClosed() {
			return nil
		}
		return a.sdk
	}
	return Default()
}

func (a *Ad) now() time.Time {
	if s := a.handle(); s != nil {
		return s.now()
	}
	return time.Now()
}

func (a *Ad) logger() *zap.Logger {
	if s := a.handle(); s != nil {
		return s.logger.Named("ad").With(
			zap.String("ad_id", a.id),
			zap.String("ad_type", a.surface.AdType()),
		)
	}
	return zap.NewNop()
}

func (a *Ad) metrics() observability.MetricsRegistry {
	if s := a.handle(); s != nil {
		return s.metrics
	}
	return observability.NewNoOpRegistry()
}

// ID returns the ad's unique identifier.
func (a *Ad) ID() string { return a.id }

// Surface returns the ad's surface type.
func (a *Ad) Surface() SurfaceType { return a.surface }

// State returns the current lifecycle state.
func (a *Ad) State() State { return a.machine.State() }

// Style returns the telemetry style label, e.g. "BANNER/ADMOB".
func (a *Ad) Style() string { return models.StyleString(a.surface, a.style) }

// SetAttackPattern pins the pattern index used by the next load. An index
// outside the catalog falls back to the package override or the benign
// control.
func (a *Ad) SetAttackPattern(index int) { a.explicitIndex = &index }

// ClearAttackPattern removes a pinned pattern index.
func (a *Ad) ClearAttackPattern() { a.explicitIndex = nil }

// SetPackageName sets the package used for override lookup, replacing the
// SDK's configured package name for this ad.
func (a *Ad) SetPackageName(name string) { a.packageName = name }

// SetStyle sets the visual style reported in telemetry.
func (a *Ad) SetStyle(style AdStyle) { a.style = style }

// SetLoadListener registers load callbacks.
func (a *Ad) SetLoadListener(l LoadListener) { a.loadListener = l }

// SetClickListener registers the tap callback.
func (a *Ad) SetClickListener(l ClickListener) { a.clickListener = l }

// SetTrackingCallback registers the click delivery callback.
func (a *Ad) SetTrackingCallback(cb TrackingCallback) { a.trackingCallback = cb }

// SetRenderer sets the renderer that displays the ad on Show.
func (a *Ad) SetRenderer(r Renderer) { a.renderer = r }

// SetNavigator sets the navigator used to open destinations on tap.
func (a *Ad) SetNavigator(n Navigator) { a.navigator = n }

// Resolution returns the content chosen by the last load.
func (a *Ad) Resolution() (Resolution, bool) {
	if a.resolution == nil {
		return Resolution{}, false
	}
	return *a.resolution, true
}

// DeviceID returns the device ID passed to the last LoadAd.
func (a *Ad) DeviceID() string { return a.deviceID }

// LoadAd resolves content for the ad and moves it to Loaded. The outcome is
// reported through the load listener. Without an initialized SDK the ad
// stays Unloaded and OnFailedToLoad receives ErrNotInitialized.
func (a *Ad) LoadAd(deviceID string) {
	sdk := a.handle()
	if sdk == nil {
		a.failLoad(zap.NewNop(), ErrNotInitialized)
		return
	}
	logger := a.logger()

	if err := a.machine.BeginLoad(); err != nil {
		a.failLoad(logger, err)
		return
	}

	pkg := a.packageName
	if pkg == "" {
		pkg = sdk.cfg.PackageName
	}
	res := sdk.resolver.Resolve(a.surface, a.explicitIndex, pkg)
	a.resolution = &res
	a.deviceID = deviceID

	if err := a.machine.CompleteLoad(); err != nil {
		a.machine.FailLoad()
		a.failLoad(logger, err)
		return
	}

	logger.Info("AD_LOADED",
		zap.String("style", a.Style()),
		zap.String("pattern", res.PatternName),
		zap.String("pattern_id", res.PatternID),
		zap.String("source", string(res.Source)),
	)
	if a.loadListener.OnLoaded != nil {
		a.loadListener.OnLoaded(a.id)
	}
}

func (a *Ad) failLoad(logger *zap.Logger, err error) {
	logger.Warn("ad failed to load", zap.Error(err))
	if a.loadListener.OnFailedToLoad != nil {
		a.loadListener.OnFailedToLoad(a.id, err)
	}
}

// Show displays a loaded ad. It returns false, without changing state, when
// the ad is not loaded, already showing, dismissed, expired, destroyed, or
// the renderer fails.
func (a *Ad) Show() bool {
	logger := a.logger()
	if err := a.machine.CanShow(); err != nil {
		logger.Warn("cannot show ad", zap.String("state", a.machine.State().String()), zap.Error(err))
		return false
	}
	if a.renderer != nil {
		if err := a.renderer.Render(a.view()); err != nil {
			logger.Error("renderer failed", zap.Error(err))
			return false
		}
	}
	if err := a.machine.Show(); err != nil {
		return false
	}
	logger.Debug("ad shown", zap.String("style", a.Style()))
	return true
}

func (a *Ad) view() View {
	v := View{AdID: a.id, Surface: a.surface, Style: a.Style()}
	if a.resolution != nil {
		v.Content = a.resolution.Content
		v.PatternName = a.resolution.PatternName
	}
	return v
}

// Dismiss hides a showing ad. It is a no-op in any other state.
func (a *Ad) Dismiss() {
	if !a.machine.Dismiss() {
		return
	}
	if rm, ok := a.renderer.(Remover); ok {
		rm.Remove(a.id)
	}
	a.logger().Debug("ad dismissed")
}

// Click handles a tap on the ad. Taps are accepted only while the ad is
// Loaded or Showing; other taps are logged and ignored. An accepted tap posts
// a click event (unless the device ID is empty), notifies the click listener,
// opens the content destination and dismisses the ad.
func (a *Ad) Click() {
	logger := a.logger()
	adType := a.surface.AdType()
	if err := a.machine.CheckClick(); err != nil {
		logger.Warn("click ignored", zap.String("state", a.machine.State().String()), zap.Error(err))
		a.metrics().IncrementClicks(adType, "rejected")
		return
	}

	patternName := logic.UnknownPatternName
	var content ContentVariant
	if a.resolution != nil {
		patternName = a.resolution.PatternName
		content = a.resolution.Content
	}

	if a.deviceID == "" {
		logger.Error("click not tracked: device id is empty")
		a.metrics().IncrementClicks(adType, "no_device")
	} else if sdk := a.handle(); sdk != nil {
		event, err := tracking.NewClickEvent(a.id, adType, a.deviceID, patternName, a.Style(), a.now())
		if err != nil {
			logger.Error("click event not built", zap.Error(err))
		} else {
			sdk.dispatcher.Track(event, a.trackingCallback)
			a.metrics().IncrementClicks(adType, "dispatched")
		}
	}

	logger.Info("AD_CLICKED",
		zap.String("style", a.Style()),
		zap.String("pattern", patternName),
	)
	if a.clickListener != nil {
		a.clickListener(a.id, a.surface)
	}
	if url := models.Destination(content); url != "" && a.navigator != nil {
		if err := a.navigator.Open(url); err != nil {
			logger.Warn("failed to open destination", zap.String("url", url), zap.Error(err))
		}
	}
	a.Dismiss()
}

// IsLoaded reports whether the ad has unexpired content, including while shown.
func (a *Ad) IsLoaded() bool { return a.machine.IsLoaded() }

// IsShowing reports whether the ad is displayed.
func (a *Ad) IsShowing() bool { return a.machine.IsShowing() }

// IsExpired reports whether an app-open ad has outlived AppOpenTTL since its
// last load. It is always false for other surfaces and before loading.
func (a *Ad) IsExpired() bool { return a.machine.IsExpired() }

// Destroy dismisses the ad if it is showing, releases its listeners and moves
// it to Destroyed. Further calls are no-ops.
func (a *Ad) Destroy() {
	if a.machine.State() == lifecycle.Destroyed {
		return
	}
	logger := a.logger()
	if a.machine.Destroy() {
		if rm, ok := a.renderer.(Remover); ok {
			rm.Remove(a.id)
		}
	}
	a.loadListener = LoadListener{}
	a.clickListener = nil
	a.trackingCallback = nil
	a.renderer = nil
	a.navigator = nil
	logger.Debug("ad destroyed")
}
