// Command demo drives ad instances through their whole lifecycle against a
// click collector: load, show, tap, and wait for the delivery outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adsdk/internal/config"
	"github.com/patrickwarner/adsdk/internal/logic/render"
	"github.com/patrickwarner/adsdk/internal/models"
	"github.com/patrickwarner/adsdk/internal/observability"
	"github.com/patrickwarner/adsdk/pkg/adsdk"
)

var (
	endpoint    string
	configPath  string
	surfaceName string
	index       int
	packageName string
	deviceID    string
	count       int
	showHTML    bool
	timeout     time.Duration
)

func main() {
	sdkCfg := config.LoadSDK()

	flag.StringVar(&endpoint, "endpoint", sdkCfg.ClickTrackingEndpoint, "click collector URL (defaults to CLICK_TRACKING_ENDPOINT)")
	flag.StringVar(&configPath, "config", sdkCfg.PatternConfigPath, "attack pattern configuration file")
	flag.StringVar(&surfaceName, "surface", "banner", "surface type: banner, interstitial or appOpen")
	flag.IntVar(&index, "index", -1, "explicit attack pattern index (-1 for none)")
	flag.StringVar(&packageName, "package", sdkCfg.PackageName, "host package name for override lookup")
	flag.StringVar(&deviceID, "device", "demo-device", "device ID reported with clicks")
	flag.IntVar(&count, "count", 1, "number of ads to run")
	flag.BoolVar(&showHTML, "html", false, "print the HTML preview of each ad")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall time limit")
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(logger, sdkCfg); err != nil {
		logger.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, sdkCfg config.SDKConfig) error {
	surface, err := models.ParseSurface(surfaceName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sdkCfg.ClickTrackingEndpoint = endpoint
	sdkCfg.PatternConfigPath = configPath
	sdkCfg.PackageName = packageName

	sdk, err := adsdk.Initialize(ctx, sdkCfg,
		adsdk.WithLogger(logger),
		adsdk.WithPrometheusMetrics(),
	)
	if err != nil {
		return fmt.Errorf("initialize sdk: %w", err)
	}
	defer sdk.Shutdown()

	logger.Info("catalog loaded", zap.Int("patterns", sdk.AttackPatternCount()))

	outcomes := make(chan adsdk.Result, count)
	for i := 0; i < count; i++ {
		sdk.Do(func() { runAd(logger, sdk, surface, outcomes) })
	}

	failed := 0
	for i := 0; i < count; i++ {
		select {
		case res := <-outcomes:
			if !res.OK() {
				failed++
				logger.Warn("click delivery failed", zap.String("ad_id", res.Event.AdID), zap.Error(res.Err))
				continue
			}
			logger.Info("click delivered",
				zap.String("ad_id", res.Event.AdID),
				zap.Int("status", res.StatusCode),
				zap.Duration("duration", res.Duration))
		case <-ctx.Done():
			return fmt.Errorf("waiting for deliveries: %w", ctx.Err())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d click deliveries failed", failed, count)
	}
	return nil
}

// runAd executes one ad lifecycle. It runs on the SDK's foreground loop.
func runAd(logger *zap.Logger, sdk *adsdk.SDK, surface adsdk.SurfaceType, outcomes chan<- adsdk.Result) {
	ad := sdk.NewAd(surface)
	if index >= 0 {
		ad.SetAttackPattern(index)
	}
	ad.SetRenderer(adsdk.RendererFunc(func(v adsdk.View) error {
		fmt.Printf("%s  %-14s  %s\n", v.AdID, v.Style, v.PatternName)
		if showHTML {
			fmt.Println(render.ComposeContentHTML(v.Content))
		}
		return nil
	}))
	ad.SetNavigator(adsdk.NavigatorFunc(func(url string) error {
		logger.Info("would open destination", zap.String("ad_id", ad.ID()), zap.String("url", url))
		return nil
	}))
	ad.SetTrackingCallback(func(res adsdk.Result) { outcomes <- res })
	ad.SetLoadListener(adsdk.LoadListener{
		OnFailedToLoad: func(adID string, err error) {
			outcomes <- adsdk.Result{Event: adsdk.ClickEvent{AdID: adID}, Err: err}
		},
	})

	ad.LoadAd(deviceID)
	if !ad.IsLoaded() {
		return
	}
	if !ad.Show() {
		outcomes <- adsdk.Result{Event: adsdk.ClickEvent{AdID: ad.ID()}, Err: adsdk.ErrNotLoaded}
		return
	}
	ad.Click()
	ad.Destroy()
}
