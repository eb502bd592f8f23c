package models

import "fmt"

// AttackPattern is a named content variant from the pattern catalog.
// Index 0 of the catalog is the benign control.
type AttackPattern struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"` // recorded in click telemetry
	Content ContentVariant `json:"-"`
}

// Format returns the format of the pattern's content.
func (p AttackPattern) Format() Format {
	if p.Content == nil {
		return ""
	}
	return p.Content.Format()
}

// SurfaceType identifies one of the three kinds of ad instance.
type SurfaceType string

const (
	SurfaceBanner       SurfaceType = "banner"
	SurfaceInterstitial SurfaceType = "interstitial"
	SurfaceAppOpen      SurfaceType = "appOpen"
)

// Surfaces lists every surface type in a stable order.
var Surfaces = []SurfaceType{SurfaceBanner, SurfaceInterstitial, SurfaceAppOpen}

// ParseSurface accepts either the configuration key ("appOpen") or the wire
// value ("appopen") of a surface type.
func ParseSurface(s string) (SurfaceType, error) {
	switch s {
	case "banner":
		return SurfaceBanner, nil
	case "interstitial":
		return SurfaceInterstitial, nil
	case "appOpen", "appopen", "app_open":
		return SurfaceAppOpen, nil
	}
	return "", fmt.Errorf("unknown surface type %q", s)
}

// AdType returns the value sent as ad_type in click events and used as the
// ad ID prefix.
func (s SurfaceType) AdType() string {
	if s == SurfaceAppOpen {
		return "appopen"
	}
	return string(s)
}

// StyleLabel returns the upper-case surface name used in style labels.
func (s SurfaceType) StyleLabel() string {
	switch s {
	case SurfaceBanner:
		return "BANNER"
	case SurfaceInterstitial:
		return "INTERSTITIAL"
	case SurfaceAppOpen:
		return "APP_OPEN"
	}
	return "UNKNOWN"
}

// Expires reports whether instances of this surface type are subject to the
// load TTL.
func (s SurfaceType) Expires() bool { return s == SurfaceAppOpen }

// AdStyle is the visual treatment applied when a surface is shown.
type AdStyle string

// StyleAdMob is the only supported style.
const StyleAdMob AdStyle = "ADMOB"

// StyleString formats the telemetry style label, e.g. "APP_OPEN/ADMOB".
func StyleString(s SurfaceType, style AdStyle) string {
	if style == "" {
		style = StyleAdMob
	}
	return s.StyleLabel() + "/" + string(style)
}
