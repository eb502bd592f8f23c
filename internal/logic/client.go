package logic

import (
	"fmt"
	"net/http"

	"github.com/avct/uasurfer"

	"github.com/patrickwarner/adsdk/internal/geoip"
)

// ClientContext describes the client that posted a click.
type ClientContext struct {
	DeviceType string
	OS         string
	Browser    string
	IsBot      bool
	Country    string
	Region     string
}

// ClassifyUserAgent parses a raw User-Agent string using the uasurfer
// library.
func ClassifyUserAgent(uaString string) ClientContext {
	u := uasurfer.Parse(uaString)

	var deviceType string
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		deviceType = "desktop"
	case uasurfer.DevicePhone:
		deviceType = "mobile"
	case uasurfer.DeviceTablet:
		deviceType = "tablet"
	default:
		deviceType = "other"
	}

	v := u.OS.Version
	osName := fmt.Sprintf("%s %s %d.%d.%d", u.OS.Platform.String(), u.OS.Name.String(), v.Major, v.Minor, v.Patch)

	bv := u.Browser.Version
	browser := fmt.Sprintf("%s %d.%d.%d", u.Browser.Name.String(), bv.Major, bv.Minor, bv.Patch)

	return ClientContext{
		DeviceType: deviceType,
		OS:         osName,
		Browser:    browser,
		IsBot:      u.IsBot(),
	}
}

// ClassifyRequest derives the client context of r from its User-Agent and
// source address. g may be nil, leaving the location empty.
func ClassifyRequest(r *http.Request, g *geoip.GeoIP) ClientContext {
	ctx := ClassifyUserAgent(r.Header.Get("User-Agent"))
	loc := g.Lookup(geoip.ClientIP(r))
	ctx.Country = loc.Country
	ctx.Region = loc.Region
	return ctx
}
