package logic

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adsdk/internal/geoip"
)

func TestClassifyUserAgent(t *testing.T) {
	tests := []struct {
		name            string
		ua              string
		expectedDevice  string
		expectedOS      string // Can use strings.Contains for version
		expectedBrowser string // Can use strings.Contains for version
		expectedIsBot   bool
	}{
		{
			name:            "Windows Chrome",
			ua:              "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Safari/537.36",
			expectedDevice:  "desktop",
			expectedOS:      "Windows 10", // uasurfer might give "Windows 10" or just "Windows"
			expectedBrowser: "Chrome",     // uasurfer might give "Chrome 100"
			expectedIsBot:   false,
		},
		{
			name:            "Mac Safari",
			ua:              "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
			expectedDevice:  "desktop",
			expectedOS:      "OSX", // uasurfer outputs OSMacOSX
			expectedBrowser: "Safari",
			expectedIsBot:   false,
		},
		{
			name:            "iPhone Safari",
			ua:              "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/605.1.15",
			expectedDevice:  "mobile",
			expectedOS:      "iOS", // uasurfer might give "iOS 15.0"
			expectedBrowser: "Safari",
			expectedIsBot:   false,
		},
		{
			name:            "Android Chrome",
			ua:              "Mozilla/5.0 (Linux; Android 11; SM-G975F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.58 Mobile Safari/537.36",
			expectedDevice:  "mobile",
			expectedOS:      "Android", // uasurfer might give "Android 11"
			expectedBrowser: "Chrome",
			expectedIsBot:   false,
		},
		{
			name:            "iPad Safari",
			ua:              "Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/605.1.15",
			expectedDevice:  "tablet",
			expectedOS:      "iOS", // uasurfer might give "iPadOS 15.0" or "iOS 15.0"
			expectedBrowser: "Safari",
			expectedIsBot:   false,
		},
		{
			name:            "Googlebot",
			ua:              "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			expectedDevice:  "desktop",   // uasurfer identifies Googlebot as DeviceDesktop
			expectedOS:      "Bot",       // uasurfer OSBot
			expectedBrowser: "GoogleBot", // uasurfer BrowserGoogleBot
			expectedIsBot:   true,
		},
		{
			name:            "Empty UA",
			ua:              "",
			expectedDevice:  "other", // Default from uasurfer
			expectedOS:      "Unknown",
			expectedBrowser: "Unknown",
			expectedIsBot:   false,
		},
		{
			name:            "Bogus UA",
			ua:              "completely-bogus-ua-string-12345",
			expectedDevice:  "other", // Default from uasurfer
			expectedOS:      "Unknown",
			expectedBrowser: "Unknown",
			expectedIsBot:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := ClassifyUserAgent(tc.ua)

			if ctx.DeviceType != tc.expectedDevice {
				t.Errorf("DeviceType: expected '%s', got '%s'", tc.expectedDevice, ctx.DeviceType)
			}
			// For OS and Browser, uasurfer can be very specific with versions.
			// We'll check if the expected name is contained in the result.
			if !strings.Contains(ctx.OS, tc.expectedOS) {
				t.Errorf("OS: expected to contain '%s', got '%s'", tc.expectedOS, ctx.OS)
			}
			if !strings.Contains(ctx.Browser, tc.expectedBrowser) {
				t.Errorf("Browser: expected to contain '%s', got '%s'", tc.expectedBrowser, ctx.Browser)
			}
			if ctx.IsBot != tc.expectedIsBot {
				t.Errorf("IsBot: expected %t, got %t", tc.expectedIsBot, ctx.IsBot)
			}
		})
	}
}

func TestClassifyRequest(t *testing.T) {
	g, err := geoip.Init("../geoip/testdata/ranges.json")
	if err != nil {
		t.Fatalf("init geoip: %v", err)
	}

	r := httptest.NewRequest("POST", "/click", nil)
	r.RemoteAddr = "203.0.113.9:4000"
	r.Header.Set("User-Agent", "Mozilla/5.0 (Linux; Android 11; SM-G975F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.58 Mobile Safari/537.36")

	ctx := ClassifyRequest(r, g)
	assert.Equal(t, "mobile", ctx.DeviceType)
	assert.Equal(t, "AU", ctx.Country)
	assert.Equal(t, "NSW", ctx.Region)

	// Without a GeoIP database the location stays empty.
	ctx = ClassifyRequest(r, nil)
	assert.Equal(t, "mobile", ctx.DeviceType)
	assert.Empty(t, ctx.Country)
}
