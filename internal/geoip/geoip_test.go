package geoip

import (
	"net"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackLookup(t *testing.T) {
	g, err := Init("testdata/ranges.json")
	require.NoError(t, err)
	defer func() { _ = g.Close() }()

	assert.Equal(t, Location{Country: "AU", Region: "NSW"}, g.Lookup(net.ParseIP("203.0.113.7")))
	assert.Equal(t, "DE", g.Country(net.ParseIP("198.51.100.20")))
	assert.Equal(t, "JP", g.Country(net.ParseIP("2001:db8::1")))
	assert.Equal(t, Location{}, g.Lookup(net.ParseIP("192.0.2.1")))
	assert.Equal(t, Location{}, g.Lookup(nil))
}

func TestInitMissingFile(t *testing.T) {
	_, err := Init("testdata/does-not-exist.mmdb")
	assert.Error(t, err)
}

func TestNilGeoIP(t *testing.T) {
	var g *GeoIP
	assert.Equal(t, "", g.Country(net.ParseIP("203.0.113.7")))
	assert.NoError(t, g.Close())
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "203.0.113.7:5555", "", "203.0.113.7"},
		{"forwarded single", "10.0.0.1:5555", "198.51.100.20", "198.51.100.20"},
		{"forwarded chain", "10.0.0.1:5555", "198.51.100.20, 10.0.0.2", "198.51.100.20"},
		{"unparseable", "nonsense", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/click", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			got := ClientIP(r)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got.String())
		})
	}
}
