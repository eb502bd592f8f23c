// Package geoip resolves the origin of a click from its source address.
package geoip

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP provides country lookup using a MaxMind DB or a JSON fallback.
type GeoIP struct {
	db       *geoip2.Reader
	fallback []record
}

type record struct {
	net     *net.IPNet
	country string
	region  string
}

// Location is the result of a lookup. Empty fields mean unknown.
type Location struct {
	Country string
	Region  string
}

// Init opens the GeoIP2 database located at path. When the file is not a
// MaxMind database it is read as a JSON list of {"net","country","region"}
// ranges. The returned error is the MaxMind open error.
func Init(path string) (*GeoIP, error) {
	g := &GeoIP{}
	db, err := geoip2.Open(path)
	if err == nil {
		g.db = db
		return g, nil
	}

	data, jerr := os.ReadFile(path)
	if jerr != nil {
		return nil, err
	}
	var entries []struct {
		Net     string `json:"net"`
		Country string `json:"country"`
		Region  string `json:"region"`
	}
	if jerr = json.Unmarshal(data, &entries); jerr != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, n, perr := net.ParseCIDR(e.Net); perr == nil {
			g.fallback = append(g.fallback, record{net: n, country: e.Country, region: e.Region})
		}
	}
	return g, nil
}

// Lookup returns the country and region for ip. A nil GeoIP or an unknown
// address yields an empty Location.
func (g *GeoIP) Lookup(ip net.IP) Location {
	if g == nil || ip == nil {
		return Location{}
	}
	if g.db != nil {
		if rec, err := g.db.City(ip); err == nil {
			loc := Location{Country: rec.Country.IsoCode}
			if len(rec.Subdivisions) > 0 {
				loc.Region = rec.Subdivisions[0].IsoCode
			}
			return loc
		}
		if rec, err := g.db.Country(ip); err == nil {
			return Location{Country: rec.Country.IsoCode}
		}
	}
	for _, r := range g.fallback {
		if r.net.Contains(ip) {
			return Location{Country: r.country, Region: r.region}
		}
	}
	return Location{}
}

// Country returns the ISO country code for ip, or "" when unknown.
func (g *GeoIP) Country(ip net.IP) string {
	return g.Lookup(ip).Country
}

// ClientIP returns the originating address of r, preferring the first entry
// of X-Forwarded-For over RemoteAddr.
func ClientIP(r *http.Request) net.IP {
	ipStr := r.Header.Get("X-Forwarded-For")
	if ipStr == "" {
		ipStr = r.RemoteAddr
		if host, _, err := net.SplitHostPort(ipStr); err == nil {
			ipStr = host
		}
	} else if idx := strings.Index(ipStr, ","); idx != -1 {
		ipStr = ipStr[:idx]
	}
	return net.ParseIP(strings.TrimSpace(ipStr))
}

// Close releases resources associated with the database.
func (g *GeoIP) Close() error {
	if g != nil && g.db != nil {
		return g.db.Close()
	}
	return nil
}
