package providers

import (
	"context"
	"net/netip"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/gmet/internal/weather"
)

// API Docs: https://ipinfo.io/developers
const DefaultGeoIPURL = "http://ipinfo.io"

// IPInfoProvider implements weather.Geolocator with ipinfo.io.
type IPInfoProvider struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPInfoProvider(httpCfg HTTPClientConfig, baseURL string) *IPInfoProvider {
	if baseURL == "" {
		baseURL = DefaultGeoIPURL
	}
	return &IPInfoProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpCfg: httpCfg,
		circuit: newCircuitBreaker("ipinfo"),
	}
}

// Locate geolocates ip. Loopback, private and unparsable addresses are not
// sent: the service then locates the public address of the caller.
func (p *IPInfoProvider) Locate(ctx context.Context, ip string) (weather.Geolocation, error) {
	u := p.baseURL + "/json"
	if isPublicAddr(ip) {
		u = p.baseURL + "/" + ip + "/json"
	}

	var geo weather.Geolocation
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &geo); err != nil {
		return weather.Geolocation{}, err
	}
	return geo, nil
}

func isPublicAddr(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast())
}
