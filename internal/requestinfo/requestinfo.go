// internal/requestinfo/requestinfo.go
//
// Per-request visitor metadata for the public tracking endpoint.
//
/*
Context
--------
The Enrich middleware sits in front of POST /api/track only.  For every
request it:

  1. Takes the client IP from `r.RemoteAddr`.  With `http.trust_proxy`
     set, the left-most X-Forwarded-For entry or X-Real-IP wins instead.
  2. Parses the User-Agent header (internal/ua).
  3. Performs a best-effort GeoLite2 country lookup.
  4. Stores an *Info value in the request context under an unexported
     key so the handler can read it without reparsing.

Notes
-----
  • The GeoLite2 reader is optional.  An empty `analytics.geoip_path`
    leaves Country blank on every visit.
  • geoip2.Reader is safe for concurrent reads, which is all we perform.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/ua"
)

/*──────────────────────────── types ────────────────────────────────────────*/

// Info is the inert metadata attached to a tracked request.
type Info struct {
	IP        net.IP
	Country   string // ISO code, "" when unknown
	UA        ua.Info
	Referrer  string
	Timestamp time.Time
}

// CountryLookup resolves an IP to an ISO country code.
type CountryLookup interface {
	Country(ip net.IP) string
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the value stored by Enrich, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// WithInfo stores info in ctx.  Enrich uses it; tests may too.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

/*──────────────────────────── GeoLite2 ─────────────────────────────────────*/

// GeoIP wraps a MaxMind reader.  A nil *GeoIP answers "" for every IP.
type GeoIP struct {
	reader *geoip2.Reader
}

// OpenGeoIP opens the database at path.  An empty path returns a nil
// *GeoIP and no error.
func OpenGeoIP(path string) (*GeoIP, error) {
	if path == "" {
		return nil, nil
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db %s: %w", path, err)
	}
	return &GeoIP{reader: r}, nil
}

// Country implements CountryLookup.
func (g *GeoIP) Country(ip net.IP) string {
	if g == nil || g.reader == nil || ip == nil {
		return ""
	}
	rec, err := g.reader.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

// Close releases the reader.
func (g *GeoIP) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich returns middleware that attaches *Info.  geo may be nil.
// Forwarding headers are read only when trustProxy is true.
func Enrich(geo CountryLookup, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			info := &Info{
				IP:        ip,
				UA:        ua.Parse(r.UserAgent()),
				Referrer:  r.Referer(),
				Timestamp: time.Now().UTC(),
			}
			if geo != nil {
				info.Country = geo.Country(ip)
			}

			zap.S().Debugw("request info",
				"ip", ip,
				"country", info.Country,
				"browser", info.UA.Browser,
				"device", info.UA.Device,
				"bot", info.UA.IsBot,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
		})
	}
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP returns the peer address from r.RemoteAddr ("ip:port").  When
// trustProxy is set, the left-most X-Forwarded-For address or X-Real-IP
// takes precedence.
func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := forwardedIP(r); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}

func forwardedIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	return nil
}
