package apiclient

import (
	"net/http"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfeidau/roomzy/internal/logger"
)

// newTransport assembles the round tripper chain used for API calls:
// tracing -> request logging -> optional private cache -> base transport.
func newTransport(cfg Config, log zerolog.Logger) http.RoundTripper {
	var rt http.RoundTripper = http.DefaultTransport
	if cfg.Transport != nil {
		rt = cfg.Transport
	}

	if cfg.EnableCache {
		rt = newCachingTransport(cfg.CacheDir, rt)
	}

	rt = logger.NewHTTPRequests(log, rt)

	if cfg.Tracing {
		rt = otelhttp.NewTransport(rt)
	}

	return rt
}

// newCachingTransport wraps next with an HTTP cache honouring Cache-Control.
// Responses are cached on disk when cacheDir is set so they persist across
// restarts, otherwise in memory. Entries are bound to the bearer token that
// fetched them, so a response is never replayed to another session.
func newCachingTransport(cacheDir string, next http.RoundTripper) http.RoundTripper {
	var cache httpcache.Cache
	if cacheDir == "" {
		cache = httpcache.NewMemoryCache()
	} else {
		cache = diskcache.New(cacheDir)
	}

	t := httpcache.NewTransport(cache)
	t.Transport = varyOnAuthorization{next: next}
	return t
}

// varyOnAuthorization adds Authorization to the Vary header of every response.
// httpcache records the varied request headers with the entry and only serves
// it back to a request carrying the same values.
type varyOnAuthorization struct {
	next http.RoundTripper
}

func (v varyOnAuthorization) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := v.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !varies(resp.Header, "Authorization") {
		resp.Header.Add("Vary", "Authorization")
	}
	return resp, nil
}

func varies(h http.Header, name string) bool {
	for _, line := range h.Values("Vary") {
		for _, field := range strings.Split(line, ",") {
			if strings.EqualFold(strings.TrimSpace(field), name) {
				return true
			}
		}
	}
	return false
}
