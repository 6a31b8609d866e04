package web

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/debemdeboas/the-notes/internal/cache"
	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/routes"
)

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, "no-cache")
		w.Header().Set("Vary", "Cookie")

		// Static files get an etag, which the file server checks against If-None-Match
		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, "public, max-age=3600")
			w.Header().Set(config.HETag, `"`+hash+`"`)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "same-origin")

		h(w, r)
	}
}

// accessLog attaches a request-scoped logger and logs every request once it
// completes.
func accessLog(h http.HandlerFunc) http.Handler {
	var next http.Handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		level := zerolog.InfoLevel
		if r.URL.Path == routes.HealthPath {
			level = zerolog.DebugLevel
		} else if status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}

		hlog.FromRequest(r).WithLevel(level).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request")
	})(h)

	next = hlog.UserAgentHandler("user_agent")(next)
	next = hlog.RemoteAddrHandler("ip")(next)
	next = hlog.RequestIDHandler("req_id", "X-Request-Id")(next)
	return hlog.NewHandler(webLogger)(next)
}
