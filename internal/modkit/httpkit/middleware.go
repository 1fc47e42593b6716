package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"hubconnect/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	// Locales negotiates Accept-Language; nil leaves the locale unset
	Locales middleware.LocaleMatcher
	CORS    middleware.CORSOptions
	Timeout time.Duration
}

// CommonStack returns the baseline middleware slice every connector runs
// compose with auth in the connector's own group
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	return []func(http.Handler) http.Handler{
		// correlation and diagnostics
		middleware.RealIP(),
		middleware.Diagnostics(o.Locales),

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLog,

		// cross-origin for Hub browser clients
		middleware.CORS(o.CORS),
		middleware.NoCache(),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
}

// Auth wires the auth middleware to an error writer
func Auth(p middleware.AuthPort, ew ErrorWriter) func(http.Handler) http.Handler {
	return middleware.Auth(p, middleware.ErrorWriter(ew))
}
