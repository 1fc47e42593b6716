package middleware

import (
	stdjson "encoding/json"
	stdhttp "net/http"
	"runtime/debug"

	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/logger"
	pnet "hubconnect/internal/platform/net"
)

// RecoverJSON converts panics into a JSON 500 and logs the stack with the request context
// the panic value is never echoed to the client
func RecoverJSON(next stdhttp.Handler) stdhttp.Handler {
	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == stdhttp.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())

			logger.C(r.Context()).Error().
				Err(perr.PanicErrf("panic recovered: %v", v)).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			// mirror id in response header
			if reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(stdhttp.StatusInternalServerError)
			_ = stdjson.NewEncoder(w).Encode(pnet.ErrorWire{
				Error: stdhttp.StatusText(stdhttp.StatusInternalServerError),
			})
		}()
		next.ServeHTTP(w, r)
	})
}
