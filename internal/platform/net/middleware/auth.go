package middleware

import (
	"encoding/json"
	"net/http"

	pnet "hubconnect/internal/platform/net"
)

// AuthPort authenticates and authorizes one inbound request
type AuthPort interface {
	// Parse returns a principal name and tenant id from the request or an error
	Parse(r *http.Request) (userID string, tenantID string, err error)
}

// ErrorWriter writes a failed authentication; nil falls back to the pnet error mapping
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Auth guards next with the port. A nil port passes through
func Auth(p AuthPort, write ErrorWriter) func(http.Handler) http.Handler {
	if write == nil {
		write = writeError
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			uid, tid, err := p.Parse(r)
			if err != nil {
				write(w, r, err)
				return
			}
			ctx := pnet.WithUser(r.Context(), uid)
			ctx = pnet.WithRequest(ctx, "", tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	status, body := pnet.Error(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
