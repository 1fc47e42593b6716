package middleware

import (
	"net/http"

	"hubconnect/internal/platform/diag"
	pnet "hubconnect/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in and out
const RequestIDHeader = "X-Request-ID"

// LocaleMatcher picks the best supported locale tag for an Accept-Language value
type LocaleMatcher interface {
	Match(acceptLanguage string) string
}

// Diagnostics opens the request's diagnostic context
// it assigns or propagates X-Request-ID, negotiates the locale when m is set,
// and clears the bag once the handler chain returns
func Diagnostics(m LocaleMatcher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = chimw.GetReqID(r.Context())
			}
			if reqID == "" {
				reqID = uuid.NewString()
			}

			bag := diag.NewBag()
			ctx := diag.WithBag(r.Context(), bag)
			ctx = pnet.WithRequest(ctx, reqID, "")
			if m != nil {
				ctx = pnet.WithLocale(ctx, m.Match(r.Header.Get("Accept-Language")))
			}
			defer bag.Clear()

			w.Header().Set(RequestIDHeader, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
