package connkit

import (
	"net/http"

	"hubconnect/internal/modkit/httpkit"
	pnet "hubconnect/internal/platform/net"
)

// Mount registers the connector contract on r
//
//	GET  /                discovery, unauthenticated
//	POST /cards/requests  cards for the caller
//	...                   connector actions, all protected
func (k *Kit) Mount(r httpkit.Router, c Connector) {
	r.Get("/", k.Discovery(c.Discovery()))
	r.Group(func(pr httpkit.Router) {
		pr.Use(tag(c.Name()), k.negotiate)
		pr.Use(httpkit.Auth(k.Guard, k.ErrorWriter()))
		pr.Post("/cards/requests", k.Cards(c))
		c.MountActions(k, pr)
	})
}

// tag records the connector name on the request's diagnostic context
func tag(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(pnet.WithConnector(r.Context(), name)))
		})
	}
}
