package connkit

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"hubconnect/internal/core/auth"
	"hubconnect/internal/core/card"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/modkit/httpkit"
	pnet "hubconnect/internal/platform/net"
	"hubconnect/internal/platform/net/http/bind"
)

// Discovery serves tmpl with HostPlaceholder replaced by the external base url
func (k *Kit) Discovery(tmpl []byte) httpkit.Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		host := strings.TrimRight(auth.BaseURL(r).String(), "/")
		body := bytes.ReplaceAll(tmpl, []byte(HostPlaceholder), []byte(host))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// Cards serves POST /cards/requests for c
func (k *Kit) Cards(c Connector) httpkit.Handler {
	return httpkit.Handle(k.ErrorWriter(), func(r *http.Request) httpkit.Response {
		in, err := bind.ParseJSON[CardRequest](r)
		if err != nil {
			return httpkit.Error(err)
		}
		call, err := k.Call(r)
		if err != nil {
			return httpkit.Error(err)
		}
		out, err := c.Cards(r.Context(), call, in).Await(r.Context())
		if err != nil {
			return httpkit.Error(err)
		}
		if out.Cards == nil {
			out.Cards = []card.Card{}
		}
		return httpkit.OK(out)
	})
}

// Action adapts a form-bound action to an http handler
// T is decoded from the url-encoded body with `form` tags and validated,
// the result is written as JSON
func Action[T, R any](k *Kit, fn func(ctx context.Context, c Call, r *http.Request, in T) *dispatch.Future[R]) httpkit.Handler {
	return httpkit.Handle(k.ErrorWriter(), func(r *http.Request) httpkit.Response {
		call, err := k.Call(r)
		if err != nil {
			return httpkit.Error(err)
		}
		in, err := bind.ParseForm[T](r)
		if err != nil {
			return httpkit.Error(err)
		}
		out, err := fn(r.Context(), call, r, in).Await(r.Context())
		if err != nil {
			return httpkit.Error(err)
		}
		return httpkit.OK(out)
	})
}

// negotiate stores the catalog's best locale for Accept-Language on the request
func (k *Kit) negotiate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if k.Catalog == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := pnet.WithLocale(r.Context(), k.Catalog.Match(r.Header.Get("Accept-Language")))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
