// Package connkit is the HTTP contract every connector exposes to the Hub
//
// it owns discovery, the card request endpoint and the plumbing for action
// endpoints: bearer resolution, audience checks, vendor credential headers,
// locale negotiation and error translation. Connectors only supply behaviour
package connkit

import (
	"context"
	"net/http"
	"strings"

	"hubconnect/internal/core/auth"
	"hubconnect/internal/core/card"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/core/errtrans"
	"hubconnect/internal/core/i18n"
	"hubconnect/internal/modkit/httpkit"
	perr "hubconnect/internal/platform/errors"
	pnet "hubconnect/internal/platform/net"
)

// Inbound headers set by the Hub
const (
	HeaderConnectorAuth    = "X-Connector-Authorization"
	HeaderConnectorBaseURL = "X-Connector-Base-Url"
	HeaderRoutingPrefix    = "X-Routing-Prefix"
)

// HostPlaceholder is replaced in discovery templates with the external base url
const HostPlaceholder = "${CONNECTOR_HOST}"

// CardRequest is the body of POST /cards/requests
type CardRequest struct {
	Tokens map[string][]string `json:"tokens" validate:"required,has_value"`
}

// Values returns the trimmed non-empty values of token name
func (c CardRequest) Values(name string) []string {
	var out []string
	for _, v := range c.Tokens[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Creds are the vendor credentials forwarded by the Hub
type Creds struct {
	BaseURL string
	Token   string
}

// Call is everything a connector needs to know about one inbound request
type Call struct {
	Principal auth.Principal
	Locale    string
	Creds     Creds
	// ActionBase prefixes action urls placed on cards
	ActionBase string
}

// ActionURL joins path onto the call's action base
func (c Call) ActionURL(path string) string {
	return strings.TrimRight(c.ActionBase, "/") + "/" + strings.TrimLeft(path, "/")
}

// Connector is implemented by each connector service
type Connector interface {
	// Name labels the connector in the diagnostic context
	Name() string
	// Discovery is the metadata template served at GET /
	Discovery() []byte
	// Cards produces the cards for one card request
	Cards(ctx context.Context, c Call, req CardRequest) *dispatch.Future[card.Response]
	// MountActions registers the connector's action endpoints on a protected router
	MountActions(k *Kit, r httpkit.Router)
}

// Kit carries the shared request plumbing
type Kit struct {
	Guard   auth.Guard
	Catalog *i18n.Catalog
	Errors  errtrans.Translator
	// DefaultBaseURL is used when the Hub does not send X-Connector-Base-Url
	DefaultBaseURL string
}

// ErrorWriter routes failures through the error translator
func (k *Kit) ErrorWriter() httpkit.ErrorWriter { return k.Errors.Write }

// Call builds the per-request view
// the vendor token is required; its absence is a validation failure on that header
func (k *Kit) Call(r *http.Request) (Call, error) {
	p, err := k.Guard.Resolver.FromRequest(r)
	if err != nil {
		return Call{}, err
	}
	tok := strings.TrimSpace(r.Header.Get(HeaderConnectorAuth))
	if tok == "" {
		return Call{}, perr.Validation(map[string]string{
			HeaderConnectorAuth: HeaderConnectorAuth + " is required",
		})
	}
	base := strings.TrimSpace(r.Header.Get(HeaderConnectorBaseURL))
	if base == "" {
		base = k.DefaultBaseURL
	}

	locale := pnet.Locale(r.Context())
	if locale == "" && k.Catalog != nil {
		locale = k.Catalog.Match(r.Header.Get("Accept-Language"))
	}

	return Call{
		Principal:  p,
		Locale:     locale,
		Creds:      Creds{BaseURL: base, Token: tok},
		ActionBase: actionBase(r),
	}, nil
}

// actionBase prefers the Hub's routing prefix over the reconstructed base url
func actionBase(r *http.Request) string {
	if p := strings.TrimSpace(r.Header.Get(HeaderRoutingPrefix)); p != "" {
		return strings.TrimRight(p, "/")
	}
	return strings.TrimRight(auth.BaseURL(r).String(), "/")
}
