package auth

import (
	"net/http"

	"hubconnect/internal/platform/logger"
)

// Guard runs the Resolver then the Authorizer for every protected request
// it satisfies the middleware AuthPort seam
type Guard struct {
	Resolver   Resolver
	Authorizer Authorizer
}

// Parse resolves and authorizes r and returns the principal name and tenant
func (g Guard) Parse(r *http.Request) (string, string, error) {
	p, err := g.Resolver.FromRequest(r)
	if err != nil {
		return "", "", err
	}
	ext := ExternalURL(r).String()
	if err := g.Authorizer.Authorize(p, ext); err != nil {
		logger.C(r.Context()).Info().
			Str("prn", p.Subject).
			Str("url", ext).
			Strs("aud", p.Audience).
			Msg("audience denied")
		return "", "", err
	}
	return p.Subject, p.Tenant, nil
}
