package auth

import (
	"slices"

	perr "hubconnect/internal/platform/errors"
)

// Authorizer checks a Principal's audience against the request's external URL
type Authorizer struct {
	// SkipAudience disables the check for local development
	SkipAudience bool
}

// Authorize allows the call iff the audience list holds externalURL byte for byte
func (a Authorizer) Authorize(p Principal, externalURL string) error {
	if a.SkipAudience {
		return nil
	}
	if externalURL != "" && slices.Contains(p.Audience, externalURL) {
		return nil
	}
	return perr.Forbiddenf("token audience does not include %s", externalURL)
}
