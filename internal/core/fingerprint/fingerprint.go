// Package fingerprint derives deterministic identities from backend entity fields
//
// Inputs are encoded as RFC 8785 canonical JSON before hashing, so element
// boundaries, nil versus empty, and map key order are all unambiguous.
// Strings that are not valid UTF-8 are hashed by their raw bytes
package fingerprint

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"unicode/utf8"

	perr "hubconnect/internal/platform/errors"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
	"golang.org/x/text/unicode/norm"
)

// Size is the digest length in hex characters
const Size = sha256.Size * 2

// Namespace scopes name based UUIDs minted from digests
var Namespace = uuid.MustParse("6f0d3c2e-8a51-4c1f-9b7e-2d4a0e5b9c13")

// Strings hashes an ordered sequence of strings
// nil and an empty slice hash differently
func Strings(in []string) string {
	var v any
	if in != nil {
		out := make([]any, len(in))
		for i, s := range in {
			out[i] = element(s)
		}
		v = out
	}
	return digest(v)
}

// Keyed hashes a string mapping; key order is irrelevant but which key holds
// which value is not
func Keyed(in map[string]string) string {
	var v any
	if in != nil {
		out := make(map[string]any, len(in))
		for k, s := range in {
			out[key(k)] = element(s)
		}
		v = out
	}
	return digest(v)
}

// rawBytes carries a string that is not valid UTF-8; JSON would fold its
// bad bytes into U+FFFD, so they go in as base64 under an object instead
type rawBytes struct {
	B64 string `json:"b64"`
}

func element(s string) any {
	if utf8.ValidString(s) {
		return norm.NFC.String(s)
	}
	return rawBytes{B64: base64.StdEncoding.EncodeToString([]byte(s))}
}

// key tags map keys so a base64 key never meets a text key
func key(k string) string {
	if utf8.ValidString(k) {
		return "s:" + norm.NFC.String(k)
	}
	return "b:" + base64.StdEncoding.EncodeToString([]byte(k))
}

// UUID mints a name based UUID from a digest
func UUID(digest string) uuid.UUID {
	return uuid.NewSHA1(Namespace, []byte(digest))
}

// ID is a convenience for UUID(Strings(parts)).String()
func ID(parts ...string) string {
	if parts == nil {
		parts = []string{}
	}
	return UUID(Strings(parts)).String()
}

func digest(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		// strings and string maps always marshal
		panic(perr.Wrap(err, perr.ErrorCodeIllegalArgument, "fingerprint: marshal"))
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		panic(perr.Wrap(err, perr.ErrorCodeIllegalArgument, "fingerprint: canonicalize"))
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}
