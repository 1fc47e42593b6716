package card

import (
	"time"

	"hubconnect/internal/core/fingerprint"
	"hubconnect/internal/platform/logger"
)

// TextSource resolves localized strings; *i18n.Catalog satisfies it
type TextSource interface {
	Text(locale, key string, args ...any) (string, error)
}

// Assembler creates builders scoped to one connector type
type Assembler struct {
	// Connector scopes every id this assembler mints
	Connector string
	Text      TextSource
	// Log receives truncation warnings; nil uses the card component logger
	Log *logger.Logger
	// Now stamps cards without an explicit creation date; nil uses time.Now
	Now func() time.Time
}

// Card starts a card for the entity identified by fields, localized for locale
// the same connector and fields always yield the same card id
func (a *Assembler) Card(locale string, fields ...string) *Builder {
	b := &Builder{a: a, locale: locale}
	if len(fields) == 0 {
		b.fail(illegal("card identity needs at least one entity field"))
		return b
	}
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, a.Connector)
	parts = append(parts, fields...)
	b.digest = fingerprint.Strings(parts)
	return b
}

func (a *Assembler) log() *logger.Logger {
	if a.Log != nil {
		return a.Log
	}
	return logger.Named("card")
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}
