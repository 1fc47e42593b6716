// Package i18n resolves localized card text from per-locale YAML catalogs
//
// Catalog files are flat key/value maps named <bcp47>.yaml, e.g. en.yaml or fr.yaml.
// Placeholders use {0}, {1}... positional syntax
package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/logger"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Key suffixes shared by every connector catalog
const (
	SuffixTitle          = ".title"
	SuffixDescription    = ".description"
	SuffixActionLabel    = ".action.label"
	SuffixActionComplete = ".action.completed.label"
	SuffixHeader         = ".header"
	SuffixBody           = ".body"
)

// UserInputLabel returns the key suffix for a user input field label
func UserInputLabel(field string) string { return ".user.input." + field + ".label" }

// known maps base languages to their CLDR rules
var known = map[string]func() locales.Translator{
	"en": en.New,
	"fr": fr.New,
	"de": de.New,
	"es": es.New,
	"ja": ja.New,
}

// Catalog is a read-only set of translators, safe for concurrent use once built
type Catalog struct {
	def       language.Tag
	tags      []language.Tag
	matcher   language.Matcher
	trans     map[string]ut.Translator
	fallbacks map[string]string
}

// Load reads every *.yaml file in dir of fsys and builds a catalog whose
// fallback locale is def. The default locale file must exist
func Load(fsys fs.FS, dir, def string) (*Catalog, error) {
	defTag, err := language.Parse(def)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "default locale %q", def)
	}

	files, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "list catalogs")
	}

	type entry struct {
		tag      language.Tag
		messages map[string]string
	}
	var entries []entry
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), ".yaml")
		tag, err := language.Parse(name)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "catalog file %s", f)
		}
		raw, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "read %s", f)
		}
		var msgs map[string]string
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "parse %s", f)
		}
		entries = append(entries, entry{tag: tag, messages: msgs})
	}
	if !slices.ContainsFunc(entries, func(e entry) bool { return e.tag == defTag }) {
		return nil, perr.MissingKeyf("no catalog for default locale %s", defTag)
	}

	// default first so the matcher falls back to it
	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.tag == defTag:
			return -1
		case b.tag == defTag:
			return 1
		default:
			return strings.Compare(a.tag.String(), b.tag.String())
		}
	})

	c := &Catalog{
		def:   defTag,
		trans: make(map[string]ut.Translator, len(entries)),
	}
	for _, e := range entries {
		tr, err := newTranslator(e.tag)
		if err != nil {
			return nil, err
		}
		for k, v := range e.messages {
			if err := tr.Add(k, v, true); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "catalog %s key %s", e.tag, k)
			}
		}
		c.tags = append(c.tags, e.tag)
		c.trans[e.tag.String()] = tr
	}
	c.matcher = language.NewMatcher(c.tags)

	logger.Named("i18n").Debug().
		Str("default", defTag.String()).
		Int("locales", len(c.tags)).
		Msg("catalog loaded")
	return c, nil
}

func newTranslator(tag language.Tag) (ut.Translator, error) {
	base, _ := tag.Base()
	mk, ok := known[base.String()]
	if !ok {
		return nil, perr.InvalidArgf("unsupported catalog locale %s", tag)
	}
	loc := mk()
	uni := ut.New(loc, loc)
	tr, _ := uni.GetTranslator(loc.Locale())
	return tr, nil
}

// Default returns the fallback locale
func (c *Catalog) Default() string { return c.def.String() }

// Locales returns every supported locale, default first
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Match picks the supported locale best matching an Accept-Language value
// ranges are weighed by q; anything unparsable or unmatched yields the default
func (c *Catalog) Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.Default()
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return c.Default()
	}
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return c.Default()
	}
	return c.tags[idx].String()
}

// Text resolves key for locale, falling back to the default locale
// a key absent from the default catalog is a configuration defect and returns
// a missing message key error
func (c *Catalog) Text(locale, key string, args ...any) (string, error) {
	if s, ok := c.Lookup(locale, key, args...); ok {
		return s, nil
	}
	logger.Named("i18n").Error().
		Str("key", key).
		Str("locale", locale).
		Str("default", c.def.String()).
		Msg("message key missing from default catalog")
	return "", perr.MissingKeyf("message key %q missing from %s catalog", key, c.def)
}

// Lookup is Text for optional keys: it reports absence instead of failing
func (c *Catalog) Lookup(locale, key string, args ...any) (string, bool) {
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = fmt.Sprint(a)
	}
	if tr := c.translator(locale); tr != nil {
		if s, err := tr.T(key, params...); err == nil {
			return s, true
		}
	}
	s, err := c.trans[c.def.String()].T(key, params...)
	if err != nil {
		return "", false
	}
	return s, true
}

// translator finds the exact tag, then its base language
func (c *Catalog) translator(locale string) ut.Translator {
	if locale == "" {
		return nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil
	}
	if tr, ok := c.trans[tag.String()]; ok {
		return tr
	}
	base, _ := tag.Base()
	return c.trans[base.String()]
}
