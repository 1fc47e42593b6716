package card

import (
	"fmt"
	"time"

	"hubconnect/internal/core/fingerprint"
	perr "hubconnect/internal/platform/errors"
)

// Builder accumulates one Card. The first failure is sticky: later calls are
// no-ops and Build returns it. Build consumes the builder
type Builder struct {
	a        *Assembler
	locale   string
	digest   string
	err      error
	consumed bool
	card     Card
}

func illegal(format string, args ...any) error { return perr.IllegalArgf(format, args...) }

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) usable() bool {
	if b.consumed {
		b.fail(illegal("card builder reused after Build"))
		return false
	}
	return b.err == nil
}

func (b *Builder) text(key string, args ...any) string {
	if b.a.Text == nil {
		b.fail(illegal("assembler has no text source for key %q", key))
		return ""
	}
	s, err := b.a.Text.Text(b.locale, key, args...)
	if err != nil {
		b.fail(err)
	}
	return s
}

// optional resolves key when the catalog has it, "" otherwise
func (b *Builder) optional(key string) string {
	if l, ok := b.a.Text.(interface {
		Lookup(locale, key string, args ...any) (string, bool)
	}); ok {
		s, _ := l.Lookup(b.locale, key)
		return s
	}
	s, err := b.a.Text.Text(b.locale, key)
	if err != nil {
		return ""
	}
	return s
}

// Locale returns the locale the card is rendered for
func (b *Builder) Locale() string { return b.locale }

// Err returns the first failure so far
func (b *Builder) Err() error { return b.err }

// Name sets the card's group name
func (b *Builder) Name(name string) *Builder {
	if b.usable() {
		b.card.Name = name
	}
	return b
}

// NameKey sets the group name from the catalog
func (b *Builder) NameKey(key string, args ...any) *Builder {
	if b.usable() {
		b.card.Name = b.text(key, args...)
	}
	return b
}

// Header sets the title and optional subtitles
func (b *Builder) Header(title string, subtitle ...string) *Builder {
	if b.usable() {
		b.card.Header = Header{Title: title, Subtitle: subtitle}
	}
	return b
}

// HeaderKey sets the title from the catalog
func (b *Builder) HeaderKey(key string, args ...any) *Builder {
	if b.usable() {
		b.card.Header.Title = b.text(key, args...)
	}
	return b
}

// Subtitle appends a subtitle line
func (b *Builder) Subtitle(s string) *Builder {
	if b.usable() {
		b.card.Header.Subtitle = append(b.card.Header.Subtitle, s)
	}
	return b
}

// Description sets the body text
func (b *Builder) Description(s string) *Builder {
	if b.usable() {
		b.card.Body.Description = s
	}
	return b
}

// DescriptionKey sets the body text from the catalog
func (b *Builder) DescriptionKey(key string, args ...any) *Builder {
	if b.usable() {
		b.card.Body.Description = b.text(key, args...)
	}
	return b
}

// Block appends a table; rows with an empty value are dropped
func (b *Builder) Block(title string, rows ...Row) *Builder {
	if !b.usable() {
		return b
	}
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Value != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) > 0 {
		b.card.Body.Blocks = append(b.card.Body.Blocks, Block{Title: title, Rows: kept})
	}
	return b
}

// Text resolves key for the card's locale; a missing key fails the builder
func (b *Builder) Text(key string, args ...any) string {
	if !b.usable() {
		return ""
	}
	return b.text(key, args...)
}

// RowKey builds a Row whose key label comes from the catalog
func (b *Builder) RowKey(key, value string) Row {
	if !b.usable() {
		return Row{}
	}
	return Row{Key: b.text(key), Value: value}
}

// Image sets the card icon URL
func (b *Builder) Image(url string) *Builder {
	if b.usable() {
		b.card.Image = url
	}
	return b
}

// CreatedAt sets the creation timestamp, normally the entity's own
func (b *Builder) CreatedAt(t time.Time) *Builder {
	if b.usable() {
		b.card.CreationDate = t.UTC()
	}
	return b
}

// Bounded fills the {0} slot of the catalog template key with variable within limit runes
func (b *Builder) Bounded(key, variable string, limit int) string {
	if !b.usable() {
		return ""
	}
	tmpl := b.text(key, "{0}")
	if b.err != nil {
		return ""
	}
	s, overflow := Bound(tmpl, variable, limit)
	if overflow {
		b.a.log().Warn().
			Str("key", key).
			Str("locale", b.locale).
			Int("limit", limit).
			Int("template_len", templateLen(tmpl)).
			Msg("template alone exceeds the length limit, ellipsized")
	}
	return s
}

// Action starts an action owned by this card; kind scopes its id
func (b *Builder) Action(kind string) *ActionBuilder {
	ab := &ActionBuilder{b: b, kind: kind, action: Action{Kind: kind, Method: "POST"}}
	if kind == "" {
		ab.fail(illegal("action kind is required"))
	}
	return ab
}

// AddAction appends a built action
func (b *Builder) AddAction(a Action) *Builder {
	if b.usable() {
		b.card.Actions = append(b.card.Actions, a)
	}
	return b
}

// Build returns the card and consumes the builder
func (b *Builder) Build() (Card, error) {
	if b.consumed {
		return Card{}, illegal("card builder reused after Build")
	}
	b.consumed = true
	if b.err != nil {
		return Card{}, b.err
	}
	if b.card.Header.Title == "" {
		return Card{}, illegal("card header title is required")
	}
	c := b.card
	b.card = Card{}
	c.ID = fingerprint.UUID(b.digest).String()
	if c.CreationDate.IsZero() {
		c.CreationDate = b.a.now()
	}
	if c.Actions == nil {
		c.Actions = []Action{}
	}
	c.Hash = contentHash(c)
	return c, nil
}

func contentHash(c Card) string {
	parts := []string{c.Name, c.Header.Title, c.Body.Description, c.Image}
	parts = append(parts, c.Header.Subtitle...)
	for _, bl := range c.Body.Blocks {
		parts = append(parts, "block", bl.Title)
		for _, r := range bl.Rows {
			parts = append(parts, r.Key, r.Value, r.Link, r.Image)
		}
	}
	for _, a := range c.Actions {
		parts = append(parts, "action", a.ID, a.Label, fmt.Sprint(len(a.UserInput)))
	}
	return fingerprint.Strings(parts)
}
