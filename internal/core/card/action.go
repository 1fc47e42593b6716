package card

import (
	"maps"
	"net/http"
	"strings"

	"hubconnect/internal/core/fingerprint"
	"hubconnect/internal/core/i18n"
)

// ActionBuilder accumulates one Action for its card. Same sticky error and
// single use rules as Builder
type ActionBuilder struct {
	b        *Builder
	kind     string
	err      error
	consumed bool
	action   Action
}

func (ab *ActionBuilder) fail(err error) {
	if ab.err == nil {
		ab.err = err
	}
}

func (ab *ActionBuilder) usable() bool {
	if ab.consumed {
		ab.fail(illegal("action builder reused after Build"))
		return false
	}
	return ab.err == nil
}

func (ab *ActionBuilder) text(key string) string {
	s := ab.b.text(key)
	if err := ab.b.err; err != nil {
		ab.fail(err)
	}
	return s
}

// Err returns the first failure so far
func (ab *ActionBuilder) Err() error { return ab.err }

// Label sets the button label
func (ab *ActionBuilder) Label(s string) *ActionBuilder {
	if ab.usable() {
		ab.action.Label = s
	}
	return ab
}

// LabelKey resolves <prefix>.action.label and, when present in the catalog,
// <prefix>.action.completed.label
func (ab *ActionBuilder) LabelKey(prefix string) *ActionBuilder {
	if !ab.usable() {
		return ab
	}
	ab.action.Label = ab.text(prefix + i18n.SuffixActionLabel)
	if ab.err != nil {
		return ab
	}
	ab.action.CompletedLabel = ab.b.optional(prefix + i18n.SuffixActionComplete)
	return ab
}

// Method sets the HTTP method, POST by default
func (ab *ActionBuilder) Method(m string) *ActionBuilder {
	if ab.usable() {
		ab.action.Method = strings.ToUpper(m)
	}
	return ab
}

// URL sets the action target
func (ab *ActionBuilder) URL(u string) *ActionBuilder {
	if ab.usable() {
		ab.action.URL = u
	}
	return ab
}

// OpenIn makes the action a browser link to u
func (ab *ActionBuilder) OpenIn(u string) *ActionBuilder {
	if ab.usable() {
		ab.action.URL = u
		ab.action.Method = http.MethodGet
		ab.action.Mode = ModeOpenIn
	}
	return ab
}

// Primary marks the action as the card's main one
func (ab *ActionBuilder) Primary() *ActionBuilder {
	if ab.usable() {
		ab.action.Primary = true
	}
	return ab
}

// RemoveOnCompletion asks the Hub to drop the card after success
func (ab *ActionBuilder) RemoveOnCompletion() *ActionBuilder {
	if ab.usable() {
		ab.action.RemoveCardOnCompletion = true
	}
	return ab
}

// Param adds a static request parameter
func (ab *ActionBuilder) Param(k, v string) *ActionBuilder {
	if ab.usable() {
		if ab.action.Params == nil {
			ab.action.Params = map[string]string{}
		}
		ab.action.Params[k] = v
	}
	return ab
}

// Header adds a static request header
func (ab *ActionBuilder) Header(k, v string) *ActionBuilder {
	if ab.usable() {
		if ab.action.Headers == nil {
			ab.action.Headers = map[string]string{}
		}
		ab.action.Headers[k] = v
	}
	return ab
}

// UserInput adds a form field; nil or inconsistent fields fail the builder
// an empty label is resolved from <prefix>.user.input.<id>.label when prefix is set
func (ab *ActionBuilder) UserInput(in *UserInput, prefix string) *ActionBuilder {
	if !ab.usable() {
		return ab
	}
	switch {
	case in == nil:
		ab.fail(illegal("user input is nil"))
		return ab
	case strings.TrimSpace(in.ID) == "":
		ab.fail(illegal("user input id is required"))
		return ab
	case in.MinLength < 0 || in.MaxLength < 0:
		ab.fail(illegal("user input %s has a negative length bound", in.ID))
		return ab
	case in.MaxLength > 0 && in.MaxLength < in.MinLength:
		ab.fail(illegal("user input %s max length %d below min length %d", in.ID, in.MaxLength, in.MinLength))
		return ab
	}
	u := *in
	if u.Type == "" {
		u.Type = InputText
	}
	if u.Label == "" && prefix != "" {
		u.Label = ab.text(prefix + i18n.UserInputLabel(u.ID))
	}
	if u.Label == "" {
		ab.fail(illegal("user input %s has no label", u.ID))
		return ab
	}
	ab.action.UserInput = append(ab.action.UserInput, u)
	return ab
}

// Build returns the action and consumes the builder
func (ab *ActionBuilder) Build() (Action, error) {
	if ab.consumed {
		return Action{}, illegal("action builder reused after Build")
	}
	ab.consumed = true
	if ab.err != nil {
		return Action{}, ab.err
	}
	if ab.b.err != nil {
		return Action{}, ab.b.err
	}
	a := ab.action
	ab.action = Action{}
	switch {
	case a.Label == "":
		return Action{}, illegal("action %s needs a label", a.Kind)
	case a.URL == "":
		return Action{}, illegal("action %s needs a url", a.Kind)
	}
	a.ID = fingerprint.UUID(fingerprint.Strings([]string{"action", ab.b.digest, ab.kind})).String()
	if a.Mode == "" {
		a.Mode = ModeDirect
		if len(a.UserInput) > 0 {
			a.Mode = ModeUserInput
		}
	}
	a.Params = maps.Clone(a.Params)
	if a.Params == nil {
		a.Params = map[string]string{}
	}
	if a.UserInput == nil {
		a.UserInput = []UserInput{}
	}
	return a, nil
}
