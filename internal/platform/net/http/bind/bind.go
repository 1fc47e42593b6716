// Package bind provides JSON and form bind plus validation helpers for handlers
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/logger"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// UT aliases ut.Translator
type UT = ut.Translator

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce    sync.Once
	vSvc     *ValidatorSvc
	jsonMore = func(dec *json.Decoder) bool { return dec.More() } // seam
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json then form tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := tagName(fld, "json"); name != "" {
				return name
			}
			if name := tagName(fld, "form"); name != "" {
				return name
			}
			return fld.Name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		// short messages for min and max
		registerShortMin(v, trans)
		registerShortMax(v, trans)

		// common custom tags
		registerNotBlank(v, trans)
		registerHasValue(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Get returns the validator singleton, initializing on first use
func Get() *ValidatorSvc {
	if vSvc == nil {
		return Init()
	}
	return vSvc
}

// RegisterValidation registers a custom tag
func RegisterValidation(tag string, fn validator.Func) error {
	return Get().Validator.RegisterValidation(tag, fn)
}

// JSONOptions controls parsing behavior
type JSONOptions struct {
	MaxBytes        int64 // default 1MB
	DisallowUnknown bool  // default true
	AllowEmptyBody  bool  // default false
}

func defaultJSONOptions() JSONOptions {
	return JSONOptions{
		MaxBytes:        1 << 20,
		DisallowUnknown: true,
		AllowEmptyBody:  false,
	}
}

// ParseJSON decodes JSON into T, validates it, and maps failures to project errors
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var zero T
	o := defaultJSONOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	var reader io.Reader

	if !o.AllowEmptyBody {
		buf := make([]byte, 1)
		n, _ := r.Body.Read(buf)
		if n == 0 {
			// Tolerate empty body for safe/idempotent methods
			switch r.Method {
			case http.MethodGet, http.MethodDelete, http.MethodHead, http.MethodOptions:
				return zero, nil
			}
			return zero, perr.JSONErrf("empty body")
		}
		combined := io.MultiReader(bytes.NewReader(buf[:n]), r.Body)
		if o.MaxBytes > 0 {
			reader = io.LimitReader(combined, o.MaxBytes)
		} else {
			reader = combined
		}
	} else {
		if o.MaxBytes > 0 {
			reader = io.LimitReader(r.Body, o.MaxBytes)
		} else {
			reader = r.Body
		}
	}

	dec := json.NewDecoder(reader)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		// Treat EOF as acceptable when empty bodies are allowed
		if o.AllowEmptyBody && errors.Is(err, io.EOF) {
			return dst, nil
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}

	if jsonMore(dec) {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Validate runs struct validation and maps failures to a perr validation error
// carrying one translated message per offending field
func Validate(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
	}
	return perr.Validation(ValidationFields(err))
}

// FormOptions controls form parsing behavior
type FormOptions struct {
	MaxBytes int64 // default 64KB
}

// ParseForm decodes an application/x-www-form-urlencoded body into T using `form` tags,
// validates it, and maps failures to project errors
func ParseForm[T any](r *http.Request, opts ...FormOptions) (T, error) {
	var zero T
	o := FormOptions{MaxBytes: 64 << 10}
	if len(opts) > 0 && opts[0].MaxBytes > 0 {
		o = opts[0]
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(nil, r.Body, o.MaxBytes)
	}
	if err := r.ParseForm(); err != nil {
		return zero, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid form body")
	}

	var dst T
	if k := reflect.TypeOf(&dst).Elem().Kind(); k != reflect.Struct {
		return zero, perr.IllegalArgf("form target must be a struct, got %s", k)
	}
	if err := formDecoder().Decode(&dst, r.PostForm); err != nil {
		return zero, formError(err)
	}

	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

var (
	fOnce sync.Once
	fDec  *form.Decoder
)

// formDecoder is shared; form.Decoder is safe for concurrent use
func formDecoder() *form.Decoder {
	fOnce.Do(func() {
		fDec = form.NewDecoder()
		fDec.SetTagName("form")
	})
	return fDec
}

// formError maps decode failures to one validation message per form key
func formError(err error) error {
	var derrs form.DecodeErrors
	if !errors.As(err, &derrs) {
		return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid form body")
	}
	fields := make(map[string]string, len(derrs))
	first := ""
	for name := range derrs {
		fields[name] = "has an invalid value"
		if first == "" || name < first {
			first = name
		}
	}
	return perr.WithField(perr.Validation(fields), first)
}

func tagName(fld reflect.StructField, key string) string {
	tag := fld.Tag.Get(key)
	if tag == "-" || tag == "" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

// ValidationFieldAndMessage returns the first field and translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// ValidationFields returns every offending field with its translated message
func ValidationFields(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["_"] = err.Error()
		}
		return out
	}
	for _, fe := range verrs {
		name := fe.Field()
		if _, dup := out[name]; dup {
			continue
		}
		out[name] = fe.Translate(Get().Translator)
	}
	return out
}

// custom translations with short messages

func registerShortMin(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("min", trans,
		func(ut ut.Translator) error {
			return ut.Add("min", "{0} must be at least {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("min", fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerShortMax(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("max", trans,
		func(ut ut.Translator) error {
			return ut.Add("max", "{0} must be at most {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("max", fe.Field(), fe.Param())
			return msg
		},
	)
}

func registerNotBlank(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.String {
			return false
		}
		return strings.TrimSpace(f.String()) != ""
	})
	_ = v.RegisterTranslation("notblank", trans,
		func(ut ut.Translator) error {
			return ut.Add("notblank", "{0} must not be blank", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("notblank", fe.Field())
			return msg
		},
	)
}

// has_value accepts a map[string][]string holding at least one key with a non-blank value
func registerHasValue(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("has_value", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() != reflect.Map {
			return false
		}
		iter := f.MapRange()
		for iter.Next() {
			vals := iter.Value()
			if vals.Kind() != reflect.Slice {
				continue
			}
			for j := range vals.Len() {
				if el := vals.Index(j); el.Kind() == reflect.String && strings.TrimSpace(el.String()) != "" {
					return true
				}
			}
		}
		return false
	})
	_ = v.RegisterTranslation("has_value", trans,
		func(ut ut.Translator) error {
			return ut.Add("has_value", "{0} must contain at least one non-empty value", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("has_value", fe.Field())
			return msg
		},
	)
}
