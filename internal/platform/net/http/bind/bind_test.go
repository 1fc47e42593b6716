package bind

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "hubconnect/internal/platform/errors"
)

// shared payload for many tests
type payload struct {
	Name string `json:"name" validate:"required,min=2"`
	Age  int    `json:"age" validate:"min=1"`
}

func TestParseJSON_Success(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Alice","age":3}`))
	got, err := ParseJSON[payload](req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Alice" || got.Age != 3 {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_EmptyBody_Disallow(t *testing.T) {
	req := httptest.NewRequest("POST", "/", http.NoBody)
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
}

// Covers: AllowEmptyBody true + EOF path in Decode
func TestParseJSON_AllowEmptyBody_EOF_OK(t *testing.T) {
	type emptyOK struct {
		Note string `json:"note"`
	}
	opts := JSONOptions{AllowEmptyBody: true}
	req := httptest.NewRequest("POST", "/", http.NoBody)

	got, err := ParseJSON[emptyOK](req, opts)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != (emptyOK{}) {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

// Covers: AllowEmptyBody true + MaxBytes > 0 branch
func TestParseJSON_AllowEmptyBody_WithMaxBytes(t *testing.T) {
	type emptyOK struct {
		Note string `json:"note"`
	}
	opts := JSONOptions{AllowEmptyBody: true, MaxBytes: 8}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

	got, err := ParseJSON[emptyOK](req, opts)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got != (emptyOK{}) {
		t.Fatalf("expected zero value, got %+v", got)
	}
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_UnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Al","age":3,"boom":1}`))
	_, err := ParseJSON[payload](req) // DisallowUnknown default true
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for unknown field, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_DisallowUnknownFalse_OK(t *testing.T) {
	opts := JSONOptions{DisallowUnknown: false}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Al","age":3,"extra":"ok"}`))
	got, err := ParseJSON[payload](req, opts)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.Name != "Al" || got.Age != 3 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

// Forces trailing-data branch via seam
func TestParseJSON_TrailingData_Seam(t *testing.T) {
	orig := jsonMore
	jsonMore = func(_ *json.Decoder) bool { return true }
	defer func() { jsonMore = orig }()

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Al","age":3}`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for trailing data, got %v (%v)", perr.CodeOf(err), err)
	}
}

func TestParseJSON_ValidationError(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"A","age":0}`))
	_, err := ParseJSON[payload](req)
	if perr.CodeOf(err) != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error code, got %v (%v)", perr.CodeOf(err), err)
	}
	e, _ := perr.As(err)
	f := e.Fields()
	if f["name"] != "name must be at least 2" || f["age"] != "age must be at least 1" {
		t.Fatalf("expected one message per field, got %v", f)
	}
}

// Covers: peek+combine path with MaxBytes == 0
func TestParseJSON_PeekCombine_NoLimit(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Bob","age":2}`))
	_, err := ParseJSON[payload](req, JSONOptions{MaxBytes: 0})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

// Covers: peek+combine path with MaxBytes > 0
func TestParseJSON_PeekCombine_WithLimit(t *testing.T) {
	// limit high enough to succeed, still goes through LimitReader branch
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Bob","age":2}`))
	_, err := ParseJSON[payload](req, JSONOptions{MaxBytes: 64})
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestParseJSON_MaxBytes_Fail(t *testing.T) {
	opts := JSONOptions{MaxBytes: 5, DisallowUnknown: true, AllowEmptyBody: false}
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Alice","age":3}`))
	_, err := ParseJSON[payload](req, opts)
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error due to size limit, got %v (%v)", perr.CodeOf(err), err)
	}
}

// Triggers InvalidValidationError in validator.Struct
func TestParseJSON_InvalidValidationError_Path(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`5`))
	_, err := ParseJSON[int](req) // non-struct validation
	// validator misuse is a server side defect, never a client validation failure
	if perr.CodeOf(err) != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown-coded error, got %v (%v)", perr.CodeOf(err), err)
	}
}

// TestTagNameFunc_JsonTagNameUsed coverage: json:"foo,omitempty", json:"-", and no json tag
func TestTagNameFunc_JsonTagNameUsed(t *testing.T) {
	Init()
	type s struct {
		Val int `json:"foo,omitempty" validate:"min=1"`
	}
	err := Get().Validator.Struct(s{Val: 0})
	field, msg := ValidationFieldAndMessage(err)
	if field != "foo" { // trimmed before comma
		t.Fatalf("expected field=foo, got %s", field)
	}
	if !strings.Contains(msg, "at least") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestTagNameFunc_DashUsesFieldName(t *testing.T) {
	Init()
	type s struct {
		Secret int `json:"-" validate:"min=1"`
	}
	err := Get().Validator.Struct(s{Secret: 0})
	field, _ := ValidationFieldAndMessage(err)
	if field != "Secret" { // falls back to struct field name
		t.Fatalf("expected field=Secret, got %s", field)
	}
}

func TestTagNameFunc_NoTagUsesFieldName(t *testing.T) {
	Init()
	type s struct {
		Plain int `validate:"min=1"`
	}
	err := Get().Validator.Struct(s{Plain: 0})
	field, _ := ValidationFieldAndMessage(err)
	if field != "Plain" {
		t.Fatalf("expected field=Plain, got %s", field)
	}
}

func TestValidationFieldAndMessage_GenericError(t *testing.T) {
	field, msg := ValidationFieldAndMessage(errors.New("boom"))
	if field != "" || msg != "boom" {
		t.Fatalf("expected generic passthrough, got field=%q msg=%q", field, msg)
	}
}

func TestTranslations_MaxNotBlankHasValue(t *testing.T) {
	Init()

	type s struct {
		Count  int                 `json:"count" validate:"max=5"`
		Reason string              `json:"reason" validate:"notblank"`
		Tokens map[string][]string `json:"tokens" validate:"has_value"`
	}
	ok := map[string][]string{"email": {"a@b.c"}}

	err1 := Get().Validator.Struct(s{Count: 6, Reason: "x", Tokens: ok})
	_, msg1 := ValidationFieldAndMessage(err1)
	if msg1 != "count must be at most 5" {
		t.Fatalf("unexpected max message: %q", msg1)
	}

	err2 := Get().Validator.Struct(s{Count: 1, Reason: "   ", Tokens: ok})
	_, msg2 := ValidationFieldAndMessage(err2)
	if msg2 != "reason must not be blank" {
		t.Fatalf("unexpected notblank message: %q", msg2)
	}

	for _, bad := range []map[string][]string{nil, {}, {"email": nil}, {"email": {"", " "}}} {
		err3 := Get().Validator.Struct(s{Count: 1, Reason: "x", Tokens: bad})
		_, msg3 := ValidationFieldAndMessage(err3)
		if msg3 != "tokens must contain at least one non-empty value" {
			t.Fatalf("tokens=%v: unexpected has_value message: %q", bad, msg3)
		}
	}
}

type reviewForm struct {
	Reason string   `form:"reason" validate:"notblank"`
	Notify bool     `form:"notify"`
	Count  int      `form:"count"`
	Tags   []string `form:"tag"`
}

func formRequest(body string) *http.Request {
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseForm_Success(t *testing.T) {
	got, err := ParseForm[reviewForm](formRequest("reason=needs+tests&notify=true&count=3&tag=a&tag=b"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.Reason != "needs tests" || !got.Notify || got.Count != 3 || len(got.Tags) != 2 {
		t.Fatalf("unexpected form: %+v", got)
	}
}

func TestParseForm_MissingRequiredField(t *testing.T) {
	_, err := ParseForm[reviewForm](formRequest("notify=false"))
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if e.Fields()["reason"] == "" {
		t.Fatalf("expected reason in fields, got %v", e.Fields())
	}
}

func TestParseForm_BadScalar(t *testing.T) {
	_, err := ParseForm[reviewForm](formRequest("reason=x&count=many"))
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation || e.Fields()["count"] == "" {
		t.Fatalf("expected count field error, got %v", err)
	}
	if _, extra := e.Fields()["reason"]; extra {
		t.Fatalf("only the bad key should be reported, got %v", e.Fields())
	}
}

type triageForm struct {
	Reason   string  `form:"reason" validate:"notblank"`
	Priority int64   `form:"priority"`
	Lines    []int   `form:"line"`
	Weight   float64 `form:"weight"`
	Assignee *string `form:"assignee"`
	Meta     struct {
		Source string `form:"source"`
		Retry  uint8  `form:"retry"`
	} `form:"meta"`
}

func TestParseForm_WideFieldKinds(t *testing.T) {
	body := "reason=flaky&priority=9000000000&line=3&line=14&weight=0.5&assignee=mona&meta.source=ci&meta.retry=2"
	got, err := ParseForm[triageForm](formRequest(body))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.Priority != 9000000000 || got.Weight != 0.5 {
		t.Fatalf("unexpected scalars: %+v", got)
	}
	if len(got.Lines) != 2 || got.Lines[0] != 3 || got.Lines[1] != 14 {
		t.Fatalf("unexpected lines: %v", got.Lines)
	}
	if got.Assignee == nil || *got.Assignee != "mona" {
		t.Fatalf("unexpected assignee: %v", got.Assignee)
	}
	if got.Meta.Source != "ci" || got.Meta.Retry != 2 {
		t.Fatalf("unexpected meta: %+v", got.Meta)
	}
}

func TestParseForm_WideFieldKinds_Absent(t *testing.T) {
	got, err := ParseForm[triageForm](formRequest("reason=flaky"))
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if got.Assignee != nil || got.Lines != nil || got.Meta.Source != "" {
		t.Fatalf("absent keys should leave zero values: %+v", got)
	}
}

func TestParseForm_BadNestedValue(t *testing.T) {
	_, err := ParseForm[triageForm](formRequest("reason=flaky&meta.retry=300"))
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation || e.Fields()["meta.retry"] == "" {
		t.Fatalf("expected meta.retry field error, got %v", err)
	}
}

func TestParseForm_NonStruct(t *testing.T) {
	_, err := ParseForm[string](formRequest("a=b"))
	if perr.CodeOf(err) != perr.ErrorCodeIllegalArgument {
		t.Fatalf("expected illegal argument, got %v", err)
	}
}

func TestParseForm_TooLarge(t *testing.T) {
	_, err := ParseForm[reviewForm](formRequest("reason="+strings.Repeat("x", 64)), FormOptions{MaxBytes: 16})
	if perr.CodeOf(err) != perr.ErrorCodeInvalidArgument {
		t.Fatalf("expected invalid argument for oversized body, got %v", err)
	}
}

func TestRegisterValidation_DuplicateTag_Overwrites(t *testing.T) {
	Init()

	// register "dupe_tag" that always fails
	if err := RegisterValidation("dupe_tag", func(fl FieldLevel) bool { return false }); err != nil {
		t.Fatalf("unexpected error on first register: %v", err)
	}
	// overwrite with a version that always succeeds
	if err := RegisterValidation("dupe_tag", func(fl FieldLevel) bool { return true }); err != nil {
		t.Fatalf("unexpected error on second register: %v", err)
	}

	type S struct {
		N int `json:"n" validate:"dupe_tag"`
	}

	// should pass because the second registration returns true
	if err := Get().Validator.Struct(S{N: 0}); err != nil {
		t.Fatalf("expected validation to pass after overwrite, got %v", err)
	}
}
