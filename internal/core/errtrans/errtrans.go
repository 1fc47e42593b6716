// Package errtrans turns every failure a connector can produce into the
// status, headers and body the Hub expects
//
// the mapping is total: anything not recognised becomes a generic 500
package errtrans

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"hubconnect/internal/core/dispatch"
	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/logger"
	pnet "hubconnect/internal/platform/net"

	"github.com/rs/zerolog"
)

// BackendStatusHeader carries the backend's status on translated backend failures
const BackendStatusHeader = "X-Backend-Status"

// Reply is a translated failure ready to write
type Reply struct {
	Status      int
	Header      http.Header
	ContentType string
	Body        []byte
}

// Translator maps errors to Replies and logs them
type Translator struct {
	// Log overrides the request logger, mainly for tests
	Log *logger.Logger
}

// Translate maps err to a Reply
func (t Translator) Translate(ctx context.Context, err error) Reply {
	rep := translate(err)
	t.log(ctx, err, rep)
	return rep
}

// Write translates err and writes it to w; it matches the router's error writer shape
func (t Translator) Write(w http.ResponseWriter, r *http.Request, err error) {
	rep := t.Translate(r.Context(), err)
	for k, vv := range rep.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	if rep.ContentType != "" {
		w.Header().Set("Content-Type", rep.ContentType)
	}
	w.WriteHeader(rep.Status)
	_, _ = w.Write(rep.Body)
}

// Write is the default translator's writer
func Write(w http.ResponseWriter, r *http.Request, err error) { Translator{}.Write(w, r, err) }

func translate(err error) Reply {
	if f, ok := dispatch.AsFailure(err); ok {
		return backend(f)
	}

	e, ok := perr.As(err)
	if !ok {
		return generic()
	}
	switch e.Code() {
	case perr.ErrorCodeValidation:
		return jsonReply(http.StatusBadRequest, pnet.ValidationWire{Errors: e.Fields()})
	case perr.ErrorCodeInvalidArgument, perr.ErrorCodeJSON:
		return jsonReply(http.StatusBadRequest, pnet.ErrorWire{Error: e.Message()})
	case perr.ErrorCodeMalformedCredential:
		return jsonReply(http.StatusUnauthorized, pnet.ErrorWire{Error: e.Message()})
	case perr.ErrorCodeForbidden:
		return jsonReply(http.StatusForbidden, pnet.ErrorWire{Error: e.Message()})
	case perr.ErrorCodeNotFound, perr.ErrorCodeConflict:
		return jsonReply(http.StatusNotFound, pnet.ErrorWire{Error: e.Message()})
	default:
		return generic()
	}
}

func backend(f *dispatch.BackendFailure) Reply {
	h := http.Header{}
	h.Set(BackendStatusHeader, strconv.Itoa(f.Status))

	if f.Status == http.StatusUnauthorized {
		rep := jsonReply(http.StatusBadRequest, pnet.ErrorWire{Error: pnet.InvalidConnectorToken})
		rep.Header = h
		return rep
	}
	return Reply{
		Status:      http.StatusInternalServerError,
		Header:      h,
		ContentType: f.ContentType(),
		Body:        f.Body,
	}
}

func generic() Reply {
	return jsonReply(http.StatusInternalServerError, pnet.ErrorWire{Error: http.StatusText(http.StatusInternalServerError)})
}

func jsonReply(status int, v any) Reply {
	b, err := json.Marshal(v)
	if err != nil {
		// the wire types are plain string maps
		panic(perr.Wrap(err, perr.ErrorCodeUnknown, "marshal error reply"))
	}
	return Reply{
		Status:      status,
		Header:      http.Header{},
		ContentType: "application/json; charset=utf-8",
		Body:        append(b, '\n'),
	}
}

func (t Translator) log(ctx context.Context, err error, rep Reply) {
	l := logger.C(ctx)
	if t.Log != nil {
		ll := t.Log.With().Str("request_id", pnet.RequestID(ctx)).Logger()
		l = &ll
	}

	f, isBackend := dispatch.AsFailure(err)
	var ev *zerolog.Event
	switch {
	case isBackend:
		ev = l.Warn().
			Int("backend_status", f.Status).
			Bool("backend_timeout", f.Timeout).
			Str("backend_url", f.URL)
	case rep.Status >= http.StatusInternalServerError:
		ev = l.Error()
	default:
		ev = l.Debug()
	}
	ev.Err(err).
		Int("status", rep.Status).
		Str("code", perr.CodeOf(err).String()).
		Msg("request failed")
}
