// Package http provides helpers for writing raw JSON responses in the connector contract
package http

import (
	"encoding/json"
	stdhttp "net/http"

	"hubconnect/internal/platform/logger"
	pnet "hubconnect/internal/platform/net"
)

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps a project error into a status and body and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status, body := pnet.Error(err)
	if status >= stdhttp.StatusInternalServerError {
		logger.C(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
	}
	JSON(w, status, body)
}

// ErrorWriter writes err to w; connectors plug their error translator in here
type ErrorWriter func(w stdhttp.ResponseWriter, r *stdhttp.Request, err error)

//
// Return-style helpers for early returns in handlers
//

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	// optional headers if a handler wants to add any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http using RespondError for failures
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return HandleWith(RespondError, h)
}

// HandleWith adapts a Response-returning handler and routes failures through ew
func HandleWith(ew ErrorWriter, h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	if ew == nil {
		ew = RespondError
	}
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r, ew)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request, ew ErrorWriter) {
	// allow header overrides
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}

	// If Body is an error, the error writer owns status and body
	if err, ok := resp.Body.(error); ok && err != nil {
		ew(w, r, err)
		return
	}

	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if status == stdhttp.StatusNoContent || resp.Body == nil {
		w.WriteHeader(status)
		return
	}
	JSON(w, status, resp.Body)
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response whose status and body come from the error writer
func Error(err error) Response { return Response{Body: err} }
