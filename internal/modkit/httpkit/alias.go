// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "hubconnect/internal/platform/net/http"
	"hubconnect/internal/platform/net/http/bind"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// ErrorWriter writes a failed request; connectors plug the error translator in here
	ErrorWriter = phttp.ErrorWriter
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error returns a response whose failure is written by the error writer
func Error(err error) Response { return phttp.Error(err) }

// JSON decodes and validates a JSON body into T, then calls fn
// failures go through ew; a nil ew uses the platform mapping
func JSON[T any](ew ErrorWriter, fn func(*http.Request, T) (any, error)) Handler {
	return Handle(ew, func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return phttp.Error(err)
		}
		return wrap(fn(r, in))
	})
}

// Form decodes and validates a url-encoded body into T, then calls fn
func Form[T any](ew ErrorWriter, fn func(*http.Request, T) (any, error)) Handler {
	return Handle(ew, func(r *http.Request) Response {
		in, err := bind.ParseForm[T](r)
		if err != nil {
			return phttp.Error(err)
		}
		return wrap(fn(r, in))
	})
}

// Call adapts a handler that takes no body
func Call(ew ErrorWriter, fn func(*http.Request) (any, error)) Handler {
	return Handle(ew, func(r *http.Request) Response { return wrap(fn(r)) })
}

// Handle adapts a Response-returning function
func Handle(ew ErrorWriter, fn func(*http.Request) Response) Handler {
	return phttp.HandleWith(ew, fn)
}

func wrap(out any, err error) Response {
	if err != nil {
		return phttp.Error(err)
	}
	if resp, ok := out.(phttp.Response); ok {
		return resp
	}
	return phttp.OK(out)
}
