package httpkit

import (
	"net/http"
)

// Get registers a no-body handler using the platform error mapping
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(nil, h))
}

// PostJSON mounts a JSON handler under POST
func PostJSON[T any](r Router, ew ErrorWriter, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, JSON(ew, h))
}

// PostForm mounts a url-encoded form handler under POST
func PostForm[T any](r Router, ew ErrorWriter, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, Form(ew, h))
}
