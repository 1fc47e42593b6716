package github

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimit is GitHub's quota view from response headers
type RateLimit struct {
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// parseRate reads X-RateLimit-* and Retry-After; missing headers give zero values
// Remaining is -1 when GitHub did not report it
func parseRate(h http.Header) RateLimit {
	rl := RateLimit{
		Limit:     atoi(h.Get("X-RateLimit-Limit"), 0),
		Remaining: atoi(h.Get("X-RateLimit-Remaining"), -1),
	}
	if sec := atoi(h.Get("X-RateLimit-Reset"), 0); sec > 0 {
		rl.Reset = time.Unix(int64(sec), 0).UTC()
	}
	if s := atoi(h.Get("Retry-After"), 0); s > 0 {
		rl.RetryAfter = time.Duration(s) * time.Second
	}
	return rl
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
