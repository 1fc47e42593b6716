package dispatch

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"time"

	"hubconnect/internal/platform/logger"
)

// registry tracks backend connections from dial to close and when they went idle
// a zero time means the connection is checked out
type registry struct {
	mu    sync.Mutex
	conns map[net.Conn]time.Time
	now   func() time.Time
}

func newRegistry() *registry {
	return &registry{conns: map[net.Conn]time.Time{}, now: time.Now}
}

// trackedConn leaves the registry when it is closed, whoever closes it
type trackedConn struct {
	net.Conn
	reg  *registry
	once sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() { c.reg.forget(c) })
	return c.Conn.Close()
}

// instrument makes t register every connection it dials
func (r *registry) instrument(t *http.Transport) {
	dial := t.DialContext
	if dial == nil {
		dial = (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	}
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		c, err := dial(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		tc := &trackedConn{Conn: c, reg: r}
		r.mu.Lock()
		r.conns[tc] = time.Time{}
		r.mu.Unlock()
		return tc, nil
	}
}

func (r *registry) forget(c net.Conn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
}

// mark stamps a registered connection; unknown connections are ignored
func (r *registry) mark(c net.Conn, at time.Time) {
	if nc, ok := c.(interface{ NetConn() net.Conn }); ok {
		c = nc.NetConn() // tls wraps the dialed conn
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c]; ok {
		r.conns[c] = at
	}
}

// size reports how many live connections are tracked
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// trace timestamps one request's connection; membership is owned by dial and Close
func (r *registry) trace(ctx context.Context) context.Context {
	var conn net.Conn
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			conn = info.Conn
			r.mark(conn, time.Time{})
		},
		PutIdleConn: func(err error) {
			if conn == nil || err != nil {
				return
			}
			r.mark(conn, r.now())
		},
	})
}

// reap closes connections idle for longer than maxIdle and returns how many it closed
func (r *registry) reap(maxIdle time.Duration) int {
	var stale []net.Conn

	r.mu.Lock()
	cutoff := r.now().Add(-maxIdle)
	for c, since := range r.conns {
		if !since.IsZero() && since.Before(cutoff) {
			stale = append(stale, c)
			delete(r.conns, c)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		_ = c.Close()
	}
	return len(stale)
}

func (r *registry) idle() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, since := range r.conns {
		if !since.IsZero() {
			n++
		}
	}
	return n
}

// runReaper evicts idle connections every interval until ctx is done
func (r *registry) runReaper(ctx context.Context, every, maxIdle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	log := logger.Named("dispatch")
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.reap(maxIdle); n > 0 {
				log.Debug().Int("closed", n).Dur("max_idle", maxIdle).Msg("evicted idle backend connections")
			}
		}
	}
}
