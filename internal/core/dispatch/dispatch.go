// Package dispatch runs outbound backend HTTP calls without blocking the caller
//
// Every call returns a Future. Completion callbacks run on a small executor whose
// workers receive a copy of the calling request's diagnostic context for the
// duration of the callback. Non-2xx responses, transport errors and timeouts all
// surface as *BackendFailure; the dispatcher never retries
package dispatch

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"hubconnect/internal/platform/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Response is a successful backend reply with its body fully read
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Options configures a Dispatcher
type Options struct {
	Workers   int           // executor size, default 4
	Timeout   time.Duration // per call, default 30s
	MaxIdle   time.Duration // idle connection age before eviction, default 1m
	ReapEvery time.Duration // eviction tick, default 15s
	MaxBody   int64         // response bytes kept, default 1MiB
	UserAgent string
	// RatePerSecond limits outbound calls when > 0
	RatePerSecond float64
	Burst         int
	// Transport overrides the pooled transport, mostly for tests
	Transport http.RoundTripper
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.MaxIdle <= 0 {
		o.MaxIdle = time.Minute
	}
	if o.ReapEvery <= 0 {
		o.ReapEvery = 15 * time.Second
	}
	if o.MaxBody <= 0 {
		o.MaxBody = 1 << 20
	}
	if o.UserAgent == "" {
		o.UserAgent = "hubconnect"
	}
	if o.RatePerSecond > 0 && o.Burst <= 0 {
		o.Burst = 1
	}
	return o
}

// Dispatcher owns the backend connection pool and the callback executor
type Dispatcher struct {
	opts    Options
	client  *http.Client
	exec    *Executor
	conns   *registry
	limiter *rate.Limiter
	tracer  trace.Tracer
	stop    context.CancelFunc
}

// New builds a Dispatcher and starts its executor and idle reaper
func New(opts Options) *Dispatcher {
	o := opts.withDefaults()
	conns := newRegistry()
	rt := o.Transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.IdleConnTimeout = o.MaxIdle
		t.MaxIdleConnsPerHost = 16
		conns.instrument(t)
		rt = t
	} else if t, ok := rt.(*http.Transport); ok {
		t = t.Clone()
		conns.instrument(t)
		rt = t
	}
	d := &Dispatcher{
		opts:   o,
		client: &http.Client{Transport: rt},
		exec:   NewExecutor(o.Workers),
		conns:  conns,
		tracer: otel.Tracer("hubconnect/dispatch"),
	}
	if o.RatePerSecond > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(o.RatePerSecond), o.Burst)
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.stop = cancel
	go d.conns.runReaper(ctx, o.ReapEvery, o.MaxIdle)
	return d
}

// Executor exposes the callback executor
func (d *Dispatcher) Executor() *Executor { return d.exec }

// IdleConns reports how many pooled connections are currently idle
func (d *Dispatcher) IdleConns() int { return d.conns.idle() }

// Close stops the reaper and the executor and drops pooled connections
func (d *Dispatcher) Close() {
	d.stop()
	d.exec.Close()
	d.client.CloseIdleConnections()
}

// Do sends req without blocking and returns its eventual outcome
// the call runs on a context detached from ctx's cancellation, bounded by the
// configured timeout
func (d *Dispatcher) Do(ctx context.Context, req *http.Request) *Future[*Response] {
	f := newFuture[*Response](d.exec)
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
	go func() {
		defer cancel()
		resp, err := d.roundTrip(callCtx, req)
		f.complete(resp, err)
	}()
	return f
}

func (d *Dispatcher) roundTrip(ctx context.Context, in *http.Request) (*Response, error) {
	start := time.Now()
	log := logger.C(ctx)
	target := in.URL.Redacted()

	ctx, span := d.tracer.Start(ctx, "backend "+in.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", in.Method),
			attribute.String("url.full", target),
			attribute.String("server.address", in.URL.Host),
		),
	)
	defer span.End()

	fail := func(f *BackendFailure) (*Response, error) {
		span.SetAttributes(attribute.Int("http.response.status_code", f.Status))
		span.SetStatus(codes.Error, f.Error())
		log.Warn().
			Str("method", f.Method).
			Str("url", target).
			Int("status", f.Status).
			Bool("timeout", f.Timeout).
			Dur("elapsed", time.Since(start)).
			Msg("backend call failed")
		return nil, f
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fail(transportFailure(in, err))
		}
	}

	req := in.Clone(d.conns.trace(ctx))
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", d.opts.UserAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := d.client.Do(req)
	if err != nil {
		return fail(transportFailure(in, err))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, d.opts.MaxBody))
	// drain a little so the connection can be pooled again
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	if err != nil {
		return fail(transportFailure(in, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(&BackendFailure{
			Method: in.Method,
			URL:    target,
			Status: resp.StatusCode,
			Header: resp.Header.Clone(),
			Body:   body,
		})
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log.Debug().
		Str("method", in.Method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("backend call done")
	return &Response{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

func transportFailure(in *http.Request, err error) *BackendFailure {
	f := &BackendFailure{
		Method: in.Method,
		URL:    in.URL.Redacted(),
		Status: http.StatusBadGateway,
		Header: http.Header{},
		Err:    err,
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		f.Status = http.StatusGatewayTimeout
		f.Timeout = true
	}
	return f
}
