// Package net provides utilities for working with request contexts
package net

import (
	"context"

	"hubconnect/internal/platform/diag"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// WithRequest annotates context with common request scoped ids
// ids are stored in the diagnostic bag so they follow dispatcher hops
func WithRequest(ctx context.Context, reqID, tenantID string) context.Context {
	if reqID == "" && tenantID == "" {
		return ctx
	}
	ctx, b := diag.Ensure(ctx)
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
		b.Put(diag.KeyRequestID, reqID)
	}
	if tenantID != "" {
		b.Put(diag.KeyTenant, tenantID)
	}
	return ctx
}

// WithUser annotates context with the authenticated principal name
func WithUser(ctx context.Context, prn string) context.Context {
	if prn == "" {
		return ctx
	}
	ctx, b := diag.Ensure(ctx)
	b.Put(diag.KeyPrincipal, prn)
	return ctx
}

// WithLocale annotates context with the negotiated locale tag
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	ctx, b := diag.Ensure(ctx)
	b.Put(diag.KeyLocale, locale)
	return ctx
}

// WithConnector tags the request with the connector serving it
func WithConnector(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	ctx, b := diag.Ensure(ctx)
	b.Put(diag.KeyConnector, name)
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return diag.Get(ctx, diag.KeyRequestID)
}

// TenantID returns the tenant id on the context if present
func TenantID(ctx context.Context) string { return diag.Get(ctx, diag.KeyTenant) }

// UserID returns the principal name on the context if present
func UserID(ctx context.Context) string { return diag.Get(ctx, diag.KeyPrincipal) }

// Locale returns the negotiated locale on the context if present
func Locale(ctx context.Context) string { return diag.Get(ctx, diag.KeyLocale) }
