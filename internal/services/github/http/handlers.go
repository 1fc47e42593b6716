// Package http mounts the GitHub connector's action endpoints
package http

import (
	"context"
	"net/http"

	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/modkit/httpkit"
	"hubconnect/internal/services/github/domain"

	"github.com/go-chi/chi/v5"
)

// Reviewer is the service surface the handlers need
type Reviewer interface {
	Approve(ctx context.Context, c connkit.Call, t domain.Target, in domain.ApproveForm) *dispatch.Future[domain.ReviewResult]
	RequestChanges(ctx context.Context, c connkit.Call, t domain.Target, in domain.RequestChangesForm) *dispatch.Future[domain.ReviewResult]
	Comment(ctx context.Context, c connkit.Call, t domain.Target, in domain.CommentForm) *dispatch.Future[domain.ReviewResult]
}

// Register mounts
//
//	POST /api/v1/{owner}/{repo}/{number}/approve
//	POST /api/v1/{owner}/{repo}/{number}/request-changes
//	POST /api/v1/{owner}/{repo}/{number}/comment
func Register(k *connkit.Kit, r httpkit.Router, svc Reviewer) {
	httpkit.MountAPIV1(r, nil, func(api httpkit.Router) {
		api.Post("/{owner}/{repo}/{number}/"+domain.ActionApprove, connkit.Action(k, action(svc.Approve)))
		api.Post("/{owner}/{repo}/{number}/"+domain.ActionRequestChanges, connkit.Action(k, action(svc.RequestChanges)))
		api.Post("/{owner}/{repo}/{number}/"+domain.ActionComment, connkit.Action(k, action(svc.Comment)))
	})
}

// action resolves the route's pull request before handing the form to fn
func action[T any](fn func(context.Context, connkit.Call, domain.Target, T) *dispatch.Future[domain.ReviewResult]) func(context.Context, connkit.Call, *http.Request, T) *dispatch.Future[domain.ReviewResult] {
	return func(ctx context.Context, c connkit.Call, r *http.Request, in T) *dispatch.Future[domain.ReviewResult] {
		t, err := domain.ParseTarget(chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), chi.URLParam(r, "number"))
		if err != nil {
			return dispatch.Completed[domain.ReviewResult](nil, domain.ReviewResult{}, err)
		}
		return fn(ctx, c, t, in)
	}
}
