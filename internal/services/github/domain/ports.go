package domain

import (
	"context"

	gh "hubconnect/internal/adapters/github"
	"hubconnect/internal/core/dispatch"
)

// GitHub is the slice of the REST client the connector uses
type GitHub interface {
	UsersByEmail(ctx context.Context, cr gh.Creds, email string) *dispatch.Future[gh.SearchUsers]
	ReviewRequests(ctx context.Context, cr gh.Creds, login string, perPage int) *dispatch.Future[gh.SearchIssues]
	PullRequest(ctx context.Context, cr gh.Creds, owner, repo string, number int) *dispatch.Future[gh.PullRequest]
	CreateReview(ctx context.Context, cr gh.Creds, owner, repo string, number int, in gh.ReviewInput) *dispatch.Future[gh.Review]
}

var _ GitHub = (*gh.Client)(nil)
