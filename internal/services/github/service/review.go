package service

import (
	"context"
	"strings"

	gh "hubconnect/internal/adapters/github"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/platform/logger"
	"hubconnect/internal/services/github/domain"
)

// Approve approves the pull request, optionally with a comment
func (s *Service) Approve(ctx context.Context, c connkit.Call, t domain.Target, in domain.ApproveForm) *dispatch.Future[domain.ReviewResult] {
	return s.review(ctx, c, t, gh.ReviewApprove, in.Comment)
}

// RequestChanges blocks the pull request with a reason
func (s *Service) RequestChanges(ctx context.Context, c connkit.Call, t domain.Target, in domain.RequestChangesForm) *dispatch.Future[domain.ReviewResult] {
	return s.review(ctx, c, t, gh.ReviewRequestChanges, in.Reason)
}

// Comment leaves a review comment without a verdict
func (s *Service) Comment(ctx context.Context, c connkit.Call, t domain.Target, in domain.CommentForm) *dispatch.Future[domain.ReviewResult] {
	return s.review(ctx, c, t, gh.ReviewComment, in.Message)
}

func (s *Service) review(ctx context.Context, c connkit.Call, t domain.Target, ev gh.ReviewEvent, body string) *dispatch.Future[domain.ReviewResult] {
	in := gh.ReviewInput{Event: ev, Body: strings.TrimSpace(body)}
	f := s.gh.CreateReview(ctx, creds(c), t.Owner, t.Repo, t.Number, in)
	return dispatch.Then(ctx, f, func(ctx context.Context, r gh.Review, err error) (domain.ReviewResult, error) {
		if err != nil {
			return domain.ReviewResult{}, err
		}
		logger.C(ctx).Info().
			Str("repo", t.FullName()).
			Int("number", t.Number).
			Str("event", string(ev)).
			Int64("review_id", r.ID).
			Msg("github review submitted")
		return domain.ReviewResult{ID: r.ID, State: r.State, URL: r.HTMLURL}, nil
	})
}
