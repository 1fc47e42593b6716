package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"hubconnect/internal/core/dispatch"
	perr "hubconnect/internal/platform/errors"
)

// Viewer fetches the user the token belongs to
func (c *Client) Viewer(ctx context.Context, cr Creds) *dispatch.Future[User] {
	return call[User](ctx, c, cr, http.MethodGet, "/user", nil, nil)
}

// UsersByEmail searches users whose public email matches
func (c *Client) UsersByEmail(ctx context.Context, cr Creds, email string) *dispatch.Future[SearchUsers] {
	q := url.Values{}
	q.Set("q", email+" in:email")
	q.Set("per_page", "5")
	return call[SearchUsers](ctx, c, cr, http.MethodGet, "/search/users", q, nil)
}

// ReviewRequests searches open pull requests awaiting login's review
func (c *Client) ReviewRequests(ctx context.Context, cr Creds, login string, perPage int) *dispatch.Future[SearchIssues] {
	if perPage <= 0 || perPage > 100 {
		perPage = 30
	}
	q := url.Values{}
	q.Set("q", fmt.Sprintf("is:pr is:open archived:false review-requested:%s", login))
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(perPage))
	return call[SearchIssues](ctx, c, cr, http.MethodGet, "/search/issues", q, nil)
}

// PullRequest fetches one pull request
func (c *Client) PullRequest(ctx context.Context, cr Creds, owner, repo string, number int) *dispatch.Future[PullRequest] {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", url.PathEscape(owner), url.PathEscape(repo), number)
	return call[PullRequest](ctx, c, cr, http.MethodGet, path, nil, nil)
}

// CreateReview submits a review on a pull request
func (c *Client) CreateReview(ctx context.Context, cr Creds, owner, repo string, number int, in ReviewInput) *dispatch.Future[Review] {
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", url.PathEscape(owner), url.PathEscape(repo), number)
	return call[Review](ctx, c, cr, http.MethodPost, path, nil, in)
}

// RepoFromURL splits an API repository url into owner and name
// e.g. https://api.github.com/repos/octo/hello -> octo, hello
func RepoFromURL(repositoryURL string) (owner, repo string, err error) {
	u, err := url.Parse(repositoryURL)
	if err != nil {
		return "", "", perr.Wrapf(err, perr.ErrorCodeUnknown, "github repository url %q", repositoryURL)
	}
	_, rest, ok := strings.Cut(u.Path, "/repos/")
	if !ok {
		return "", "", perr.Newf(perr.ErrorCodeUnknown, "github repository url %q has no /repos/ segment", repositoryURL)
	}
	owner, repo, ok = strings.Cut(strings.Trim(rest, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", perr.Newf(perr.ErrorCodeUnknown, "github repository url %q is not owner/repo", repositoryURL)
	}
	return owner, repo, nil
}
