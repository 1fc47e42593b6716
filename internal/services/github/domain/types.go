// Package domain holds the GitHub connector's request and result types
package domain

import (
	"fmt"
	"strconv"
	"strings"

	perr "hubconnect/internal/platform/errors"
)

// Card request token names
const (
	TokenEmail    = "email"
	TokenUsername = "username"
)

// Action kinds, also the last path segment of each action route
const (
	ActionApprove        = "approve"
	ActionRequestChanges = "request-changes"
	ActionComment        = "comment"
	ActionOpen           = "open"
)

// Target identifies one pull request
type Target struct {
	Owner  string
	Repo   string
	Number int
}

// ParseTarget validates the route parameters of an action
func ParseTarget(owner, repo, number string) (Target, error) {
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return Target{}, perr.InvalidArgf("owner and repo are required")
	}
	n, err := strconv.Atoi(number)
	if err != nil || n <= 0 {
		return Target{}, perr.InvalidArgf("pull request number %q is invalid", number)
	}
	return Target{Owner: owner, Repo: repo, Number: n}, nil
}

// FullName renders owner/repo
func (t Target) FullName() string { return t.Owner + "/" + t.Repo }

// Path is the action path prefix for the pull request
func (t Target) Path() string { return fmt.Sprintf("/api/v1/%s/%s/%d", t.Owner, t.Repo, t.Number) }

// ApproveForm is the optional comment sent with an approval
type ApproveForm struct {
	Comment string `form:"comment" validate:"omitempty,max=65536"`
}

// RequestChangesForm carries the mandatory reason
type RequestChangesForm struct {
	Reason string `form:"reason" validate:"required,notblank,max=65536"`
}

// CommentForm carries the mandatory comment text
type CommentForm struct {
	Message string `form:"message" validate:"required,notblank,max=65536"`
}

// ReviewResult is the action response body
type ReviewResult struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
	URL   string `json:"url,omitempty"`
}
