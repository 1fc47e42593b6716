package github

import "time"

// User is a partial GitHub user document
type User struct {
	ID      int64  `json:"id"`
	Login   string `json:"login"`
	Type    string `json:"type"`
	HTMLURL string `json:"html_url"`
	Avatar  string `json:"avatar_url"`
}

// SearchIssues is the /search/issues result page
type SearchIssues struct {
	TotalCount        int     `json:"total_count"`
	IncompleteResults bool    `json:"incomplete_results"`
	Items             []Issue `json:"items"`
}

// SearchUsers is the /search/users result page
type SearchUsers struct {
	TotalCount int    `json:"total_count"`
	Items      []User `json:"items"`
}

// Issue is a search hit; pull requests carry a non-nil PullRequest link
type Issue struct {
	ID            int64            `json:"id"`
	Number        int              `json:"number"`
	Title         string           `json:"title"`
	State         string           `json:"state"`
	HTMLURL       string           `json:"html_url"`
	RepositoryURL string           `json:"repository_url"`
	User          User             `json:"user"`
	Comments      int              `json:"comments"`
	PullRequest   *PullRequestLink `json:"pull_request"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PullRequestLink points from an issue to its pull request
type PullRequestLink struct {
	URL     string `json:"url"`
	HTMLURL string `json:"html_url"`
}

// PullRequest is a partial pull request document
type PullRequest struct {
	ID             int64     `json:"id"`
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	State          string    `json:"state"`
	Draft          bool      `json:"draft"`
	Merged         bool      `json:"merged"`
	HTMLURL        string    `json:"html_url"`
	User           User      `json:"user"`
	Additions      int       `json:"additions"`
	Deletions      int       `json:"deletions"`
	ChangedFiles   int       `json:"changed_files"`
	Comments       int       `json:"comments"`
	ReviewComments int       `json:"review_comments"`
	Head           Ref       `json:"head"`
	Base           Ref       `json:"base"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Ref is a branch tip on either side of a pull request
type Ref struct {
	Ref  string `json:"ref"`
	SHA  string `json:"sha"`
	Repo Repo   `json:"repo"`
}

// Repo is a partial repository document
type Repo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// ReviewEvent is the verdict of a submitted review
type ReviewEvent string

const (
	// ReviewApprove approves the pull request
	ReviewApprove ReviewEvent = "APPROVE"

	// ReviewRequestChanges blocks the pull request until addressed
	ReviewRequestChanges ReviewEvent = "REQUEST_CHANGES"

	// ReviewComment leaves a review without a verdict
	ReviewComment ReviewEvent = "COMMENT"
)

// ReviewInput is the body of POST /repos/{owner}/{repo}/pulls/{number}/reviews
type ReviewInput struct {
	Body     string      `json:"body,omitempty"`
	Event    ReviewEvent `json:"event"`
	CommitID string      `json:"commit_id,omitempty"`
}

// Review is a submitted review
type Review struct {
	ID          int64     `json:"id"`
	State       string    `json:"state"`
	Body        string    `json:"body"`
	HTMLURL     string    `json:"html_url"`
	User        User      `json:"user"`
	SubmittedAt time.Time `json:"submitted_at"`
}
