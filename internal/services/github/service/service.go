// Package service turns GitHub review requests into Hub cards and submits reviews
package service

import (
	"context"
	"slices"
	"strconv"

	gh "hubconnect/internal/adapters/github"
	"hubconnect/internal/core/card"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/platform/logger"
	"hubconnect/internal/services/github/domain"
)

// GroupLimit bounds the card group name
const GroupLimit = 140

// Options tunes the service
type Options struct {
	// PerUser caps the review requests fetched per login, default 30
	PerUser int
}

// Service is the GitHub pull request review connector
type Service struct {
	gh   domain.GitHub
	asm  *card.Assembler
	exec *dispatch.Executor
	opt  Options
}

// New creates a Service
func New(client domain.GitHub, asm *card.Assembler, exec *dispatch.Executor, opt Options) *Service {
	if opt.PerUser <= 0 {
		opt.PerUser = 30
	}
	return &Service{gh: client, asm: asm, exec: exec, opt: opt}
}

func creds(c connkit.Call) gh.Creds { return gh.Creds(c.Creds) }

// Cards produces one card per open pull request awaiting review by any of the
// request's users. Usernames are used as given, emails are resolved first
func (s *Service) Cards(ctx context.Context, c connkit.Call, req connkit.CardRequest) *dispatch.Future[card.Response] {
	logins := s.logins(ctx, c, req)
	perLogin := dispatch.Compose(ctx, logins, func(ctx context.Context, names []string, err error) *dispatch.Future[[][]card.Card] {
		if err != nil {
			return dispatch.Completed[[][]card.Card](s.exec, nil, err)
		}
		fs := make([]*dispatch.Future[[]card.Card], 0, len(names))
		for _, n := range names {
			fs = append(fs, s.cardsFor(ctx, c, n))
		}
		return dispatch.All(s.exec, fs...)
	})
	return dispatch.Then(ctx, perLogin, func(ctx context.Context, groups [][]card.Card, err error) (card.Response, error) {
		if err != nil {
			return card.Response{}, err
		}
		out := []card.Card{}
		seen := map[string]bool{}
		for _, g := range groups {
			for _, cd := range g {
				if seen[cd.ID] {
					continue
				}
				seen[cd.ID] = true
				out = append(out, cd)
			}
		}
		logger.C(ctx).Debug().Int("logins", len(groups)).Int("cards", len(out)).Msg("github cards assembled")
		return card.Response{Cards: out}, nil
	})
}

// logins resolves the request's tokens to distinct GitHub logins, in request order
func (s *Service) logins(ctx context.Context, c connkit.Call, req connkit.CardRequest) *dispatch.Future[[]string] {
	var fs []*dispatch.Future[[]string]
	for _, u := range req.Values(domain.TokenUsername) {
		fs = append(fs, dispatch.Completed(s.exec, []string{u}, nil))
	}
	for _, email := range req.Values(domain.TokenEmail) {
		fs = append(fs, dispatch.Then(ctx, s.gh.UsersByEmail(ctx, creds(c), email),
			func(ctx context.Context, res gh.SearchUsers, err error) ([]string, error) {
				if err != nil {
					return nil, err
				}
				if len(res.Items) == 0 {
					logger.C(ctx).Debug().Str("email", email).Msg("no github user for email")
					return nil, nil
				}
				return []string{res.Items[0].Login}, nil
			}))
	}
	return dispatch.Then(ctx, dispatch.All(s.exec, fs...), func(_ context.Context, lists [][]string, err error) ([]string, error) {
		if err != nil {
			return nil, err
		}
		var out []string
		for _, l := range lists {
			for _, n := range l {
				if !slices.Contains(out, n) {
					out = append(out, n)
				}
			}
		}
		return out, nil
	})
}

// cardsFor fetches every pull request awaiting login's review and builds its card
func (s *Service) cardsFor(ctx context.Context, c connkit.Call, login string) *dispatch.Future[[]card.Card] {
	search := s.gh.ReviewRequests(ctx, creds(c), login, s.opt.PerUser)
	return dispatch.Compose(ctx, search, func(ctx context.Context, res gh.SearchIssues, err error) *dispatch.Future[[]card.Card] {
		if err != nil {
			return dispatch.Completed[[]card.Card](s.exec, nil, err)
		}
		var fs []*dispatch.Future[card.Card]
		for _, it := range res.Items {
			if it.PullRequest == nil {
				continue
			}
			owner, repo, err := gh.RepoFromURL(it.RepositoryURL)
			if err != nil {
				logger.C(ctx).Warn().Err(err).Int64("issue_id", it.ID).Msg("skipping search hit")
				continue
			}
			t := domain.Target{Owner: owner, Repo: repo, Number: it.Number}
			fs = append(fs, dispatch.Then(ctx, s.gh.PullRequest(ctx, creds(c), owner, repo, it.Number),
				func(_ context.Context, pr gh.PullRequest, err error) (card.Card, error) {
					if err != nil {
						return card.Card{}, err
					}
					return s.card(c, t, pr)
				}))
		}
		return dispatch.All(s.exec, fs...)
	})
}

// card renders one pull request
func (s *Service) card(c connkit.Call, t domain.Target, pr gh.PullRequest) (card.Card, error) {
	b := s.asm.Card(c.Locale, t.Owner, t.Repo, strconv.Itoa(t.Number))
	b.Name(b.Bounded("github.pr.group", t.FullName(), GroupLimit)).
		HeaderKey("github.pr.header", pr.Title).
		Subtitle(b.Text("github.pr.subtitle", pr.Number, pr.User.Login)).
		DescriptionKey("github.pr.description", pr.User.Login, t.FullName())
	b.Block("",
		b.RowKey("github.pr.repository", t.FullName()),
		b.RowKey("github.pr.author", pr.User.Login),
		b.RowKey("github.pr.changes", b.Text("github.pr.changes.value", pr.Additions, pr.Deletions, pr.ChangedFiles)),
		b.RowKey("github.pr.comments", strconv.Itoa(pr.Comments+pr.ReviewComments)),
	)
	if !pr.CreatedAt.IsZero() {
		b.CreatedAt(pr.CreatedAt)
	}

	base := c.ActionURL(t.Path())
	actions := []*card.ActionBuilder{
		b.Action(domain.ActionApprove).
			LabelKey("github.pr.approve").
			URL(base + "/" + domain.ActionApprove).
			Primary().
			RemoveOnCompletion(),
		b.Action(domain.ActionRequestChanges).
			LabelKey("github.pr.request-changes").
			URL(base+"/"+domain.ActionRequestChanges).
			UserInput(&card.UserInput{ID: "reason", Type: card.InputTextarea, MinLength: 1}, "github.pr.request-changes").
			RemoveOnCompletion(),
		b.Action(domain.ActionComment).
			LabelKey("github.pr.comment").
			URL(base+"/"+domain.ActionComment).
			UserInput(&card.UserInput{ID: "message", Type: card.InputTextarea, MinLength: 1}, "github.pr.comment"),
	}
	if pr.HTMLURL != "" {
		actions = append(actions, b.Action(domain.ActionOpen).LabelKey("github.pr.open").OpenIn(pr.HTMLURL))
	}
	for _, ab := range actions {
		a, err := ab.Build()
		if err != nil {
			return card.Card{}, err
		}
		b.AddAction(a)
	}
	return b.Build()
}
