// Package module wires the GitHub pull request connector into the module kit
package module

import (
	"context"
	"net/http"

	gh "hubconnect/internal/adapters/github"
	"hubconnect/internal/core/card"
	"hubconnect/internal/core/dispatch"
	modkit "hubconnect/internal/modkit"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/modkit/httpkit"
	"hubconnect/internal/platform/logger"
	str "hubconnect/internal/platform/strings"

	"hubconnect/internal/services/github/assets"
	"hubconnect/internal/services/github/domain"
	ghhttp "hubconnect/internal/services/github/http"
	"hubconnect/internal/services/github/service"
)

// ConnectorType scopes every card and action id this connector mints
const ConnectorType = "github-pr"

// Options tunes the module beyond the shared deps
type Options struct {
	// Client overrides the REST client, mostly for tests
	Client  domain.GitHub
	PerUser int
}

// Module implements modkit.Module and connkit.Connector
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	svc *service.Service
}

var (
	_ modkit.Module     = (*Module)(nil)
	_ connkit.Connector = (*Module)(nil)
)

// New constructs the connector; deps.Kit and deps.Dispatcher are required
func New(deps modkit.Deps, o Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("github"),
	}, opts...)...)

	client := o.Client
	if client == nil {
		client = gh.NewClient(deps.Dispatcher)
	}
	asm := &card.Assembler{
		Connector: ConnectorType,
		Text:      deps.Kit.Catalog,
		Log:       logger.Named("card"),
	}

	return &Module{
		deps:   deps,
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    service.New(client, asm, deps.Dispatcher.Executor(), service.Options{PerUser: o.PerUser}),
	}
}

// MountRoutes mounts the connector contract at the module prefix, or the root when unset
func (m *Module) MountRoutes(r httpkit.Router) {
	if m.prefix == "" {
		r.Group(func(g httpkit.Router) {
			g.Use(m.mws...)
			m.deps.Kit.Mount(g, m)
		})
		return
	}
	httpkit.MountUnder(r, str.MustPrefix(m.prefix), m.mws, func(sub httpkit.Router) {
		m.deps.Kit.Mount(sub, m)
	})
}

// Name implements modkit.Module and connkit.Connector
func (m *Module) Name() string { return str.MustString(m.name, "github") }

// Ports implements modkit.Module
func (m *Module) Ports() any { return m.svc }

// Discovery implements connkit.Connector
func (m *Module) Discovery() []byte { return assets.Discovery() }

// Cards implements connkit.Connector
func (m *Module) Cards(ctx context.Context, c connkit.Call, req connkit.CardRequest) *dispatch.Future[card.Response] {
	return m.svc.Cards(ctx, c, req)
}

// MountActions implements connkit.Connector
func (m *Module) MountActions(k *connkit.Kit, r httpkit.Router) {
	ghhttp.Register(k, r, m.svc)
}
