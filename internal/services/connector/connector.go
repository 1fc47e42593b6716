// Package connector assembles a connector binary's HTTP surface from modules
package connector

import (
	"time"

	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/platform/config"
	"hubconnect/internal/platform/logger"
	phttp "hubconnect/internal/platform/net/http"
	"hubconnect/internal/platform/net/middleware"

	"hubconnect/internal/modkit"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/modkit/httpkit"

	githubmod "hubconnect/internal/services/github/module"
	metamod "hubconnect/internal/services/meta/module"
)

// Options are the connector options
type Options struct {
	Config     config.Conf
	Logger     *logger.Logger
	Service    string
	Dispatcher *dispatch.Dispatcher
	Kit        *connkit.Kit

	CORSOrigins    []string
	RequestTimeout time.Duration
	EnableProfiler bool

	// GitHub tunes the pull request connector
	GitHub githubmod.Options
}

// Mount mounts the common stack, meta endpoints and the GitHub connector onto r
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{
		Cfg:        opt.Config,
		Dispatcher: opt.Dispatcher,
		Kit:        opt.Kit,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	var locales middleware.LocaleMatcher
	if opt.Kit.Catalog != nil {
		locales = opt.Kit.Catalog
	}
	r.Use(httpkit.CommonStack(httpkit.StackOptions{
		Locales: locales,
		CORS:    middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins},
		Timeout: opt.RequestTimeout,
	})...)

	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	mods := []modkit.Module{
		metamod.New(deps, opt.Service),
		githubmod.New(deps, opt.GitHub),
	}
	for _, m := range mods {
		deps.Log.Debug().Str("module", m.Name()).Msg("mounting module")
		m.MountRoutes(r)
	}
}
