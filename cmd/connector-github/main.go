// connector-github serves Hub cards for GitHub pull requests awaiting review
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hubconnect/internal/core/auth"
	"hubconnect/internal/core/dispatch"
	"hubconnect/internal/core/errtrans"
	"hubconnect/internal/core/i18n"
	"hubconnect/internal/core/version"
	"hubconnect/internal/modkit/connkit"
	"hubconnect/internal/platform/config"
	"hubconnect/internal/platform/logger"
	phttp "hubconnect/internal/platform/net/http"

	"hubconnect/internal/services/connector"
	"hubconnect/internal/services/github/assets"
	githubmod "hubconnect/internal/services/github/module"
)

const service = "connector-github"

func main() {
	// connector-scoped config (CONNECTOR_*)
	cfg := config.New().Prefix("CONNECTOR_")

	// bring up logging early
	l := logger.Get()
	l.Info().Interface("build", version.Info(service)).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := i18n.Load(assets.Messages(), assets.MessagesDir, cfg.MayString("DEFAULT_LOCALE", "en"))
	if err != nil {
		l.Panic().Err(err).Msg("message catalog failed to load")
	}

	d := dispatch.New(dispatch.Options{
		Workers:       cfg.MayInt("WORKERS", 4),
		Timeout:       cfg.MayDuration("TIMEOUT", 30*time.Second),
		MaxIdle:       cfg.MayDuration("MAX_IDLE", time.Minute),
		ReapEvery:     cfg.MayDuration("REAP_EVERY", 15*time.Second),
		UserAgent:     service + "/" + version.Info(service).Version,
		RatePerSecond: cfg.MayFloat64("RATE", 0),
		Burst:         cfg.MayInt("BURST", 0),
	})
	defer d.Close()

	skipAud := cfg.MayBool("SKIP_AUDIENCE", false)
	if skipAud {
		l.Warn().Msg("audience check disabled; never run like this outside local development")
	}

	kit := &connkit.Kit{
		Guard:          auth.Guard{Authorizer: auth.Authorizer{SkipAudience: skipAud}},
		Catalog:        cat,
		Errors:         errtrans.Translator{},
		DefaultBaseURL: cfg.MayString("BASE_URL", "https://api.github.com"),
	}

	// http server (reads CONNECTOR_PORT)
	srv := phttp.NewServer(cfg)

	connector.Mount(srv.Router(), connector.Options{
		Config:         cfg,
		Logger:         l,
		Service:        service,
		Dispatcher:     d,
		Kit:            kit,
		CORSOrigins:    cfg.MayCSV("CORS_ORIGINS", nil),
		RequestTimeout: cfg.MayDuration("REQUEST_TIMEOUT", 60*time.Second),
		EnableProfiler: cfg.MayBool("PROFILER", false),
		GitHub:         githubmod.Options{PerUser: cfg.MayInt("PER_USER", 30)},
	})

	// run until SIGINT/SIGTERM
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("stopped")
}
