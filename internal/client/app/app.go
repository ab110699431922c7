// Package app builds the client context: one credential store, one request
// pipeline, the session, the router and every resource store, constructed
// once per process and handed out explicitly.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"

	evbus "github.com/asaskevich/EventBus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/mcpanel/internal/client/broadcast"
	"github.com/dmitrijs2005/mcpanel/internal/client/client"
	"github.com/dmitrijs2005/mcpanel/internal/client/config"
	"github.com/dmitrijs2005/mcpanel/internal/client/credentials"
	"github.com/dmitrijs2005/mcpanel/internal/client/jobs"
	"github.com/dmitrijs2005/mcpanel/internal/client/router"
	"github.com/dmitrijs2005/mcpanel/internal/client/services"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// Dependencies overrides parts of the context. Zero values are built from
// the configuration.
type Dependencies struct {
	Logger     logging.Logger
	HTTPClient *http.Client
	DB         *sql.DB
	Bus        evbus.Bus
}

type App struct {
	Config *config.Config
	Log    logging.Logger

	Credentials credentials.Store
	API         *client.Client
	Session     services.AuthService
	Router      *router.Router

	Servers   services.ServerService
	Backups   services.BackupService
	Schedules services.ScheduleService
	Templates services.TemplateService
	Dashboard services.DashboardService

	Notifier   *jobs.Notifier
	Reconciler *broadcast.Reconciler
	Feed       *broadcast.Feed

	cancels []func()
}

// New wires the client context for cfg.
func New(ctx context.Context, cfg *config.Config, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}

	log := deps.Logger
	if log == nil {
		log = logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	}

	creds, err := credentials.New(ctx, credentials.Config{
		Driver:       cfg.CredentialDriver,
		TTL:          cfg.TokenTTL,
		DatabasePath: cfg.DatabasePath,
		Redis: credentials.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
	}, credentials.Dependencies{DB: deps.DB})
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}

	a := &App{Config: cfg, Log: log, Credentials: creds}

	// The pipeline needs the session for 401s and the session needs the
	// pipeline for requests; the closure breaks the cycle.
	api, err := client.New(client.Options{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: deps.HTTPClient,
		Logger:     log,
	}, creds, func(ctx context.Context) { a.Session.Logout(ctx) })
	if err != nil {
		_ = creds.Close()
		return nil, fmt.Errorf("request pipeline: %w", err)
	}
	a.API = api

	a.Session = services.NewAuthService(api, creds, log)
	a.Router = router.New(a.Session, log)
	a.Session.SetNavigator(a.Router)

	notifier, err := jobs.New(deps.Bus, jobs.TopicBackupUpdated, log)
	if err != nil {
		_ = creds.Close()
		return nil, fmt.Errorf("job notifier: %w", err)
	}
	a.Notifier = notifier

	a.Servers = services.NewServerService(api, log)
	a.Backups = services.NewBackupService(api, notifier, cfg.BackupRefreshDelay, log)
	a.Schedules = services.NewScheduleService(api, log)
	a.Templates = services.NewTemplateService(api, log)
	a.Dashboard = services.NewDashboardService(api, log)

	a.cancels = append(a.cancels, a.Backups.OnBackupUpdate(a.refreshBackups))

	a.Reconciler = broadcast.NewReconciler(broadcast.DefaultQueueSize, log)
	a.Reconciler.Register("server", a.Servers)
	a.Reconciler.Register("backup", broadcast.StoreTarget(a.Backups.Store()))
	a.Reconciler.Register("schedule", broadcast.StoreTarget(a.Schedules.Store()))
	a.Reconciler.Register("template", broadcast.StoreTarget(a.Templates.Store()))

	if cfg.WSBaseURL != "" {
		a.Feed = broadcast.NewFeed(cfg.WSBaseURL, creds, a.Reconciler.Enqueue, cfg.WSReconnectDelay, log)
		// Logout and 401s both land on the login route after the
		// credential is cleared; the socket opened with it goes too.
		a.cancels = append(a.cancels, a.Router.Observe(func(_, to string) {
			if to == router.Login {
				a.Feed.Disconnect()
			}
		}))
	}

	return a, nil
}

// refreshBackups re-fetches the backup list once when it belongs to the
// signalled server. Signals for other servers are ignored.
func (a *App) refreshBackups(serverID string) {
	if a.Backups.Store().Scope() != serverID {
		return
	}
	a.Backups.FetchBackups(context.Background(), serverID)
}

// Run drives the broadcast reconciler and feed until ctx ends.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Reconciler.Run(ctx) })
	if a.Feed != nil {
		g.Go(func() error { return a.Feed.Run(ctx) })
	}
	return g.Wait()
}

// Close stops pending job signals and releases the credential store.
func (a *App) Close() error {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil

	return errors.Join(a.Notifier.Close(), a.Credentials.Close())
}
