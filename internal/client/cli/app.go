package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mcpanel/internal/client/app"
	"github.com/dmitrijs2005/mcpanel/internal/client/config"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
)

type App struct {
	core   *app.App
	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the client context for c and binds the REPL to stdin/stdout.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	core, err := app.New(ctx, c, app.Dependencies{})
	if err != nil {
		return nil, err
	}
	return newApp(core, os.Stdin, os.Stdout), nil
}

func newApp(core *app.App, in io.Reader, out io.Writer) *App {
	return &App{core: core, reader: bufio.NewReader(in), out: out}
}

// Run opens the initial route and serves commands until the user exits or
// input ends. The client context is closed on return.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.core.Close(); err != nil {
			a.core.Log.Error(ctx, "shutdown", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.core.Run(ctx); err != nil {
			a.core.Log.Error(ctx, "background tasks stopped", "error", err)
		}
	}()

	stop := a.watch()
	defer stop()

	printlnFn("Welcome to mcpanel (type 'help' for commands)")
	a.render(ctx, a.core.Router.Start(ctx, ""))

	runREPL(ctx, a, a.status, a.reader)
}

// watch prints pushed changes as they land in the stores.
func (a *App) watch() (stop func()) {
	servers := a.core.Servers.Store()
	cancelServers := servers.Subscribe(func(c store.Change) {
		if c.Op != store.OpMerge {
			return
		}
		if s, ok := servers.Get(c.ID); ok {
			printlnFn(fmt.Sprintf("* %s is %s (%d/%d players)", s.Name, s.Status, s.Players.Current, s.Players.Max))
		}
	})

	backups := a.core.Backups.Store()
	cancelBackups := backups.Subscribe(func(c store.Change) {
		if c.Op == store.OpReplace {
			printlnFn(fmt.Sprintf("* backups of %s refreshed (%d)", backups.Scope(), backups.Len()))
		}
	})

	return func() {
		cancelServers()
		cancelBackups()
	}
}

func (a *App) status() string {
	s := a.core.Router.Current()
	if u := a.core.Session.User(); u != nil {
		s = u.Username + " " + s
	}
	return s
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.core.Session.IsAuthenticated(ctx)
}
