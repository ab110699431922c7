package cli

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/router"
)

// Open navigates to route through the guard and renders the view landed on.
func (a *App) Open(ctx context.Context, route string) error {
	landed := a.core.Router.Navigate(ctx, route)
	if landed != route {
		printlnFn(fmt.Sprintf("%s needs a session, showing %s", route, landed))
	}
	a.render(ctx, landed)
	return nil
}

// serverIDFromRoute returns the id of a server detail route.
func serverIDFromRoute(route string) (string, bool) {
	rest, ok := strings.CutPrefix(route, router.Servers+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

func (a *App) render(ctx context.Context, route string) {
	switch route {
	case router.Login:
		printlnFn("Sign in with 'login' or create an account with 'register'.")
	case router.Register:
		printlnFn("Create an account with 'register'.")
	case router.Dashboard:
		a.renderDashboard(ctx)
	case router.Servers:
		a.renderServers(ctx)
	case router.Templates:
		a.renderTemplates(ctx)
	case router.Account:
		a.renderAccount()
	default:
		if id, ok := serverIDFromRoute(route); ok {
			a.renderServer(ctx, id)
			return
		}
		printlnFn("Nothing to show at", route)
	}
}

func (a *App) renderDashboard(ctx context.Context) {
	d := a.core.Dashboard
	if err := d.FetchDashboardData(ctx); err != nil {
		printlnFn("Some dashboard data could not be loaded:", err)
	}

	if s := d.Stats().Current(); s != nil {
		printlnFn(fmt.Sprintf("Servers: %d/%d online  Players: %d/%d  Health: %.0f%%",
			s.OnlineServers, s.TotalServers, s.TotalPlayers, s.MaxPlayers, s.SystemHealth))

		statuses := make([]string, 0, len(s.ServerStatusDist))
		for status := range s.ServerStatusDist {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			printlnFn(fmt.Sprintf("  %-10s %d", status, s.ServerStatusDist[status]))
		}
	} else {
		printlnFn("Dashboard statistics unavailable.")
	}

	events := d.Events().List()
	if len(events) == 0 {
		return
	}
	printlnFn("Recent events:")
	for _, e := range events {
		printlnFn(fmt.Sprintf("  %s [%s] %s", e.CreatedAt, e.Level, e.Message))
	}
}

func formatServer(s models.Server) string {
	return fmt.Sprintf("%-12s %-20s %-9s %d/%d players  %s:%d",
		s.ID, s.Name, s.Status, s.Players.Current, s.Players.Max, s.IPAddress, s.Port)
}

func (a *App) renderServers(ctx context.Context) {
	servers := a.core.Servers
	servers.FetchServers(ctx)

	list := servers.Store().List()
	if len(list) == 0 {
		printlnFn("No servers.")
		return
	}
	for _, s := range list {
		printlnFn(formatServer(s))
	}
}

func (a *App) renderServer(ctx context.Context, id string) {
	s := a.core.Servers.FetchServerByID(ctx, id)
	if s == nil {
		printlnFn("Server not found:", id)
		return
	}

	printlnFn(formatServer(*s))
	printlnFn(fmt.Sprintf("  Minecraft %s, Java %s", s.MinecraftVersion, s.JavaVersion))
	if s.Modpack != nil {
		printlnFn(fmt.Sprintf("  Modpack %s %s", s.Modpack.Name, s.Modpack.Version))
	}
	printlnFn(fmt.Sprintf("  CPU %.1f%%  RAM %.1f%%  Storage %.1f%%", s.Resources.CPU, s.Resources.RAM, s.Resources.Storage))

	a.core.Backups.FetchBackups(ctx, id)
	a.core.Schedules.FetchSchedules(ctx, id)

	backups := a.core.Backups.Store().List()
	if a.core.Backups.Store().Scope() != id {
		backups = nil
	}
	printlnFn(fmt.Sprintf("Backups (%d):", len(backups)))
	for _, b := range backups {
		printlnFn(fmt.Sprintf("  %-12s %-20s %d bytes  %s", b.ID, b.Name, b.Size, b.CreatedAt))
	}

	schedules := a.core.Schedules.Store().List()
	if a.core.Schedules.Store().Scope() != id {
		schedules = nil
	}
	printlnFn(fmt.Sprintf("Schedules (%d):", len(schedules)))
	for _, sc := range schedules {
		state := "paused"
		if sc.IsActive {
			state = "active"
		}
		printlnFn(fmt.Sprintf("  %-12s %-20s %-15s %s %s", sc.ID, sc.Name, sc.CronExpression, sc.TaskType, state))
	}
}

func (a *App) renderTemplates(ctx context.Context) {
	templates := a.core.Templates
	templates.FetchTemplates(ctx)

	list := templates.Store().List()
	if len(list) == 0 {
		printlnFn("No templates.")
		return
	}
	for _, t := range list {
		printlnFn(fmt.Sprintf("%-12s %-20s Minecraft %s  %s", t.ID, t.Name, t.MinecraftVersion, t.Description))
	}
}

func (a *App) renderAccount() {
	u := a.core.Session.User()
	if u == nil {
		printlnFn("Not signed in.")
		return
	}
	printlnFn(fmt.Sprintf("%s <%s>  id %s  member since %s", u.Username, u.Email, u.ID, u.CreatedAt))
}
