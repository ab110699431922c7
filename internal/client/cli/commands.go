package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/router"
	"github.com/dmitrijs2005/mcpanel/internal/client/services"
	"github.com/dmitrijs2005/mcpanel/internal/filex"
)

func (a *App) Act(ctx context.Context, id string, action models.ServerAction) error {
	if err := a.core.Servers.PerformAction(ctx, id, action); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("%s requested for %s.", action, id))
	return nil
}

func (a *App) Kick(ctx context.Context, id, player, reason string) error {
	if err := a.core.Servers.KickPlayer(ctx, id, player, reason); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Kicked %s from %s.", player, id))
	return nil
}

func (a *App) CreateServer(ctx context.Context, name, templateID string) error {
	s, err := a.core.Servers.CreateServer(ctx, name, templateID)
	if err != nil {
		return err
	}
	printlnFn("Created", formatServer(*s))
	return nil
}

// Upload creates a server from a local modpack archive.
func (a *App) Upload(ctx context.Context, name, path string) error {
	f, err := filex.OpenRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	java, err := getSimpleText(a.reader, "Java version [17]", a.out)
	if err != nil {
		return err
	}
	if java == "" {
		java = "17"
	}
	mem, err := getSimpleText(a.reader, "Max memory in MB [2048]", a.out)
	if err != nil {
		return err
	}
	maxMemory := 2048
	if mem != "" {
		if maxMemory, err = strconv.Atoi(mem); err != nil || maxMemory <= 0 {
			return fmt.Errorf("invalid memory size %q", mem)
		}
	}

	s, err := a.core.Servers.CreateServerFromUpload(ctx, services.UploadRequest{
		Name:        name,
		JavaVersion: java,
		MaxMemoryMB: maxMemory,
		Filename:    filepath.Base(path),
		File:        f,
	})
	if err != nil {
		return err
	}
	printlnFn("Created", formatServer(*s))
	return nil
}

// DeleteServer leaves the detail view of a deleted server for the list.
func (a *App) DeleteServer(ctx context.Context, id string) error {
	if err := a.core.Servers.DeleteServer(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted server", id)

	if cur, ok := serverIDFromRoute(a.core.Router.Current()); ok && cur == id {
		return a.Open(ctx, router.Servers)
	}
	return nil
}

// Backup and Restore finish on the backend later; the backup list refreshes
// by itself once the job has had time to complete.
func (a *App) Backup(ctx context.Context, id, name string) error {
	if err := a.core.Backups.CreateBackup(ctx, id, name); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Backup of %s started.", id))
	return nil
}

func (a *App) Restore(ctx context.Context, id, backupID string) error {
	if err := a.core.Backups.RestoreBackup(ctx, id, backupID); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Restore of %s from %s started.", id, backupID))
	return nil
}

func (a *App) DeleteBackup(ctx context.Context, id, backupID string) error {
	if err := a.core.Backups.DeleteBackup(ctx, id, backupID); err != nil {
		return err
	}
	printlnFn("Deleted backup", backupID)
	return nil
}

func (a *App) ShowFile(ctx context.Context, id, path string) error {
	content, err := a.core.Servers.FetchFileContent(ctx, id, path)
	if err != nil {
		return err
	}
	printlnFn(content)
	return nil
}

// EditFile shows the current content of a server file and replaces it with
// what the user types.
func (a *App) EditFile(ctx context.Context, id, path string) error {
	if err := a.ShowFile(ctx, id, path); err != nil {
		return err
	}

	content, err := getMultiline(a.reader, "Enter the new content", a.out)
	if err != nil {
		return err
	}
	if err := a.core.Servers.UpdateFileContent(ctx, id, path, content); err != nil {
		return err
	}
	printlnFn("Saved", path)
	return nil
}

// UpdateProfile changes the username and email; empty answers keep the
// current values.
func (a *App) UpdateProfile(ctx context.Context) error {
	u := a.core.Session.User()
	if u == nil {
		return errNotSignedIn
	}

	username, err := getSimpleText(a.reader, fmt.Sprintf("Username [%s]", u.Username), a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", u.Email), a.out)
	if err != nil {
		return err
	}

	upd := models.UserUpdate{Username: u.Username, Email: u.Email}
	if username != "" {
		upd.Username = username
	}
	if email != "" {
		upd.Email = email
	}
	if err := a.core.Session.UpdateUser(ctx, upd); err != nil {
		return err
	}
	a.renderAccount()
	return nil
}

// ShowSettings loads the server (unless it is already the current one) and
// prints its settings sorted by key.
func (a *App) ShowSettings(ctx context.Context, id string) error {
	servers := a.core.Servers
	if cur := servers.Store().Current(); cur == nil || cur.ID != id {
		if servers.FetchServerByID(ctx, id) == nil {
			return fmt.Errorf("server %s not found", id)
		}
	}
	servers.FetchSettings(ctx, id)

	cur := servers.Store().Current()
	if cur == nil || cur.ID != id || len(cur.Settings) == 0 {
		printlnFn("No settings.")
		return nil
	}
	keys := make([]string, 0, len(cur.Settings))
	for k := range cur.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printlnFn(fmt.Sprintf("  %-24s %v", k, cur.Settings[k]))
	}
	return nil
}

// settingValue types a value typed at the prompt: booleans and integers are
// sent as such, anything else as a string.
func settingValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func (a *App) SetSetting(ctx context.Context, id, key, value string) error {
	if err := a.core.Servers.SaveSettings(ctx, id, map[string]any{key: settingValue(value)}); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Saved %s for %s.", key, id))
	return nil
}

// AddSchedule creates an active schedule. The backend validates cron.
func (a *App) AddSchedule(ctx context.Context, serverID, name, taskType, cron string) error {
	err := a.core.Schedules.SaveSchedule(ctx, models.Schedule{
		ServerID:       serverID,
		Name:           name,
		TaskType:       taskType,
		CronExpression: cron,
		IsActive:       true,
	})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Scheduled %s on %s (%s).", name, serverID, cron))
	return nil
}

// ToggleSchedule pauses or resumes a schedule, loading the server's
// schedules first when another server's are cached.
func (a *App) ToggleSchedule(ctx context.Context, serverID, scheduleID string, active bool) error {
	schedules := a.core.Schedules
	if schedules.Store().Scope() != serverID {
		schedules.FetchSchedules(ctx, serverID)
	}
	sc, ok := schedules.Store().Get(scheduleID)
	if !ok || schedules.Store().Scope() != serverID {
		return fmt.Errorf("schedule %s not found on %s", scheduleID, serverID)
	}

	sc.IsActive = active
	if err := schedules.SaveSchedule(ctx, sc); err != nil {
		return err
	}
	state := "Paused"
	if active {
		state = "Resumed"
	}
	printlnFn(fmt.Sprintf("%s schedule %s.", state, sc.Name))
	return nil
}

func (a *App) DeleteSchedule(ctx context.Context, serverID, scheduleID string) error {
	if err := a.core.Schedules.DeleteSchedule(ctx, serverID, scheduleID); err != nil {
		return err
	}
	printlnFn("Deleted schedule", scheduleID)
	return nil
}

func (a *App) AddTemplate(ctx context.Context, name, minecraftVersion, description string) error {
	err := a.core.Templates.SaveTemplate(ctx, models.Template{
		Name:             name,
		Description:      description,
		MinecraftVersion: minecraftVersion,
		ServerType:       models.ServerTypeVanilla,
	})
	if err != nil {
		return err
	}
	printlnFn("Saved template", name)
	return nil
}

func (a *App) DeleteTemplate(ctx context.Context, id string) error {
	if err := a.core.Templates.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted template", id)
	return nil
}
