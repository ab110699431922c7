package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/router"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	UpdateProfile(ctx context.Context) error

	Open(ctx context.Context, route string) error

	Act(ctx context.Context, id string, action models.ServerAction) error
	Kick(ctx context.Context, id, player, reason string) error
	CreateServer(ctx context.Context, name, templateID string) error
	Upload(ctx context.Context, name, path string) error
	DeleteServer(ctx context.Context, id string) error

	Backup(ctx context.Context, id, name string) error
	Restore(ctx context.Context, id, backupID string) error
	DeleteBackup(ctx context.Context, id, backupID string) error

	ShowFile(ctx context.Context, id, path string) error
	EditFile(ctx context.Context, id, path string) error

	ShowSettings(ctx context.Context, id string) error
	SetSetting(ctx context.Context, id, key, value string) error

	AddSchedule(ctx context.Context, serverID, name, taskType, cron string) error
	ToggleSchedule(ctx context.Context, serverID, scheduleID string, active bool) error
	DeleteSchedule(ctx context.Context, serverID, scheduleID string) error

	AddTemplate(ctx context.Context, name, minecraftVersion, description string) error
	DeleteTemplate(ctx context.Context, id string) error
}

const (
	anonymousHelp = "Available commands: register, login, exit"
	signedInHelp  = "Available commands: open <route>, dashboard, servers, templates, account, server <id>, " +
		"start|stop|restart <id>, kick <id> <player> [reason], create <name> <templateId>, upload <name> <file>, rmserver <id>, " +
		"backup <id> <name>, restore <id> <backupId>, rmbackup <id> <backupId>, cat <id> <path>, edit <id> <path>, " +
		"settings <id>, set <id> <key> <value>, schedule <id> <name> <taskType> <cron>, pause|resume <id> <scheduleId>, " +
		"rmschedule <id> <scheduleId>, template <name> <minecraftVersion> [description], rmtemplate <templateId>, " +
		"profile, passwd, deleteaccount, logout, exit"
)

// usage lists commands with a fixed argument count.
var usage = map[string]struct {
	min  int
	text string
}{
	"open":     {1, "Usage: open <route>"},
	"server":   {1, "Usage: server <id>"},
	"start":    {1, "Usage: start <id>"},
	"stop":     {1, "Usage: stop <id>"},
	"restart":  {1, "Usage: restart <id>"},
	"kick":     {2, "Usage: kick <id> <player> [reason]"},
	"create":   {2, "Usage: create <name> <templateId>"},
	"upload":   {2, "Usage: upload <name> <file>"},
	"rmserver": {1, "Usage: rmserver <id>"},
	"backup":   {2, "Usage: backup <id> <name>"},
	"restore":  {2, "Usage: restore <id> <backupId>"},
	"rmbackup": {2, "Usage: rmbackup <id> <backupId>"},
	"cat":      {2, "Usage: cat <id> <path>"},
	"edit":     {2, "Usage: edit <id> <path>"},

	"settings":   {1, "Usage: settings <id>"},
	"set":        {3, "Usage: set <id> <key> <value>"},
	"schedule":   {4, "Usage: schedule <id> <name> <taskType> <cron>"},
	"pause":      {2, "Usage: pause <id> <scheduleId>"},
	"resume":     {2, "Usage: resume <id> <scheduleId>"},
	"rmschedule": {2, "Usage: rmschedule <id> <scheduleId>"},
	"template":   {2, "Usage: template <name> <minecraftVersion> [description]"},
	"rmtemplate": {1, "Usage: rmtemplate <templateId>"},
}

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// Errors returned by command handlers are reported and the loop goes on.
// Handlers for signed-in commands are still reached while anonymous: the
// route guard and the backend decide, not the prompt.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mcpanel %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if u, ok := usage[cmd]; ok && len(args) < u.min {
			printlnFn(u.text)
			continue
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn(signedInHelp)
			} else {
				printlnFn(anonymousHelp)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "profile":
			cmdErr = a.UpdateProfile(ctx)
		case "passwd":
			cmdErr = a.ChangePassword(ctx)
		case "deleteaccount":
			cmdErr = a.DeleteAccount(ctx)

		case "open":
			cmdErr = a.Open(ctx, args[0])
		case "dashboard":
			cmdErr = a.Open(ctx, router.Dashboard)
		case "servers":
			cmdErr = a.Open(ctx, router.Servers)
		case "templates":
			cmdErr = a.Open(ctx, router.Templates)
		case "account":
			cmdErr = a.Open(ctx, router.Account)
		case "server":
			cmdErr = a.Open(ctx, router.ServerDetail(args[0]))

		case "start", "stop", "restart":
			cmdErr = a.Act(ctx, args[0], models.ServerAction(cmd))
		case "kick":
			cmdErr = a.Kick(ctx, args[0], args[1], strings.Join(args[2:], " "))
		case "create":
			cmdErr = a.CreateServer(ctx, args[0], args[1])
		case "upload":
			cmdErr = a.Upload(ctx, args[0], args[1])
		case "rmserver":
			cmdErr = a.DeleteServer(ctx, args[0])

		case "backup":
			cmdErr = a.Backup(ctx, args[0], strings.Join(args[1:], " "))
		case "restore":
			cmdErr = a.Restore(ctx, args[0], args[1])
		case "rmbackup":
			cmdErr = a.DeleteBackup(ctx, args[0], args[1])

		case "cat":
			cmdErr = a.ShowFile(ctx, args[0], args[1])
		case "edit":
			cmdErr = a.EditFile(ctx, args[0], args[1])

		case "settings":
			cmdErr = a.ShowSettings(ctx, args[0])
		case "set":
			cmdErr = a.SetSetting(ctx, args[0], args[1], strings.Join(args[2:], " "))

		case "schedule":
			cmdErr = a.AddSchedule(ctx, args[0], args[1], args[2], strings.Join(args[3:], " "))
		case "pause", "resume":
			cmdErr = a.ToggleSchedule(ctx, args[0], args[1], cmd == "resume")
		case "rmschedule":
			cmdErr = a.DeleteSchedule(ctx, args[0], args[1])

		case "template":
			cmdErr = a.AddTemplate(ctx, args[0], args[1], strings.Join(args[2:], " "))
		case "rmtemplate":
			cmdErr = a.DeleteTemplate(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		if err != nil {
			return
		}
	}
}
