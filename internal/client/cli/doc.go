// Package cli is the interactive mcpanel client.
//
// It builds the client context, starts the broadcast feed in the background
// and runs a read-eval-print loop. The loop is organised around routes: each
// route has a view that loads what it shows when it is opened, and the route
// guard decides whether a view may be opened at all.
//
// Anonymous commands:
//
//	help, login, register, exit
//
// Signed-in commands:
//
//	open <route>, dashboard, servers, templates, account, server <id>
//	start|stop|restart <id>, kick <id> <player> [reason]
//	create <name> <templateId>, upload <name> <file>, rmserver <id>
//	backup <id> <name>, restore <id> <backupId>, rmbackup <id> <backupId>
//	cat <id> <path>, edit <id> <path>
//	settings <id>, set <id> <key> <value>
//	schedule <id> <name> <taskType> <cron>, pause|resume <id> <scheduleId>, rmschedule <id> <scheduleId>
//	template <name> <minecraftVersion> [description], rmtemplate <templateId>
//	profile, passwd, deleteaccount, logout, exit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
