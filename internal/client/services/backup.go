package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// Notifier publishes a key once after a delay. It cannot tell whether the
// backend job behind the key has finished.
type Notifier interface {
	NotifyLater(key string, delay time.Duration)
	OnNotify(fn func(key string)) (cancel func())
}

// BackupService manages the backups of one server at a time; the store's
// scope is the server whose backups it holds.
//
// Creating and restoring a backup finish in the background on the backend,
// so both only schedule a refresh signal for the server.
type BackupService interface {
	Store() *store.Store[models.Backup]

	FetchBackups(ctx context.Context, serverID string)
	CreateBackup(ctx context.Context, serverID, name string) error
	DeleteBackup(ctx context.Context, serverID, backupID string) error
	RestoreBackup(ctx context.Context, serverID, backupID string) error

	// OnBackupUpdate subscribes to the refresh signals.
	OnBackupUpdate(fn func(serverID string)) (cancel func())
}

type backupService struct {
	api      API
	store    *store.Store[models.Backup]
	notifier Notifier
	delay    time.Duration
	log      logging.Logger
}

func NewBackupService(api API, notifier Notifier, refreshDelay time.Duration, log logging.Logger) BackupService {
	return &backupService{
		api:      api,
		store:    store.New[models.Backup]("backups"),
		notifier: notifier,
		delay:    refreshDelay,
		log:      orDiscard(log).With("component", "backups"),
	}
}

func (b *backupService) Store() *store.Store[models.Backup] { return b.store }

func backupsPath(serverID string) string {
	return "/servers/" + seg(serverID) + "/backups"
}

func (b *backupService) FetchBackups(ctx context.Context, serverID string) {
	done := b.store.Track(store.FlagList)
	defer done()

	var list []models.Backup
	if err := b.api.JSON(ctx, http.MethodGet, backupsPath(serverID), nil, &list); err != nil {
		b.log.Warn(ctx, "backup list fetch failed", "server", serverID, "error", err)
		return
	}
	b.store.ReplaceAll(serverID, list)
}

func (b *backupService) CreateBackup(ctx context.Context, serverID, name string) error {
	body := map[string]string{"name": name}
	if err := b.api.JSON(ctx, http.MethodPost, backupsPath(serverID), body, nil); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	b.notifier.NotifyLater(serverID, b.delay)
	return nil
}

func (b *backupService) DeleteBackup(ctx context.Context, serverID, backupID string) error {
	if err := b.api.JSON(ctx, http.MethodDelete, backupsPath(serverID)+"/"+seg(backupID), nil, nil); err != nil {
		return fmt.Errorf("delete backup %s: %w", backupID, err)
	}
	b.store.Remove(backupID)
	return nil
}

func (b *backupService) RestoreBackup(ctx context.Context, serverID, backupID string) error {
	if err := b.api.JSON(ctx, http.MethodPost, backupsPath(serverID)+"/"+seg(backupID)+"/restore", nil, nil); err != nil {
		return fmt.Errorf("restore backup %s: %w", backupID, err)
	}
	b.notifier.NotifyLater(serverID, b.delay)
	return nil
}

func (b *backupService) OnBackupUpdate(fn func(serverID string)) (cancel func()) {
	return b.notifier.OnNotify(fn)
}
