package credentials

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/dmitrijs2005/mcpanel/internal/dbx"
)

type sqliteStore struct {
	db      *sql.DB
	ownsDB  bool
	ttl     time.Duration
	now     func() time.Time
	newRepo func(dbx.DBTX) metadata.Repository
}

// NewSQLite keeps the credential in the metadata table of db, which must be
// migrated already. When ownsDB is set, Close closes db.
func NewSQLite(db *sql.DB, ttl time.Duration, ownsDB bool) Store {
	s := &sqliteStore{db: db, ownsDB: ownsDB, ttl: ttl, now: time.Now}
	s.newRepo = func(q dbx.DBTX) metadata.Repository {
		return metadata.NewSQLiteRepository(q).WithClock(s.now)
	}
	return s
}

func (s *sqliteStore) Get(ctx context.Context) (*Credential, error) {
	e, err := s.newRepo(s.db).Get(ctx, common.CredentialSlot)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if e == nil {
		return nil, nil
	}
	return &Credential{Token: string(e.Value), ExpiresAt: e.ExpiresAt}, nil
}

func (s *sqliteStore) Set(ctx context.Context, c Credential) error {
	c = prepare(c, s.now(), s.ttl)

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if _, err := repo.PurgeExpired(ctx); err != nil {
			return err
		}
		return repo.Set(ctx, common.CredentialSlot, metadata.Entry{
			Value:     []byte(c.Token),
			ExpiresAt: c.ExpiresAt,
		})
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if err := s.newRepo(s.db).Delete(ctx, common.CredentialSlot); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
