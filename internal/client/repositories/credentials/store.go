// Package credentials persists the credential set across restarts.
//
// The whole set lives under a single metadata key as one JSON record, so it
// is always written and removed as a unit.
package credentials

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophchat/internal/client/models"
	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
)

// Key is the metadata key of the persisted record.
const Key = "userHeaders"

// legacyKeys were written one field per key by older clients.
var legacyKeys = []string{
	common.HeaderAccessToken,
	common.HeaderUID,
	common.HeaderClient,
	common.HeaderExpiry,
}

var ErrCorruptRecord = errors.New("corrupt credential record")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the persisted set, or nil when nothing usable is stored.
func (s *Store) Load(ctx context.Context) (*models.Credentials, error) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var c models.Credentials
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if !c.Valid() {
		return nil, nil
	}
	return &c, nil
}

// Save replaces the persisted record.
func (s *Store) Save(ctx context.Context, c models.Credentials) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := metadata.NewSQLiteRepository(s.db).Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear removes the record together with any legacy per-field keys.
func (s *Store) Clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		keys := append([]string{Key}, legacyKeys...)
		return metadata.NewSQLiteRepository(tx).Delete(ctx, keys...)
	})
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Purge wipes every local key, including state written by other
// components, and reports how many entries were removed.
func (s *Store) Purge(ctx context.Context) (int, error) {
	var n int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		all, err := repo.List(ctx)
		if err != nil {
			return err
		}
		n = len(all)
		return repo.Clear(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("purge local data: %w", err)
	}
	return n, nil
}
