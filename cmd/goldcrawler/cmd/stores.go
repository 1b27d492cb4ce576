package cmd

import (
	"fmt"

	"github.com/trogers1052/gold-quote-crawler/internal/config"
	"github.com/trogers1052/gold-quote-crawler/internal/database"
	"github.com/trogers1052/gold-quote-crawler/internal/reconcile"
	"github.com/trogers1052/gold-quote-crawler/internal/sqlitestore"
	"github.com/trogers1052/gold-quote-crawler/internal/supabase"
)

// Store backends selectable with STORE_BACKEND or --backend
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendNone     = "none"
)

func noopClose() error { return nil }

// openStore returns the quote store for backend. A nil store means sync is
// disabled.
func openStore(backend string, cfg *config.Config) (reconcile.QuoteStore, func() error, error) {
	switch backend {
	case BackendSupabase:
		client, err := supabase.New(cfg.Supabase)
		if err != nil {
			return nil, nil, err
		}
		return client, noopClose, nil
	case BackendPostgres:
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, db.Close, nil
	case BackendSQLite:
		store, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case BackendNone, "":
		return nil, noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
