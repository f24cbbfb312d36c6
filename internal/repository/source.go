package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/query-params-practice/internal/config"
	"github.com/iliyamo/query-params-practice/internal/database"
)

// Open builds the catalog from the source named in cfg.  For the mysql
// source the connection is closed again once the tables are read.
func Open(ctx context.Context, cfg config.CatalogConfig, dbCfg config.DBConfig) (*Catalog, error) {
	switch cfg.Source {
	case "", "embedded":
		return LoadEmbedded()
	case "file":
		return LoadYAMLFile(cfg.File)
	case "mysql":
		if err := dbCfg.Validate(); err != nil {
			return nil, err
		}
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("open catalog database: %w", err)
		}
		defer db.Close()
		return LoadMySQL(ctx, db)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}
