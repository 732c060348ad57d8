package cli

import (
	"context"
	"fmt"

	"github.com/TriAiAdmin/LLM-automation/internal/normalizer"
	"github.com/TriAiAdmin/LLM-automation/internal/reference"
	"github.com/TriAiAdmin/LLM-automation/internal/repository"
	"github.com/TriAiAdmin/LLM-automation/pkg/database"
	"go.uber.org/zap"
)

// buildEngine loads the reference tables and fails before any document is
// touched when one of them is unusable
func (a *app) buildEngine() (*normalizer.Engine, normalizer.Tables, error) {
	tables, err := reference.LoadAll(a.cfg.ReferencePaths(), a.logger)
	if err != nil {
		return nil, normalizer.Tables{}, err
	}
	engine, err := normalizer.NewEngine(tables, a.cfg.EngineOptions(), a.logger)
	if err != nil {
		return nil, normalizer.Tables{}, err
	}
	return engine, tables, nil
}

// openStore opens and migrates the results database
func (a *app) openStore(ctx context.Context) (*repository.ResultStore, func(), error) {
	db, err := database.New(database.Config{
		Path:            a.cfg.Database.Path,
		MaxOpenConns:    a.cfg.Database.MaxOpenConns,
		MaxIdleConns:    a.cfg.Database.MaxIdleConns,
		ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
	}, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := repository.Migrate(ctx, db, a.logger); err != nil {
		db.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			a.logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	return repository.NewResultStore(db, a.logger), closeFn, nil
}
