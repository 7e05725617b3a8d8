package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"discmatch/internal/album"
	"discmatch/internal/config"
	"discmatch/internal/database"
	"discmatch/internal/insight"
	"discmatch/internal/logging"
	"discmatch/internal/provider"
	"discmatch/internal/provider/discogs"
)

// errMissingToken blocks any action that would hit the Discogs API without
// a configured token.
var errMissingToken = errors.New(
	"discogs token not configured (set discogs.token in the config file or DM_DISCOGS_TOKEN)")

// appContext lazily wires configuration, logging and the database for
// commands. Commands that never touch the store or the network stay cheap.
type appContext struct {
	configFlag *string

	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	db        *sql.DB
}

func newAppContext(configFlag *string) *appContext {
	return &appContext{configFlag: configFlag}
}

// ensureConfig loads config and logging once per invocation.
func (a *appContext) ensureConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	path := *a.configFlag
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	logger, closer := logging.New(logging.Config{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.Logging.FilePath,
	})
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	a.logCloser = closer
	return cfg, nil
}

// openStore opens the database, runs migrations, and returns the entry store.
func (a *appContext) openStore() (*album.Store, error) {
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	if a.db == nil {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
	}
	return album.NewStore(a.db), nil
}

// discogsClient builds the catalog client, failing when no token is set.
func (a *appContext) discogsClient() (*discogs.Client, error) {
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Discogs.Token == "" {
		return nil, errMissingToken
	}
	return discogs.New(cfg.Discogs.Token, provider.NewRateLimiterMap(), a.logger), nil
}

// annotator returns the insight adapter, or nil when annotation is disabled.
func (a *appContext) annotator() (*insightAnnotator, error) {
	cfg, err := a.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Insight.APIKey == "" {
		return nil, nil
	}
	client := insight.NewClient(insight.Config{
		APIKey:         cfg.Insight.APIKey,
		BaseURL:        cfg.Insight.BaseURL,
		Model:          cfg.Insight.Model,
		TimeoutSeconds: cfg.Insight.TimeoutSeconds,
	})
	return &insightAnnotator{client: client}, nil
}

// close releases resources held for the invocation.
func (a *appContext) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// insightAnnotator adapts the insight client to the scan driver's interface.
type insightAnnotator struct {
	client *insight.Client
}

func (i *insightAnnotator) Annotate(ctx context.Context, folderName string, rel provider.Release) (string, error) {
	return i.client.Annotate(ctx, folderName, insight.ReleaseFacts{
		Title:   rel.Title,
		Year:    rel.Year,
		Labels:  rel.Labels,
		Genres:  rel.Genres,
		Styles:  rel.Styles,
		Country: rel.Country,
	})
}

// libraryRoot resolves the scan root from flag or config.
func (a *appContext) libraryRoot(flagValue string) (string, error) {
	cfg, err := a.ensureConfig()
	if err != nil {
		return "", err
	}
	root := flagValue
	if root == "" {
		root = cfg.Library.Root
	}
	if root == "" {
		return "", fmt.Errorf("library root not set (use --root or library.root in the config file)")
	}
	return root, nil
}
