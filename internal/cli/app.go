package cli

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/logging"
	"github.com/idilsaglam/shoplist/internal/storage"
	"github.com/idilsaglam/shoplist/internal/storage/filekv"
	"github.com/idilsaglam/shoplist/internal/storage/memkv"
	"github.com/idilsaglam/shoplist/internal/storage/sqlitekv"
	"github.com/idilsaglam/shoplist/internal/store"
	"github.com/idilsaglam/shoplist/internal/ui"
)

// rootFlags override the config file and environment.
type rootFlags struct {
	configPath string
	backend    string
	data       string
	key        string
	theme      string
	verbose    bool
}

// app is everything a subcommand needs, built once per invocation.
type app struct {
	opt   Options
	flags rootFlags

	cfg   *config.Config
	log   *zap.Logger
	kv    storage.Storage
	store *store.Store
}

func (a *app) setup() error {
	path := a.flags.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.flags.backend != "" {
		cfg.Storage.Backend = a.flags.backend
	}
	if a.flags.data != "" {
		cfg.Storage.Path = a.flags.data
	}
	if a.flags.key != "" {
		cfg.Storage.Key = a.flags.key
	}
	if a.flags.theme != "" {
		cfg.UI.Theme = a.flags.theme
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{msg: err.Error()}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	a.log, err = logging.New(cfg.Logging.Level, a.flags.verbose)
	if err != nil {
		return err
	}
	a.kv, err = openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	if err := storage.ValidateKey(cfg.Storage.Key); err != nil {
		return &usageError{msg: err.Error()}
	}
	a.store = a.newStore(a.log)
	a.log.Debug("ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("path", cfg.Storage.Path),
		zap.String("key", cfg.Storage.Key))
	return nil
}

func (a *app) newStore(log *zap.Logger) *store.Store {
	return store.New(a.kv, store.WithKey(a.cfg.Storage.Key), store.WithLogger(log))
}

func (a *app) close() {
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			a.log.Warn("close storage", zap.Error(err))
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func openStorage(sc config.StorageConfig) (storage.Storage, error) {
	switch sc.Backend {
	case config.BackendMemory:
		return memkv.New(), nil
	case config.BackendSQLite:
		p := sc.Path
		if filepath.Ext(p) == "" {
			p = filepath.Join(p, "shoplist.db")
		}
		return sqlitekv.Open(p)
	default:
		return filekv.New(sc.Path)
	}
}
