package backend

import (
	"context"
	"fmt"

	"finpulse/internal/amqp"
	"finpulse/internal/cache"
	"finpulse/internal/config"
	"finpulse/internal/export"
	"finpulse/internal/export/google"
	"finpulse/internal/export/memory"
	"finpulse/internal/log"
	"finpulse/internal/storage"
)

// Factory assembles backends from validated configuration.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Build opens storage, selects the cache backend, connects the broker and
// picks the report writer. An unreachable broker downgrades to a warning
// so the API serves without report requests; every other failure is fatal
// and releases whatever was already acquired.
func (f *Factory) Build(ctx context.Context, cfg *config.Config) (*Backend, error) {
	store, err := storage.Open(cfg, f.logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	respCache, cacheCleanup, err := f.buildCache(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	var broker *amqp.Client
	if cfg.AMQPURL != "" {
		broker, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Broker unreachable, continuing without report requests",
				log.FieldError, err)
			broker = nil
		} else {
			f.logger.Info("Connected to broker",
				log.FieldExchange, cfg.AMQPExchange,
				log.FieldQueue, cfg.AMQPQueue)
		}
	}

	writer, err := f.buildWriter(ctx, cfg)
	if err != nil {
		if broker != nil {
			broker.Close()
		}
		cacheCleanup()
		store.Close()
		return nil, err
	}

	b := &Backend{
		Store:  store,
		Cache:  respCache,
		AMQP:   broker,
		Writer: writer,
	}
	b.Cleanup = func() error {
		var firstErr error
		if broker != nil {
			if err := broker.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close broker: %w", err)
			}
		}
		if err := cacheCleanup(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close cache: %w", err)
		}
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close storage: %w", err)
		}
		return firstErr
	}
	return b, nil
}

func (f *Factory) buildCache(cfg *config.Config) (cache.Store, CleanupFunc, error) {
	switch cfg.CacheBackend {
	case config.CacheRedis:
		store, err := cache.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL, f.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis cache: %w", err)
		}
		f.logger.Info("Using redis response cache",
			log.FieldCacheBackend, cfg.CacheBackend,
			"addr", cfg.RedisAddr)
		return store, store.Close, nil
	default:
		store := cache.NewMemoryStore(cfg.CacheSize, cfg.CacheTTL)
		manager := cache.NewManager(f.logger)
		manager.Register(store)
		manager.StartCleanup(cfg.CacheTTL)
		f.logger.Info("Using in-memory response cache",
			log.FieldCacheBackend, cfg.CacheBackend,
			"size", cfg.CacheSize,
			"ttl", cfg.CacheTTL.String())
		return store, func() error { manager.Stop(); return nil }, nil
	}
}

// buildWriter picks where report runs land. Without a spreadsheet id the
// in-process writer keeps the worker functional for local setups.
func (f *Factory) buildWriter(ctx context.Context, cfg *config.Config) (export.ReportWriter, error) {
	if cfg.SheetsExportEnabled() {
		writer, err := google.New(ctx, cfg, f.logger)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets writer: %w", err)
		}
		f.logger.Info("Reports export to Google Sheets",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
		return writer, nil
	}

	f.logger.Info("Reports export to the in-process writer; set GOOGLE_SPREADSHEET_ID for sheets export")
	return memory.New(), nil
}
