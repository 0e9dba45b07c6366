package services

import (
	"context"
	"fmt"
	"time"

	"noshow-dashboard/config"
	"noshow-dashboard/models"
	"noshow-dashboard/storage"
	"noshow-dashboard/utils"
)

// Loader produces the process-wide Dataset from the configured source.
type Loader struct {
	cfg     *config.Config
	logger  *utils.Logger
	cleaner *Cleaner
}

// NewLoader creates a Loader.
func NewLoader(cfg *config.Config, logger *utils.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger, cleaner: NewCleaner(logger)}
}

// Load reads the dataset once. Any failure is a *models.LoadError.
func (l *Loader) Load(ctx context.Context) (models.Dataset, error) {
	start := time.Now()
	l.logger.Info("[loader] Loading dataset: source: %s | path: %s", l.cfg.DatasetSource, l.cfg.DatasetPath)

	var (
		data models.Dataset
		err  error
	)
	switch l.cfg.DatasetSource {
	case config.SourceCSV:
		data, err = l.LoadFile(ctx, storage.NewCSVReader(l.cfg.DatasetPath), l.cfg.DatasetPath)
	case config.SourceXLSX:
		data, err = l.LoadFile(ctx, storage.NewXLSXReader(l.cfg.DatasetPath), l.cfg.DatasetPath)
	case config.SourcePostgres:
		data, err = l.loadPostgres(ctx)
	default:
		err = &models.LoadError{Source: l.cfg.DatasetSource, Err: fmt.Errorf("unknown dataset source")}
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("[loader] Dataset ready: %d appointments in %v", len(data), time.Since(start).Round(time.Millisecond))
	return data, nil
}

// LoadFile reads raw rows from r and types them.
func (l *Loader) LoadFile(ctx context.Context, r storage.RawReader, source string) (models.Dataset, error) {
	raw, err := r.ReadRaw(ctx)
	if err != nil {
		return nil, err
	}
	return l.cleaner.Clean(source, raw)
}

func (l *Loader) loadPostgres(ctx context.Context) (models.Dataset, error) {
	store, err := storage.NewPostgresStore(ctx, l.cfg.DSN(), &utils.RetryConfig{
		MaxAttempts: l.cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      l.logger,
	})
	if err != nil {
		return nil, &models.LoadError{Source: config.SourcePostgres, Err: err}
	}
	return l.LoadDataset(ctx, store)
}

// LoadDataset reads already typed appointments from r and closes it.
func (l *Loader) LoadDataset(ctx context.Context, r storage.DatasetReader) (models.Dataset, error) {
	defer func() {
		if err := r.Close(); err != nil {
			l.logger.Warn("[loader] Closing dataset source: %v", err)
		}
	}()
	return r.FetchAll(ctx)
}
