package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/metrics"
)

// ServiceSource produces the full set of service definitions.
type ServiceSource interface {
	Load() ([]*domain.Service, error)
}

// CatalogSaver persists a catalog snapshot.
type CatalogSaver interface {
	SaveCatalog(ctx context.Context, services []*domain.Service) error
}

// CatalogReloader handles periodic reloading of service definitions
type CatalogReloader struct {
	source        ServiceSource
	store         CatalogSaver
	holder        *catalog.Holder
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader. store may be nil.
func NewCatalogReloader(
	source ServiceSource,
	store CatalogSaver,
	holder *catalog.Holder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		source:        source,
		store:         store,
		holder:        holder,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalog once, then keeps reloading it in the background.
// The initial load only fails when no catalog is available at all, a
// snapshot restored from redis is good enough to serve.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		if cr.holder.Load().Count() == 0 {
			return fmt.Errorf("initial catalog load failed: %w", err)
		}
		cr.logger.Warn("initial catalog load failed, serving restored snapshot",
			logger.Int("services", cr.holder.Load().Count()),
			logger.Error(err))
	}

	ticker := time.NewTicker(cr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog",
						logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Reload builds a new catalog from the source and swaps it in. On failure
// the current catalog stays in place.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.logger.Info("reloading service catalog")

	services, err := cr.source.Load()
	if err != nil {
		metrics.RecordCatalogReload(err, 0)
		return fmt.Errorf("failed to load services: %w", err)
	}

	next := catalog.New(services)
	prev := cr.holder.Store(next)
	metrics.RecordCatalogReload(nil, next.Count())

	cr.logger.Info("service catalog reloaded",
		logger.Int("services", next.Count()),
		logger.Int("previous", prev.Count()))

	// Update Redis store (best effort)
	if cr.store != nil {
		if err := cr.store.SaveCatalog(ctx, next.Services()); err != nil {
			cr.logger.Warn("failed to save catalog to redis",
				logger.Error(err))
		} else {
			cr.logger.Debug("catalog saved to redis")
		}
	}

	return nil
}
