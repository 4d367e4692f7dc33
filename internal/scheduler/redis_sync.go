package scheduler

import (
	"context"
	"slices"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/domain"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// CatalogSnapshot reads back a persisted catalog.
type CatalogSnapshot interface {
	GetAllServices(ctx context.Context) ([]*domain.Service, error)
}

// RedisSyncer restores the last saved catalog on startup, so the router can
// serve before the definition files have been parsed.
type RedisSyncer struct {
	store  CatalogSnapshot
	holder *catalog.Holder
	logger logger.Logger
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store CatalogSnapshot,
	holder *catalog.Holder,
	log logger.Logger,
) *RedisSyncer {
	return &RedisSyncer{
		store:  store,
		holder: holder,
		logger: log,
	}
}

// Sync loads services from Redis into the holder. A catalog that is
// already loaded is never replaced.
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	if rs.holder.Load().Count() > 0 {
		rs.logger.Debug("catalog already loaded, skipping redis sync")
		return nil
	}

	rs.logger.Info("syncing catalog from redis to memory")

	services, err := rs.store.GetAllServices(ctx)
	if err != nil {
		return err
	}

	if len(services) == 0 {
		rs.logger.Info("no services found in redis")
		return nil
	}

	for _, svc := range services {
		if !slices.Contains(svc.Sources, "redis") {
			svc.Sources = append(svc.Sources, "redis")
		}
	}
	rs.holder.Store(catalog.New(services))

	rs.logger.Info("synced catalog from redis",
		logger.Int("count", len(services)))

	return nil
}
