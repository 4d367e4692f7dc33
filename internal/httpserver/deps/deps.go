package deps

import (
	"time"

	"github.com/MrSnakeDoc/skyroute/internal/catalog"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
	"github.com/MrSnakeDoc/skyroute/internal/stats"
	redisstore "github.com/MrSnakeDoc/skyroute/internal/store/redis"
	"github.com/MrSnakeDoc/skyroute/internal/upstream"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	AdminHosts      []string           // Host headers allowed to reach /_skyroute/*
	AdminCIDRS      []string           // IPs allowed to reach /_skyroute/*
	TrustProxy      bool               // true if running behind a trusted reverse proxy
	ReloadBurst     int                // manual reload rate limit burst
	ReloadPerMin    int                // manual reload rate limit refill
	MaxBodyBytes    int64              // body size beyond which form parsing is skipped
	Catalog         *catalog.Holder    // current service catalog
	Store           *redisstore.Store  // nil when redis is disabled or unreachable
	Recorder        *stats.Recorder    // pending resolution stats
	Upstreams       *upstream.Registry // per-service handlers of the dispatcher
	UpstreamTimeout time.Duration      // timeout of upstream probes
	ReloadTrigger   chan struct{}      // Channel to trigger manual catalog reload
}
