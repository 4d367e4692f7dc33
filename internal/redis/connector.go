package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/skyroute/internal/config"
	"github.com/MrSnakeDoc/skyroute/internal/logger"
)

// ConnectOptions describes the redis instance holding catalog snapshots and
// resolution stats, and how long startup may wait for it.
type ConnectOptions struct {
	Addr         string
	User         string
	Password     string
	RedisDB      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // budget for all startup attempts
	RetryInterval  time.Duration // first backoff, doubled after each failure
	MaxWait        time.Duration // backoff cap
	PingTimeout    time.Duration // per attempt
	WarnThreshold  int           // failed attempts logged at Warn before switching to Error
}

// OptionsFromConfig maps the SKYROUTE_REDIS_* and REDIS_* settings.
func OptionsFromConfig(cfg *config.Config) ConnectOptions {
	return ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}
}

// Validate reports every invalid retry setting at once.
func (o ConnectOptions) Validate() error {
	var errs []error
	positive := func(name string, d time.Duration) {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, d))
		}
	}
	positive("ConnectTimeout", o.ConnectTimeout)
	positive("RetryInterval", o.RetryInterval)
	positive("MaxWait", o.MaxWait)
	positive("PingTimeout", o.PingTimeout)
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

func (o ConnectOptions) client() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Username:     o.User,
		Password:     o.Password,
		DB:           o.RedisDB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
	})
}

// backoff doubles the wait after each call, up to max.
type backoff struct {
	wait time.Duration
	max  time.Duration
}

func (b *backoff) next() time.Duration {
	d := b.wait
	b.wait = min(b.wait*2, b.max)
	return d
}

// New connects to redis, retrying with exponential backoff until
// ConnectTimeout elapses or ctx is done. The edge keeps routing without
// redis, so callers treat an error as "persistence disabled".
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	log = log.With(logger.String("component", "redis"), logger.String("redis_addr", opts.Addr))
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis connection settings", logger.Error(err))
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}

	client := opts.client()
	if err := waitForRedis(ctx, client, opts, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func waitForRedis(parent context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	log.Info("waiting for redis before restoring the catalog snapshot",
		logger.Duration("budget", opts.ConnectTimeout))

	started := time.Now()
	b := backoff{wait: opts.RetryInterval, max: opts.MaxWait}

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			fields := []logger.Field{logger.Int("attempts", attempt), logger.Duration("elapsed", time.Since(started))}
			if attempt > 1 {
				log.Warn("redis reachable after retries, persistence enabled", fields...)
			} else {
				log.Info("redis reachable, persistence enabled", fields...)
			}
			return nil
		}

		wait := b.next()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if parent.Err() != nil {
				return fmt.Errorf("redis connection to %s cancelled after %d attempts: %w", opts.Addr, attempt, parent.Err())
			}
			log.Error("redis unreachable, stats and catalog snapshots stay in memory",
				logger.Int("attempts", attempt),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (budget %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			fields := []logger.Field{
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err),
			}
			if attempt <= opts.WarnThreshold {
				log.Warn("redis ping failed, retrying", fields...)
			} else {
				log.Error("redis ping keeps failing, retrying", fields...)
			}
		}
	}
}
