package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// IncrementStats adds resolution counters in one round trip
func (s *Store) IncrementStats(ctx context.Context, delta domain.Stats) error {
	if delta.Empty() {
		return nil
	}

	pipe := s.client.Pipeline()
	for service, n := range delta.Services {
		pipe.HIncrBy(ctx, KeyStatsServices, service, n)
	}
	for stage, n := range delta.Stages {
		pipe.HIncrBy(ctx, KeyStatsStages, stage, n)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment stats: %w", err)
	}
	return nil
}

// GetStats retrieves the persisted resolution counters
func (s *Store) GetStats(ctx context.Context) (domain.Stats, error) {
	stats := domain.NewStats()

	services, err := s.client.HGetAll(ctx, KeyStatsServices).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get service stats: %w", err)
	}
	stages, err := s.client.HGetAll(ctx, KeyStatsStages).Result()
	if err != nil {
		return stats, fmt.Errorf("failed to get stage stats: %w", err)
	}

	parseCounters(services, stats.Services)
	parseCounters(stages, stats.Stages)
	return stats, nil
}

// ResetStats deletes all persisted counters
func (s *Store) ResetStats(ctx context.Context) error {
	if err := s.client.Del(ctx, KeyStatsServices, KeyStatsStages, KeyUnknownRequests).Err(); err != nil {
		return fmt.Errorf("failed to reset stats: %w", err)
	}
	return nil
}

func parseCounters(raw map[string]string, into map[string]int64) {
	for k, v := range raw {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			into[k] = n
		}
	}
}
