package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// DefaultUnknownKeep is the length of the recent unknown requests list
const DefaultUnknownKeep = 100

// PushUnknown records unresolved requests, newest first, keeping at most keep entries
func (s *Store) PushUnknown(ctx context.Context, reqs []domain.UnknownRequest, keep int64) error {
	if len(reqs) == 0 {
		return nil
	}
	if keep <= 0 {
		keep = DefaultUnknownKeep
	}

	values := make([]interface{}, 0, len(reqs))
	for _, r := range reqs {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal unknown request: %w", err)
		}
		values = append(values, data)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, KeyUnknownRequests, values...)
	pipe.LTrim(ctx, KeyUnknownRequests, 0, keep-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push unknown requests: %w", err)
	}
	return nil
}

// RecentUnknown returns up to n recent unresolved requests, newest first
func (s *Store) RecentUnknown(ctx context.Context, n int64) ([]domain.UnknownRequest, error) {
	raw, err := s.client.LRange(ctx, KeyUnknownRequests, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get unknown requests: %w", err)
	}

	out := make([]domain.UnknownRequest, 0, len(raw))
	for _, item := range raw {
		var r domain.UnknownRequest
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
