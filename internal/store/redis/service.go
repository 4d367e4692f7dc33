package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/skyroute/internal/domain"
)

// DefaultServiceTTL keeps a snapshot around long enough to survive a week of
// missing spec files.
const DefaultServiceTTL = 7 * 24 * time.Hour

// Store handles Redis operations for catalog snapshots and resolution stats
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// GetService retrieves a service from Redis by ID
func (s *Store) GetService(ctx context.Context, id domain.ServiceIdentifier) (*domain.Service, error) {
	data, err := s.client.Get(ctx, ServiceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("service not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	var service domain.Service
	if err := json.Unmarshal(data, &service); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service: %w", err)
	}

	return &service, nil
}

// GetAllServices retrieves the last saved catalog snapshot
func (s *Store) GetAllServices(ctx context.Context) ([]*domain.Service, error) {
	ids, err := s.client.SMembers(ctx, AllServicesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get service IDs: %w", err)
	}

	if len(ids) == 0 {
		return []*domain.Service{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = ServiceKey(ParseServiceID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}

	services := make([]*domain.Service, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Expired or deleted since SMEMBERS
			continue
		}
		var service domain.Service
		if err := json.Unmarshal([]byte(raw), &service); err != nil {
			continue
		}
		services = append(services, &service)
	}

	return services, nil
}

// SaveCatalog replaces the stored snapshot with the given services (bulk operation)
func (s *Store) SaveCatalog(ctx context.Context, services []*domain.Service) error {
	existing, err := s.client.SMembers(ctx, AllServicesKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get service IDs: %w", err)
	}

	current := make(map[string]struct{}, len(services))
	pipe := s.client.TxPipeline()

	for _, service := range services {
		data, err := json.Marshal(service)
		if err != nil {
			return fmt.Errorf("failed to marshal service %s: %w", service.ID, err)
		}

		id := service.ID.String()
		current[id] = struct{}{}
		pipe.Set(ctx, ServiceKey(service.ID), data, DefaultServiceTTL)
		pipe.SAdd(ctx, AllServicesKey(), id)
	}

	// Drop services that are gone from the definitions
	for _, id := range existing {
		if _, ok := current[id]; ok {
			continue
		}
		pipe.Del(ctx, ServiceKey(ParseServiceID(id)))
		pipe.SRem(ctx, AllServicesKey(), id)
	}

	pipe.HSet(ctx, KeyCatalogMeta,
		"count", len(services),
		"saved_at", time.Now().UTC().Format(time.RFC3339))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save services: %w", err)
	}

	return nil
}

// CatalogMeta describes the stored snapshot.
type CatalogMeta struct {
	Count   int       `json:"count"`
	SavedAt time.Time `json:"saved_at"`
}

// GetCatalogMeta returns the metadata of the stored snapshot. A missing
// snapshot yields a zero value.
func (s *Store) GetCatalogMeta(ctx context.Context) (CatalogMeta, error) {
	fields, err := s.client.HGetAll(ctx, KeyCatalogMeta).Result()
	if err != nil {
		return CatalogMeta{}, fmt.Errorf("failed to get catalog meta: %w", err)
	}

	var meta CatalogMeta
	if v, ok := fields["count"]; ok {
		meta.Count, _ = strconv.Atoi(v)
	}
	if v, ok := fields["saved_at"]; ok {
		meta.SavedAt, _ = time.Parse(time.RFC3339, v)
	}
	return meta, nil
}
