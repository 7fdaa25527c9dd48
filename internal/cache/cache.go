package cache

import (
	"context"
	"time"

	"konterhp/backend/internal/domain"
)

type SuggestionCache interface {
	Get(ctx context.Context, key string) (*domain.SuggestionResponse, bool, error)
	Set(ctx context.Context, key string, value *domain.SuggestionResponse, ttl time.Duration) error
}

type NoopSuggestionCache struct{}

func (NoopSuggestionCache) Get(_ context.Context, _ string) (*domain.SuggestionResponse, bool, error) {
	return nil, false, nil
}

func (NoopSuggestionCache) Set(_ context.Context, _ string, _ *domain.SuggestionResponse, _ time.Duration) error {
	return nil
}
