package vod

import (
	"context"
	"time"

	"vodcrawler/internal/logger"
)

const listCacheKey = "vods:all"

// Repository is the document store contract the service builds on.
type Repository interface {
	List(ctx context.Context) ([]Vod, error)
	Get(ctx context.Context, id string) (*Vod, error)
	Create(ctx context.Context, in VodCreate) (*Vod, error)
	UpsertByURL(ctx context.Context, in VodCreate) (*Vod, error)
	Update(ctx context.Context, id string, in VodUpdate) (*Vod, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// Cache is the key/value store with expiry used for listings.
type Cache interface {
	GetOrSet(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute func(context.Context) (interface{}, error)) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service is the catalog API over a repository, caching the full listing.
type Service struct {
	repo    Repository
	cache   Cache
	listTTL time.Duration
	log     *logger.Logger
}

func NewService(repo Repository, cache Cache, listTTL time.Duration) *Service {
	return &Service{repo: repo, cache: cache, listTTL: listTTL, log: logger.New("VodService")}
}

func (s *Service) List(ctx context.Context) ([]Vod, error) {
	var out []Vod
	err := s.cache.GetOrSet(ctx, listCacheKey, s.listTTL, &out, func(ctx context.Context) (interface{}, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Vod{}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Vod, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in VodCreate) (*Vod, error) {
	v, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *Service) UpsertByURL(ctx context.Context, in VodCreate) (*Vod, error) {
	v, err := s.repo.UpsertByURL(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in VodUpdate) (*Vod, error) {
	v, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, listCacheKey); err != nil {
		s.log.LogWarnf("invalidate %s: %v", listCacheKey, err)
	}
}
