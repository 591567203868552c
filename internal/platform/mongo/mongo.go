package mongo

import (
	"context"
	"fmt"
	"time"

	"vodcrawler/internal/logger"

	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Options struct {
	URI      string
	Database string
}

type Service struct {
	client   *mongodrv.Client
	database *mongodrv.Database
	log      *logger.Logger
}

func New(opts Options) (*Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	return &Service{
		client:   client,
		database: client.Database(opts.Database),
		log:      logger.New("Mongo"),
	}, nil
}

func (s *Service) Collection(name string) *mongodrv.Collection {
	return s.database.Collection(name)
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		s.log.LogErrorf("Mongo health check failed: %v", err)
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
