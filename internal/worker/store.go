package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const resultKeyPrefix = "readme:render:"

// ErrResultNotFound is returned when no output is stored for a request
var ErrResultNotFound = errors.New("render result not found")

// ResultStore keeps rendered READMEs in Redis
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResultStore creates a new Redis result store. A zero ttl keeps results forever.
func NewResultStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultStore {
	return &ResultStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Key returns the Redis key holding the output of requestID
func (s *ResultStore) Key(requestID string) string {
	return resultKeyPrefix + requestID
}

// Save stores rendered output
func (s *ResultStore) Save(ctx context.Context, requestID, output string) error {
	if err := s.client.Set(ctx, s.Key(requestID), output, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	s.logger.Debug("stored render result",
		zap.String("request_id", requestID),
		zap.Int("bytes", len(output)),
	)
	return nil
}

// Load returns the stored output of requestID
func (s *ResultStore) Load(ctx context.Context, requestID string) (string, error) {
	output, err := s.client.Get(ctx, s.Key(requestID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", ErrResultNotFound, requestID)
		}
		return "", fmt.Errorf("failed to load result: %w", err)
	}
	return output, nil
}

// Delete removes the stored output of requestID
func (s *ResultStore) Delete(ctx context.Context, requestID string) error {
	if err := s.client.Del(ctx, s.Key(requestID)).Err(); err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}
	return nil
}

// List returns the request IDs that have stored output
func (s *ResultStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, resultKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, iter.Val()[len(resultKeyPrefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return ids, nil
}
