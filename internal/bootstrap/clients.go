package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/iterator"
)

func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// FirestorePing reads at most one document, which is enough to prove the
// database answers.
func FirestorePing(client *firestore.Client, collection string) func(context.Context) error {
	return func(ctx context.Context) error {
		it := client.Collection(collection).Limit(1).Documents(ctx)
		defer it.Stop()
		_, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		return err
	}
}
