package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// KVStore is a Redis-backed LocalStore, for deployments where the cached
// identity blob must survive instance replacement. Values never expire; the
// bridge deletes the identity key on sign-out.
type KVStore struct {
	client *redis.Client
}

func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) Get(key string) (string, bool, error) {
	v, err := s.client.Get(context.Background(), s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *KVStore) Set(key, value string) error {
	return s.client.Set(context.Background(), s.key(key), value, 0).Err()
}

func (s *KVStore) Delete(key string) error {
	return s.client.Del(context.Background(), s.key(key)).Err()
}

func (s *KVStore) key(k string) string {
	return "local:" + k
}
