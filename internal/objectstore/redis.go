package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/five82/tripbook/internal/book"
)

// Redis stores books in one hash, <namespace>:books, one field per id.
type Redis struct {
	client *redis.Client
	key    string
	owned  bool
}

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// OpenRedis connects to the server and verifies it answers PING.
func OpenRedis(ctx context.Context, opts RedisOptions, namespace string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping redis %s: %v", ErrUnavailable, opts.Addr, err)
	}
	r := NewRedis(client, namespace)
	r.owned = true
	return r, nil
}

// NewRedis wraps an existing client. The caller keeps ownership of client.
func NewRedis(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, key: namespace + ":books"}
}

// LoadAll returns every book ordered by id.
func (r *Redis) LoadAll(ctx context.Context) ([]book.Book, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", r.key, err)
	}
	ids := make([]string, 0, len(fields))
	for id := range fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	books := make([]book.Book, 0, len(ids))
	for _, id := range ids {
		var b book.Book
		if err := json.Unmarshal([]byte(fields[id]), &b); err != nil {
			return nil, fmt.Errorf("decode book %s: %w", id, err)
		}
		books = append(books, b)
	}
	return books, nil
}

// SaveAll deletes the hash and rewrites it inside a MULTI/EXEC block.
func (r *Redis) SaveAll(ctx context.Context, books []book.Book) error {
	values := make([]any, 0, len(books)*2)
	for _, b := range books {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode book %s: %w", b.ID, err)
		}
		values = append(values, b.ID, string(data))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key)
		if len(values) > 0 {
			pipe.HSet(ctx, r.key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", r.key, err)
	}
	return nil
}

// Put writes one hash field.
func (r *Redis) Put(ctx context.Context, b book.Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode book %s: %w", b.ID, err)
	}
	if err := r.client.HSet(ctx, r.key, b.ID, string(data)).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", r.key, err)
	}
	return nil
}

// Delete removes one hash field.
func (r *Redis) Delete(ctx context.Context, id string) error {
	if err := r.client.HDel(ctx, r.key, id).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", r.key, err)
	}
	return nil
}

// Close releases the client when OpenRedis created it.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
