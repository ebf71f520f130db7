package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "graphpass:user:"
	redisSeqKey    = "graphpass:user_seq"
	// redisMaxRetries bounds the optimistic transaction loop of one call.
	redisMaxRetries = 32
)

var errRedisContention = errors.New("too many concurrent updates")

// hashReader is satisfied by both *redis.Client and *redis.Tx.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisRepository keeps every account in one hash. Writes run inside
// WATCH/MULTI transactions on that key and are retried when another client
// changed the key first.
type RedisRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: redisKeyPrefix}
}

func (r *RedisRepository) key(email string) string {
	return r.prefix + email
}

func (r *RedisRepository) load(ctx context.Context, c hashReader, email string) (*models.Account, error) {
	fields, err := c.HGetAll(ctx, r.key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: id of %s: %v", common.ErrorMalformedStoredData, email, err)
	}

	rw := row{
		ID:                id,
		Email:             fields["email"],
		Firstname:         nullable(fields["firstname"]),
		UserImages:        nullable(fields["user_images"]),
		GraphicalPassword: nullable(fields["graphical_password"]),
		Status:            nullable(fields["status"]),
	}
	return rw.account()
}

func hashFields(acc *models.Account) (map[string]any, error) {
	rw, err := toRow(acc)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":                 rw.ID,
		"email":              rw.Email,
		"firstname":          rw.Firstname.String,
		"user_images":        rw.UserImages.String,
		"graphical_password": rw.GraphicalPassword.String,
		"status":             rw.Status.String,
	}, nil
}

func (r *RedisRepository) Get(ctx context.Context, email string) (*models.Account, error) {
	return r.load(ctx, r.rdb, email)
}

func (r *RedisRepository) Create(ctx context.Context, acc *models.Account) error {
	key := r.key(acc.Email)

	for i := 0; i < redisMaxRetries; i++ {
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, acc.Email)
			}

			id, err := tx.Incr(ctx, redisSeqKey).Result()
			if err != nil {
				return err
			}
			acc.ID = id

			fields, err := hashFields(acc)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fields)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return err
			}
			return fmt.Errorf("redis error: %w", err)
		}
		return nil
	}

	return fmt.Errorf("redis error: %w", errRedisContention)
}

func (r *RedisRepository) Update(ctx context.Context, email string, fn MutateFunc) (*models.Account, error) {
	key := r.key(email)

	for i := 0; i < redisMaxRetries; i++ {
		var updated *models.Account

		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			acc, err := r.load(ctx, tx, email)
			if err != nil {
				return err
			}
			if err := apply(acc, fn); err != nil {
				return err
			}

			fields, err := hashFields(acc)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.HSet(ctx, key, fields)
				return nil
			})
			if err != nil {
				return err
			}

			updated = acc
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, fmt.Errorf("redis error: %w", errRedisContention)
}
