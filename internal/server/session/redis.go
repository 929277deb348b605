package session

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	serr "github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/errors"
)

// RedisStore хранит сессии в redis (sessions.store=redis).
//
// Ключи:
//   - session:<hex(hash)>        -> user id
//   - user_sessions:<user id>    -> set из hex(hash) всех сессий пользователя
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisStore создаёт store поверх клиента redis.
// ttl == 0 — ключи без срока жизни.
func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(tokenHash []byte) string {
	return "session:" + hex.EncodeToString(tokenHash)
}

func userKey(userID uuid.UUID) string {
	return "user_sessions:" + userID.String()
}

func (s *RedisStore) Create(ctx context.Context, tokenHash []byte, userID uuid.UUID) error {
	ok, err := s.rdb.SetNX(ctx, sessionKey(tokenHash), userID.String(), s.ttl).Result()
	if err != nil {
		return serr.ErrInternal
	}
	if !ok {
		return serr.ErrAlreadyExists
	}
	if err := s.rdb.SAdd(ctx, userKey(userID), hex.EncodeToString(tokenHash)).Err(); err != nil {
		return serr.ErrInternal
	}
	// множество живёт не дольше самой свежей сессии пользователя
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, userKey(userID), s.ttl).Err(); err != nil {
			return serr.ErrInternal
		}
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, tokenHash []byte) (uuid.UUID, error) {
	v, err := s.rdb.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, serr.ErrNotFound
		}
		return uuid.Nil, serr.ErrInternal
	}

	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, serr.ErrInternal
	}
	return id, nil
}

func (s *RedisStore) Delete(ctx context.Context, tokenHash []byte) error {
	key := sessionKey(tokenHash)

	v, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return serr.ErrInternal
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return serr.ErrInternal
	}
	// из множества пользователя убираем на best-effort, ключ сессии уже удалён
	if id, err := uuid.Parse(v); err == nil {
		s.rdb.SRem(ctx, userKey(id), hex.EncodeToString(tokenHash))
	}
	return nil
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	uk := userKey(userID)

	hashes, err := s.rdb.SMembers(ctx, uk).Result()
	if err != nil {
		return serr.ErrInternal
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, "session:"+h)
	}
	keys = append(keys, uk)

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return serr.ErrInternal
	}
	return nil
}
