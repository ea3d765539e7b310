package authstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/dams-project/backend/core"
	"github.com/dams-project/backend/core/auth"
)

// Key prefixes keep sessions and OTPs apart in a shared redis DB.
const (
	sessionPrefix = "session:"
	otpPrefix     = "otp:"
)

type redisSessionStore struct {
	client *redis.Client
}

var _ auth.SessionStore = (*redisSessionStore)(nil)

func NewRedisSessionStore(client *redis.Client) *redisSessionStore {
	return &redisSessionStore{client: client}
}

func (s *redisSessionStore) Save(ctx context.Context, token string, p auth.Principal, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshaling principal")
	}
	if err = s.client.Set(ctx, sessionPrefix+token, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, token string) (auth.Principal, error) {
	data, err := s.client.Get(ctx, sessionPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Principal{}, auth.ErrNoSession
		}
		return auth.Principal{}, errors.Wrap(err, "getting session")
	}

	var p auth.Principal
	if err = json.Unmarshal(data, &p); err != nil {
		return auth.Principal{}, errors.Wrap(err, "unmarshaling principal")
	}
	return p, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionPrefix+token).Err(); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

type redisOTPStore struct {
	client *redis.Client
}

var _ auth.OTPStore = (*redisOTPStore)(nil)

func NewRedisOTPStore(client *redis.Client) *redisOTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) Put(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, otpPrefix+email, code, ttl).Err(); err != nil {
		return errors.Wrap(err, "saving OTP")
	}
	return nil
}

// Take fetches and deletes in one round trip so a code can never be replayed.
func (s *redisOTPStore) Take(ctx context.Context, email string) (string, error) {
	code, err := s.client.GetDel(ctx, otpPrefix+email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Wrap(err, "taking OTP")
	}
	return code, nil
}

// NewRedisClient connects to the configured redis instance.
func NewRedisClient(conf *core.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: conf.Redis.Addr,
		DB:   conf.Redis.DB,
	})
}
