package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix = "refresh_token:"
	userSessionsPrefix = "user_sessions:"
)

var _ Repository = (*RedisRepository)(nil)

// RedisRepository stores each refresh token as a hash that expires together
// with the token, plus a per-account set used to revoke every session.
type RedisRepository struct {
	client redis.Cmdable
}

func NewRedisRepository(client redis.Cmdable) *RedisRepository {
	return &RedisRepository{client: client}
}

// Create writes the token hash and the session set entry in one MULTI/EXEC.
func (r *RedisRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	tokenKey := refreshTokenPrefix + token.Token
	sessionsKey := userSessionsPrefix + token.UserEmail

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, tokenKey,
			"email", token.UserEmail,
			"expires_at", token.Expires.Unix(),
			"created_at", token.CreatedAt.Unix(),
		)
		pipe.ExpireAt(ctx, tokenKey, token.Expires)
		pipe.SAdd(ctx, sessionsKey, token.Token)
		// all tokens share one lifetime, so the newest one outlives the rest
		pipe.ExpireAt(ctx, sessionsKey, token.Expires)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	fields, err := r.client.HGetAll(ctx, refreshTokenPrefix+token).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return parseRefreshToken(token, fields)
}

// Consume reads and deletes the token hash inside one MULTI/EXEC, so only
// one caller ever sees its fields.
func (r *RedisRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	tokenKey := refreshTokenPrefix + token

	var fields *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, tokenKey)
		pipe.Del(ctx, tokenKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	rt, err := parseRefreshToken(token, fields.Val())
	if err != nil {
		return nil, err
	}

	if err := r.client.SRem(ctx, userSessionsPrefix+rt.UserEmail, token).Err(); err != nil {
		return nil, fmt.Errorf("failed to remove token from user sessions: %w", err)
	}
	return rt, nil
}

func parseRefreshToken(token string, fields map[string]string) (*models.RefreshToken, error) {
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed refresh token expiry: %w", err)
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed refresh token creation time: %w", err)
	}

	return &models.RefreshToken{
		Token:     token,
		UserEmail: fields["email"],
		Expires:   time.Unix(expires, 0),
		CreatedAt: time.Unix(created, 0),
	}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, token string) error {
	tokenKey := refreshTokenPrefix + token

	email, err := r.client.HGet(ctx, tokenKey, "email").Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get refresh token: %w", err)
	}

	if err := r.client.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if err := r.client.SRem(ctx, userSessionsPrefix+email, token).Err(); err != nil {
		return fmt.Errorf("failed to remove token from user sessions: %w", err)
	}
	return nil
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, email string) error {
	sessionsKey := userSessionsPrefix + email

	tokens, err := r.client.SMembers(ctx, sessionsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, refreshTokenPrefix+t)
	}
	keys = append(keys, sessionsKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}
