package authcore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	redisAccountPrefix      = "ac:acct"
	redisAccountLoginPrefix = "ac:login"
	redisAccountEmailPrefix = "ac:email"
	redisTokenPrefix        = "ac:tok"
	redisTokenOwnerPrefix   = "ac:toks"
)

// RedisAccounts is the shipped Redis implementation of [AccountStore]. Hosts
// with their own persistence keep implementing the interface; this adapter
// exists for deployments that already run Redis.
//
// Accounts are stored as JSON under their id, with login and email index
// keys pointing back at it.
type RedisAccounts struct {
	redis redis.UniversalClient
}

// NewRedisAccounts wraps an existing client. The caller keeps ownership of
// the client's lifecycle.
func NewRedisAccounts(client redis.UniversalClient) *RedisAccounts {
	return &RedisAccounts{redis: client}
}

func accountKey(id string) string  { return redisAccountPrefix + ":" + id }
func loginKey(login string) string { return redisAccountLoginPrefix + ":" + login }
func emailKey(email string) string { return redisAccountEmailPrefix + ":" + email }

// FindByLogin resolves the login index, then the account.
func (s *RedisAccounts) FindByLogin(ctx context.Context, login string) (*Account, error) {
	return s.findIndexed(ctx, loginKey(login))
}

// FindByEmail resolves the email index, then the account.
func (s *RedisAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return s.findIndexed(ctx, emailKey(email))
}

func (s *RedisAccounts) findIndexed(ctx context.Context, indexKey string) (*Account, error) {
	id, err := s.redis.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s.FindByID(ctx, id)
}

// FindByID loads one account; (nil, nil) on a miss.
func (s *RedisAccounts) FindByID(ctx context.Context, id string) (*Account, error) {
	data, err := s.redis.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("%w: corrupt account record", ErrStoreUnavailable)
	}
	return &account, nil
}

// Save upserts the account and refreshes its index keys. A changed login or
// email drops the old index entry in the same transaction.
func (s *RedisAccounts) Save(ctx context.Context, account *Account) error {
	if account == nil || account.ID == "" {
		return errors.New("account id is required")
	}

	previous, err := s.FindByID(ctx, account.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if previous != nil && previous.Login != account.Login {
			pipe.Del(ctx, loginKey(previous.Login))
		}
		if previous != nil && previous.Email != account.Email {
			pipe.Del(ctx, emailKey(previous.Email))
		}
		pipe.Set(ctx, accountKey(account.ID), data, 0)
		pipe.Set(ctx, loginKey(account.Login), account.ID, 0)
		pipe.Set(ctx, emailKey(account.Email), account.ID, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the account and its index keys. Deleting a missing account
// is a no-op.
func (s *RedisAccounts) Delete(ctx context.Context, id string) error {
	account, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if account == nil {
		return nil
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, accountKey(id))
		pipe.Del(ctx, loginKey(account.Login))
		pipe.Del(ctx, emailKey(account.Email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RedisTokens is the shipped Redis implementation of [TokenStore]. Rows are
// stored as JSON under their value with a per-owner set for bulk revocation.
//
// No TTLs are written: expiry is evaluated lazily by the engine, and CSRF
// rows in particular must outlive their window so loads can roll it forward.
type RedisTokens struct {
	redis redis.UniversalClient
}

// NewRedisTokens wraps an existing client.
func NewRedisTokens(client redis.UniversalClient) *RedisTokens {
	return &RedisTokens{redis: client}
}

func tokenKey(value string) string { return redisTokenPrefix + ":" + value }

func tokenOwnerKey(accountID string, kind TokenKind) string {
	return redisTokenOwnerPrefix + ":" + accountID + ":" + strconv.Itoa(int(kind))
}

// Find loads one token row; (nil, nil) on a miss.
func (s *RedisTokens) Find(ctx context.Context, value string) (*TokenRecord, error) {
	data, err := s.redis.Get(ctx, tokenKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: corrupt token record", ErrStoreUnavailable)
	}
	return &record, nil
}

// Save upserts the row and registers it in its owner set.
func (s *RedisTokens) Save(ctx context.Context, record *TokenRecord) error {
	if record == nil || record.Value == "" {
		return errors.New("token value is required")
	}

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(record.Value), data, 0)
		if record.AccountID != "" {
			pipe.SAdd(ctx, tokenOwnerKey(record.AccountID, record.Kind), record.Value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes one token row and its owner-set entry.
func (s *RedisTokens) Delete(ctx context.Context, value string) error {
	record, err := s.Find(ctx, value)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tokenKey(value))
		if record.AccountID != "" {
			pipe.SRem(ctx, tokenOwnerKey(record.AccountID, record.Kind), value)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteByAccount removes every row of the kind owned by the account.
func (s *RedisTokens) DeleteByAccount(ctx context.Context, accountID string, kind TokenKind) error {
	ownerKey := tokenOwnerKey(accountID, kind)

	values, err := s.redis.SMembers(ctx, ownerKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, value := range values {
			pipe.Del(ctx, tokenKey(value))
		}
		pipe.Del(ctx, ownerKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
