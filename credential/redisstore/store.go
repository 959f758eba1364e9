// Package redisstore keeps credential records in Redis hashes.
//
// Each record is one hash under "<prefix><id>" whose fields are the
// [credential.Field] names plus "id" and "username".  A second key,
// "<prefix>username:<name>", indexes records by username.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hasbyte1/go-credentials/credential"
)

// DefaultPrefix is used when Config.Prefix is empty.
const DefaultPrefix = "credential:"

const (
	fieldID       = "id"
	fieldUsername = "username"
)

// updateScript writes the given field/value pairs only when the hash exists,
// so an update never resurrects a deleted record.
var updateScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
return 1
`)

// createScript writes a whole record and its optional username index
// (KEYS[2]) in one step.  ARGV[1] is the id, the rest are field/value pairs.
// Returns 0 when the id exists and -1 when the username is taken.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
if #KEYS > 1 and redis.call("SETNX", KEYS[2], ARGV[1]) == 0 then
  return -1
end
redis.call("HSET", KEYS[1], unpack(ARGV, 2))
return 1
`)

// Config configures a [Store].
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Store is a Redis-backed [credential.Updater].
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Open connects to Redis and pings it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redisstore: address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping failed: %w", err)
	}
	return New(client, cfg.Prefix), nil
}

// New wraps an existing client.  An empty prefix selects [DefaultPrefix].
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) usernameKey(username string) string { return s.prefix + "username:" + username }

// Create stores rec.  Returns [credential.ErrDuplicateRecord] when the id or
// the username is already taken.
func (s *Store) Create(ctx context.Context, rec credential.Record) error {
	st := credential.Snapshot(rec)

	keys := []string{s.key(st.ID)}
	if st.Username != "" {
		keys = append(keys, s.usernameKey(st.Username))
	}
	values := []any{st.ID, fieldID, st.ID, fieldUsername, st.Username}
	for _, f := range credential.Fields() {
		v, _ := encodeField(st, f)
		values = append(values, string(f), v)
	}

	n, err := createScript.Run(ctx, s.client, keys, values...).Int()
	if err != nil {
		return fmt.Errorf("redisstore: create %s: %w", st.ID, err)
	}
	switch n {
	case 0:
		return fmt.Errorf("%w: %s", credential.ErrDuplicateRecord, st.ID)
	case -1:
		return fmt.Errorf("%w: username %q", credential.ErrDuplicateRecord, st.Username)
	}
	return nil
}

// Find loads the record stored under id.
func (s *Store) Find(ctx context.Context, id string) (*credential.Account, error) {
	m, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: find %s: %w", id, err)
	}
	if len(m) == 0 {
		return nil, credential.ErrRecordNotFound
	}
	st, err := decodeState(m)
	if err != nil {
		return nil, fmt.Errorf("redisstore: decode %s: %w", id, err)
	}
	return credential.AccountFromState(st), nil
}

// FindByUsername loads the record indexed under username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*credential.Account, error) {
	id, err := s.client.Get(ctx, s.usernameKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, credential.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redisstore: find username: %w", err)
	}
	return s.Find(ctx, id)
}

// UpdateFields implements [credential.Updater] with a single HSET executed
// by a script that first checks the record exists.
func (s *Store) UpdateFields(ctx context.Context, rec credential.Record, fields ...credential.Field) error {
	if len(fields) == 0 {
		return nil
	}
	st := credential.Snapshot(rec)
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		v, err := encodeField(st, f)
		if err != nil {
			return err
		}
		args = append(args, string(f), v)
	}

	n, err := updateScript.Run(ctx, s.client, []string{s.key(st.ID)}, args...).Int()
	if err != nil {
		return fmt.Errorf("redisstore: update %s: %w", st.ID, err)
	}
	if n == 0 {
		return credential.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record and its username index.
func (s *Store) Delete(ctx context.Context, id string) error {
	username, err := s.client.HGet(ctx, s.key(id), fieldUsername).Result()
	if errors.Is(err, redis.Nil) {
		return credential.ErrRecordNotFound
	}
	if err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", id, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.Del(ctx, s.usernameKey(username))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", id, err)
	}
	return nil
}

func encodeField(st credential.State, f credential.Field) (string, error) {
	switch f {
	case credential.FieldEncodedPassword:
		return st.EncodedPassword, nil
	case credential.FieldSalt:
		return st.Salt, nil
	case credential.FieldStrategy:
		return st.Strategy, nil
	case credential.FieldRequiresNewPassword:
		if st.RequiresNewPassword {
			return "1", nil
		}
		return "0", nil
	case credential.FieldPasswordChangedAt:
		if st.PasswordChangedAt.IsZero() {
			return "", nil
		}
		return st.PasswordChangedAt.UTC().Format(time.RFC3339Nano), nil
	default:
		return "", fmt.Errorf("%w: %q", credential.ErrUnknownField, f)
	}
}

func decodeState(m map[string]string) (credential.State, error) {
	st := credential.State{
		ID:                  m[fieldID],
		Username:            m[fieldUsername],
		EncodedPassword:     m[string(credential.FieldEncodedPassword)],
		Salt:                m[string(credential.FieldSalt)],
		Strategy:            m[string(credential.FieldStrategy)],
		RequiresNewPassword: m[string(credential.FieldRequiresNewPassword)] == "1",
	}
	if v := m[string(credential.FieldPasswordChangedAt)]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return credential.State{}, err
		}
		st.PasswordChangedAt = t
	}
	return st, nil
}

var _ credential.Store = (*Store)(nil)
