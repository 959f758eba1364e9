package config

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hasbyte1/go-credentials/credential"
	"github.com/hasbyte1/go-credentials/credential/gormstore"
	"github.com/hasbyte1/go-credentials/credential/inmemory"
	"github.com/hasbyte1/go-credentials/credential/redisstore"
)

// Open opens the configured record store.
func (s Store) Open(ctx context.Context) (credential.Store, error) {
	switch strings.ToLower(s.Driver) {
	case "", "memory":
		return inmemory.New(), nil
	case "redis":
		st, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     s.Redis.Addr,
			Username: s.Redis.Username,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
			Prefix:   s.Redis.Prefix,
		})
		if err != nil {
			return nil, errors.Wrap(err, "open redis store")
		}
		return st, nil
	case "sqlite":
		if s.DSN == "" {
			return nil, errors.New("store.dsn is required for the sqlite driver")
		}
		db, err := gorm.Open(sqlite.Open(s.DSN), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite store")
		}
		st, err := gormstore.New(db)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, errors.Wrap(err, "migrate sqlite store")
		}
		return st, nil
	default:
		return nil, errors.Errorf("unknown store driver: %s", s.Driver)
	}
}
