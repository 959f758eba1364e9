// Package gormstore keeps credential records in a SQL table through GORM.
//
// Field writes use UpdateColumns, which issues a single UPDATE of the named
// columns and skips hooks and the updated_at timestamp.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hasbyte1/go-credentials/credential"
)

// Credential is the table model.
type Credential struct {
	ID                  string `gorm:"primaryKey;size:64"`
	Username            string `gorm:"index;size:191"`
	Password            string `gorm:"size:255"`
	Salt                string `gorm:"size:255"`
	Strategy            string `gorm:"size:64;index"`
	RequiresNewPassword bool   `gorm:"not null;default:false"`
	PasswordChangedAt   *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName pins the table name.
func (Credential) TableName() string { return "credentials" }

func fromState(st credential.State) Credential {
	c := Credential{
		ID:                  st.ID,
		Username:            st.Username,
		Password:            st.EncodedPassword,
		Salt:                st.Salt,
		Strategy:            st.Strategy,
		RequiresNewPassword: st.RequiresNewPassword,
	}
	if !st.PasswordChangedAt.IsZero() {
		t := st.PasswordChangedAt.UTC()
		c.PasswordChangedAt = &t
	}
	return c
}

func (c Credential) state() credential.State {
	st := credential.State{
		ID:                  c.ID,
		Username:            c.Username,
		EncodedPassword:     c.Password,
		Salt:                c.Salt,
		Strategy:            c.Strategy,
		RequiresNewPassword: c.RequiresNewPassword,
	}
	if c.PasswordChangedAt != nil {
		st.PasswordChangedAt = c.PasswordChangedAt.UTC()
	}
	return st
}

// Store is a GORM-backed [credential.Updater].
type Store struct {
	db *gorm.DB
}

// New wraps db.  Call [Store.Migrate] once to create the table.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gormstore: database handle required")
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the credentials table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Credential{})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create inserts rec.  Returns [credential.ErrDuplicateRecord] when the id
// or username is already taken.
func (s *Store) Create(ctx context.Context, rec credential.Record) error {
	row := fromState(credential.Snapshot(rec))
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&Credential{}).Where("id = ?", row.ID)
		if row.Username != "" {
			q = q.Or("username = ?", row.Username)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", credential.ErrDuplicateRecord, row.ID)
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", credential.ErrDuplicateRecord, row.ID)
			}
			return err
		}
		return nil
	})
}

// Find loads the record stored under id.
func (s *Store) Find(ctx context.Context, id string) (*credential.Account, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByUsername loads the record with the given username.
func (s *Store) FindByUsername(ctx context.Context, username string) (*credential.Account, error) {
	return s.first(ctx, "username = ?", username)
}

func (s *Store) first(ctx context.Context, query string, arg any) (*credential.Account, error) {
	var row Credential
	err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, credential.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return credential.AccountFromState(row.state()), nil
}

// UpdateFields implements [credential.Updater].
func (s *Store) UpdateFields(ctx context.Context, rec credential.Record, fields ...credential.Field) error {
	if len(fields) == 0 {
		return nil
	}
	row := fromState(credential.Snapshot(rec))
	updates := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case credential.FieldEncodedPassword:
			updates["password"] = row.Password
		case credential.FieldSalt:
			updates["salt"] = row.Salt
		case credential.FieldStrategy:
			updates["strategy"] = row.Strategy
		case credential.FieldRequiresNewPassword:
			updates["requires_new_password"] = row.RequiresNewPassword
		case credential.FieldPasswordChangedAt:
			updates["password_changed_at"] = row.PasswordChangedAt
		default:
			return fmt.Errorf("%w: %q", credential.ErrUnknownField, f)
		}
	}

	res := s.db.WithContext(ctx).Model(&Credential{}).
		Where("id = ?", row.ID).
		UpdateColumns(updates)
	if res.Error != nil {
		return fmt.Errorf("gormstore: update %s: %w", row.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return credential.ErrRecordNotFound
	}
	return nil
}

// Delete removes the record stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Credential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return credential.ErrRecordNotFound
	}
	return nil
}

var _ credential.Store = (*Store)(nil)
