package credential

import (
	"context"
	"time"
)

// Field names one persisted attribute of a credential record.  The values
// double as column and hash-field names in the reference stores.
type Field string

const (
	FieldEncodedPassword     Field = "password"
	FieldSalt                Field = "salt"
	FieldStrategy            Field = "strategy"
	FieldRequiresNewPassword Field = "requires_new_password"
	FieldPasswordChangedAt   Field = "password_changed_at"
)

// Fields returns every field a store may be asked to write.
func Fields() []Field {
	return []Field{
		FieldEncodedPassword,
		FieldSalt,
		FieldStrategy,
		FieldRequiresNewPassword,
		FieldPasswordChangedAt,
	}
}

// Record is the accessor contract the owning credential record satisfies.
// The plain-text password is never part of it.
type Record interface {
	// ID returns a stable identifier, used by stores and reset codes.
	ID() string
	Username() string

	EncodedPassword() string
	SetEncodedPassword(encoded string)

	Salt() string
	SetSalt(salt string)

	// Strategy returns the registry id of the strategy that produced the
	// encoded password.
	Strategy() string
	SetStrategy(id string)

	RequiresNewPassword() bool
	SetRequiresNewPassword(required bool)
}

// Timestamped is implemented by records that track when the password was
// last changed.  [Service.ChangePassword] stamps such records and
// [Service.PasswordExpired] reads the stamp.
type Timestamped interface {
	PasswordChangedAt() time.Time
	SetPasswordChangedAt(t time.Time)
}

// Updater persists exactly the named fields of rec, reading their values
// through the Record accessors.  Implementations must write all fields in a
// single atomic operation and must not trigger any other save logic.
type Updater interface {
	UpdateFields(ctx context.Context, rec Record, fields ...Field) error
}

// Store is implemented by the reference stores.
type Store interface {
	Updater
	Create(ctx context.Context, rec Record) error
	Find(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// UpdaterFunc adapts a function to [Updater].
type UpdaterFunc func(ctx context.Context, rec Record, fields ...Field) error

// UpdateFields calls f.
func (f UpdaterFunc) UpdateFields(ctx context.Context, rec Record, fields ...Field) error {
	return f(ctx, rec, fields...)
}
