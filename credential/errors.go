// Package credential verifies stored passwords and migrates them to the
// preferred encoding strategy.
//
// It is storage-agnostic: a credential is reached only through the [Record]
// accessors, and the single write path is the narrow [Updater] contract,
// which persists a named set of fields without running the owning record's
// save lifecycle.  Reference stores live in the inmemory, redisstore and
// gormstore sub-packages.
//
// # Authentication and upgrade
//
// [Service.Authenticate] resolves the record's strategy from a
// [hashing.Registry], compares the presented password and, when the record
// is not on the registry's default strategy, re-encodes it under the
// default.  If the old strategy's complexity policy does not guarantee the
// default's, the password is validated first; when that fails the record is
// flagged with RequiresNewPassword instead and the login still succeeds.
//
// # Reset codes
//
// [Service.ResetCode] derives a one-way code from the record id, salt and
// encoded value, so it changes whenever the password changes.
package credential

import "errors"

var (
	// ErrRecordNotFound is returned by stores when no record has the given id.
	ErrRecordNotFound = errors.New("credential: record not found")

	// ErrDuplicateRecord is returned by stores when a record id is already taken.
	ErrDuplicateRecord = errors.New("credential: duplicate record id")

	// ErrMissingDependency is returned by [NewService] when the registry or
	// the updater is nil.
	ErrMissingDependency = errors.New("credential: missing dependency")

	// ErrUnknownField is returned by stores asked to write a field they do
	// not know.
	ErrUnknownField = errors.New("credential: unknown field")
)
