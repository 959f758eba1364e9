package credential_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-credentials/credential"
	"github.com/hasbyte1/go-credentials/credential/inmemory"
	"github.com/hasbyte1/go-credentials/hashing"
)

// mockUpdater is a testify mock of credential.Updater.
type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateFields(ctx context.Context, rec credential.Record, fields ...credential.Field) error {
	args := m.Called(ctx, rec, fields)
	return args.Error(0)
}

// plainRecord is a Record that does not implement Timestamped.
type plainRecord struct {
	id, username, encoded, salt, strategy string
	requiresNew                           bool
}

func (r *plainRecord) ID() string                    { return r.id }
func (r *plainRecord) Username() string              { return r.username }
func (r *plainRecord) EncodedPassword() string       { return r.encoded }
func (r *plainRecord) SetEncodedPassword(v string)   { r.encoded = v }
func (r *plainRecord) Salt() string                  { return r.salt }
func (r *plainRecord) SetSalt(v string)              { r.salt = v }
func (r *plainRecord) Strategy() string              { return r.strategy }
func (r *plainRecord) SetStrategy(v string)          { r.strategy = v }
func (r *plainRecord) RequiresNewPassword() bool     { return r.requiresNew }
func (r *plainRecord) SetRequiresNewPassword(v bool) { r.requiresNew = v }

// newRegistry registers "legacy" (zero policy) and "bcrypt" (default) with
// the given bcrypt policy.
func newRegistry(t testing.TB, bcryptPolicy hashing.Policy) *hashing.Registry {
	t.Helper()
	legacy, err := hashing.NewLegacyDigest(hashing.Policy{})
	require.NoError(t, err)
	bc, err := hashing.NewBcrypt(hashing.BcryptOptions{Cost: bcrypt.MinCost, Policy: bcryptPolicy})
	require.NoError(t, err)

	reg := hashing.NewRegistry("bcrypt")
	require.NoError(t, reg.Register("legacy", legacy))
	require.NoError(t, reg.Register("bcrypt", bc))
	return reg
}

// legacyAccount stores a new account encoded with the legacy strategy.
func legacyAccount(t testing.TB, store *inmemory.Store, username, password string) *credential.Account {
	t.Helper()
	legacy, _ := hashing.NewLegacyDigest(hashing.Policy{})
	encoded, err := legacy.Encode(password)
	require.NoError(t, err)

	acc := credential.NewAccount(username)
	acc.SetStrategy("legacy")
	acc.SetEncodedPassword(encoded)
	require.NoError(t, store.Create(context.Background(), acc))
	return acc
}

func newService(t testing.TB, reg *hashing.Registry, updater credential.Updater, opts ...credential.Option) *credential.Service {
	t.Helper()
	svc, err := credential.NewService(reg, updater, opts...)
	require.NoError(t, err)
	return svc
}
