package credential_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-credentials/credential"
	"github.com/hasbyte1/go-credentials/credential/inmemory"
	"github.com/hasbyte1/go-credentials/hashing"
)

// newHashRegistry uses the salted iterated strategy as default so salt
// handling is observable.
func newHashRegistry(t testing.TB, policy hashing.Policy) *hashing.Registry {
	t.Helper()
	iterated, err := hashing.NewIteratedHash(hashing.IteratedHashOptions{WorkFactor: 2, Policy: policy})
	require.NoError(t, err)
	legacy, _ := hashing.NewLegacyDigest(hashing.Policy{})
	reg := hashing.NewRegistry("hash")
	require.NoError(t, reg.Register("hash", iterated))
	require.NoError(t, reg.Register("legacy", legacy))
	return reg
}

func TestChangePassword_ValidationFailureLeavesRecordUntouched(t *testing.T) {
	updater := &mockUpdater{}
	svc := newService(t, newHashRegistry(t, hashing.Policy{MinLength: 8, MinDigits: 1}), updater)
	rec := &plainRecord{id: "1", strategy: "legacy", encoded: "old", salt: ""}

	res, err := svc.ChangePassword(context.Background(), rec, "abc", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusValidationFailed, res.Status)
	require.NotNil(t, res.Violation)
	assert.Equal(t, hashing.RuleTooShort, res.Violation.Rule)
	assert.Equal(t, 8, res.Violation.Limit)

	assert.Equal(t, &plainRecord{id: "1", strategy: "legacy", encoded: "old"}, rec)
	updater.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_ReportsFirstViolatedRule(t *testing.T) {
	svc := newService(t, newHashRegistry(t, hashing.Policy{MinLength: 8, MinDigits: 1}), &mockUpdater{})
	res, err := svc.ChangePassword(context.Background(), &plainRecord{id: "1"}, "longpassword", credential.ChangeOptions{Validate: true})
	require.NoError(t, err)
	require.Equal(t, credential.StatusValidationFailed, res.Status)
	assert.Equal(t, hashing.RuleDigits, res.Violation.Rule)
}

func TestChangePassword_EncodesUnderDefaultWithFreshSalt(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	reg := newHashRegistry(t, hashing.Policy{})
	svc := newService(t, reg, store)
	acc := legacyAccount(t, store, "alice", "hunter2")

	res, err := svc.ChangePassword(ctx, acc, "new-secret", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.Equal(t, credential.StatusChanged, res.Status)
	assert.Equal(t, "hash", res.Strategy)
	assert.Equal(t, []credential.Field{
		credential.FieldStrategy,
		credential.FieldSalt,
		credential.FieldEncodedPassword,
		credential.FieldPasswordChangedAt,
	}, res.Fields)

	firstSalt, firstEncoded := acc.Salt(), acc.EncodedPassword()
	assert.Len(t, firstSalt, 40)
	assert.Equal(t, "hash", acc.Strategy())

	_, err = svc.ChangePassword(ctx, acc, "new-secret", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.NotEqual(t, firstSalt, acc.Salt(), "salt must be regenerated on every change")
	assert.NotEqual(t, firstEncoded, acc.EncodedPassword())

	stored, err := store.Find(ctx, acc.ID())
	require.NoError(t, err)
	assert.Equal(t, acc.State(), stored.State())

	outcome, err := svc.Authenticate(ctx, stored, "new-secret")
	require.NoError(t, err)
	assert.Equal(t, credential.OutcomeValid, outcome)
}

func TestChangePassword_WithoutAutoUpgradeKeepsRecordStrategy(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	svc := newService(t, newHashRegistry(t, hashing.Policy{}), store, credential.WithAutoUpgrade(false))
	acc := legacyAccount(t, store, "alice", "hunter2")

	res, err := svc.ChangePassword(ctx, acc, "rotated", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.Equal(t, "legacy", res.Strategy)
	assert.Equal(t, "legacy", acc.Strategy())
	assert.Empty(t, acc.Salt())

	legacy, _ := hashing.NewLegacyDigest(hashing.Policy{})
	ok, err := legacy.Compare("rotated", acc.EncodedPassword())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChangePassword_ClearsRequiresNewPassword(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	svc := newService(t, newHashRegistry(t, hashing.Policy{}), store)
	acc := legacyAccount(t, store, "alice", "hunter2")
	acc.SetRequiresNewPassword(true)
	require.NoError(t, store.UpdateFields(ctx, acc, credential.FieldRequiresNewPassword))

	res, err := svc.ChangePassword(ctx, acc, "fresh-password", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.Contains(t, res.Fields, credential.FieldRequiresNewPassword)
	assert.False(t, acc.RequiresNewPassword())

	stored, err := store.Find(ctx, acc.ID())
	require.NoError(t, err)
	assert.False(t, stored.RequiresNewPassword())
}

func TestChangePassword_WithoutPersist(t *testing.T) {
	updater := &mockUpdater{}
	svc := newService(t, newHashRegistry(t, hashing.Policy{}), updater)
	rec := &plainRecord{id: "1"}

	res, err := svc.ChangePassword(context.Background(), rec, "pw", credential.ChangeOptions{Validate: true})
	require.NoError(t, err)
	assert.Equal(t, credential.StatusChanged, res.Status)
	assert.Equal(t, "hash", rec.Strategy())
	assert.NotEmpty(t, rec.EncodedPassword())
	updater.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePassword_NoDefaultStrategy(t *testing.T) {
	reg := hashing.NewRegistry("bcrypt")
	svc := newService(t, reg, &mockUpdater{})
	_, err := svc.ChangePassword(context.Background(), &plainRecord{id: "1"}, "pw", credential.DefaultChangeOptions())
	assert.ErrorIs(t, err, hashing.ErrNoStrategyAvailable)
}

func TestValidatePassword_UsesRecordStrategy(t *testing.T) {
	svc := newService(t, newHashRegistry(t, hashing.Policy{MinLength: 12}), &mockUpdater{})

	assert.NoError(t, svc.ValidatePassword(&plainRecord{strategy: "legacy"}, "abc"))

	err := svc.ValidatePassword(&plainRecord{strategy: "hash"}, "abc")
	assert.ErrorIs(t, err, hashing.ErrPasswordPolicy)
	var verr *hashing.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, hashing.RuleTooShort, verr.Rule)
}

func TestResetCode(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	svc := newService(t, newHashRegistry(t, hashing.Policy{}), store)
	acc := legacyAccount(t, store, "alice", "hunter2")

	code := svc.ResetCode(acc)
	assert.Len(t, code, 64)
	assert.Equal(t, code, svc.ResetCode(acc), "code is stable while the password is unchanged")
	assert.True(t, svc.VerifyResetCode(acc, code))
	assert.False(t, svc.VerifyResetCode(acc, code[:63]+"x"))
	assert.NotContains(t, code, acc.EncodedPassword())

	other := newService(t, newHashRegistry(t, hashing.Policy{}), store, credential.WithResetNamespace("other"))
	assert.NotEqual(t, code, other.ResetCode(acc))

	_, err := svc.ChangePassword(ctx, acc, "rotated", credential.DefaultChangeOptions())
	require.NoError(t, err)
	assert.NotEqual(t, code, svc.ResetCode(acc), "code changes with the password")
	assert.False(t, svc.VerifyResetCode(acc, code))
}
