package hashing

import "unicode/utf8"

// Kind identifies a strategy implementation.  It is distinct from the id a
// strategy is registered under: one kind may be registered several times
// with different work factors or policies.
type Kind string

const (
	// KindLegacyDigest selects the unsalted single-pass MD5 strategy.
	KindLegacyDigest Kind = "legacy-md5"
	// KindIteratedHash selects the salted, iterated digest strategy.
	KindIteratedHash Kind = "hash"
	// KindBcrypt selects the bcrypt adaptive strategy.
	KindBcrypt Kind = "bcrypt"
	// KindArgon2id selects the Argon2id adaptive strategy.
	KindArgon2id Kind = "argon2id"
)

// Strategy is the contract satisfied by every password encoding algorithm.
//
// A Strategy carries transient per-credential state (salt and username), so
// an instance must not be shared between goroutines that verify different
// credentials.  [Registry.Get] and [Registry.Resolve] hand out clones for
// exactly that reason.
type Strategy interface {
	// Kind returns the implementation kind.
	Kind() Kind

	// Encode encodes password.  Salted strategies generate a salt first if
	// none has been set.
	Encode(password string) (string, error)

	// Compare reports whether password encodes to encoded under the current
	// salt and username.  The comparison runs in constant time.
	Compare(password, encoded string) (bool, error)

	// Validate checks password against the strategy's complexity policy.
	// A non-nil result is a [*ValidationError].
	Validate(password string) error

	// Policy returns the complexity policy.
	Policy() Policy

	// CanUpgradeTo reports whether a password accepted by this strategy's
	// policy is guaranteed to satisfy other's minimums and fit other's
	// [ByteLimiter] limit, so a credential can be silently re-encoded under
	// other.
	CanUpgradeTo(other Strategy) bool

	// UsesSalt reports whether the strategy keeps its salt outside the
	// encoded value.  Strategies returning false always report an empty salt.
	UsesSalt() bool

	// SetSalt sets the salt used by Encode and Compare.  An empty salt is a
	// set salt; only instances that never had one generate it lazily.
	SetSalt(salt string)

	// Salt returns the current salt, generating one when none is set or
	// forceRefresh is true.
	Salt(forceRefresh bool) (string, error)

	// SetUsername sets the username of the credential being processed.
	SetUsername(username string)

	// Username returns the username set with SetUsername.
	Username() string

	// Clone returns an instance with the same configuration and no salt or
	// username.
	Clone() Strategy
}

// Rehasher is implemented by strategies whose encoded values carry their own
// cost parameters.  NeedsRehash reports whether encoded was produced with
// parameters different from the strategy's current configuration.
type Rehasher interface {
	NeedsRehash(encoded string) (bool, error)
}

// ByteLimiter is implemented by strategies that cannot encode passwords
// longer than a fixed number of bytes.  Such strategies report longer
// passwords from Validate as [RuleTooLong] with the byte limit.
type ByteLimiter interface {
	MaxPasswordBytes() int
}

// base holds the state shared by every built-in strategy.
type base struct {
	policy   Policy
	maxBytes int
	salt     string
	hasSalt  bool
	username string
}

func (b *base) Policy() Policy { return b.policy }

// MaxPasswordBytes returns the encoding limit in bytes, 0 when unlimited.
func (b *base) MaxPasswordBytes() int { return b.maxBytes }

func (b *base) Validate(password string) error {
	if err := b.policy.Validate(password); err != nil {
		return err
	}
	if b.maxBytes > 0 && len(password) > b.maxBytes {
		return &ValidationError{Rule: RuleTooLong, Limit: b.maxBytes}
	}
	return nil
}

// CanUpgradeTo also requires that every accepted password fits other's
// byte limit, if it has one.
func (b *base) CanUpgradeTo(other Strategy) bool {
	if other == nil || !b.policy.Covers(other.Policy()) {
		return false
	}
	bl, ok := other.(ByteLimiter)
	if !ok || bl.MaxPasswordBytes() == 0 {
		return true
	}
	bound := b.byteBound()
	return bound > 0 && bound <= bl.MaxPasswordBytes()
}

// byteBound is the longest password in bytes this strategy accepts, 0 when
// unbounded.
func (b *base) byteBound() int {
	bound := b.maxBytes
	if b.policy.MaxLength > 0 {
		if n := b.policy.MaxLength * utf8.UTFMax; bound == 0 || n < bound {
			bound = n
		}
	}
	return bound
}

// SetSalt sets the salt.  An empty salt counts as set: records stored
// without one verify against an empty salt.
func (b *base) SetSalt(salt string) {
	b.salt = salt
	b.hasSalt = true
}

func (b *base) SetUsername(username string) { b.username = username }

func (b *base) Username() string { return b.username }

// saltFrom implements Salt for strategies that generate salts with gen.
func (b *base) saltFrom(forceRefresh bool, gen func() (string, error)) (string, error) {
	if !b.hasSalt || forceRefresh {
		s, err := gen()
		if err != nil {
			return "", err
		}
		b.salt, b.hasSalt = s, true
	}
	return b.salt, nil
}

// fresh returns a copy carrying only the configuration.
func (b base) fresh() base {
	return base{policy: b.policy, maxBytes: b.maxBytes}
}

// unsalted is embedded by strategies that do not keep a separate salt.
type unsalted struct{}

func (unsalted) UsesSalt() bool { return false }

func (unsalted) Salt(bool) (string, error) { return "", nil }
