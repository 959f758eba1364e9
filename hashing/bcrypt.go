package hashing

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the recommended work factor for bcrypt.
	// At cost 12, hashing takes approximately 250 ms on a modern server CPU,
	// which satisfies OWASP ASVS Level 1 (≥ 10) and Level 2 (≥ 12).
	//
	// Increase this value as hardware improves; aim to keep hashing time
	// between 100 ms and 500 ms for your deployment environment.
	DefaultBcryptCost = 12

	// BcryptMaxPasswordBytes is the longest password bcrypt can encode.
	BcryptMaxPasswordBytes = 72
)

// BcryptOptions configures a [Bcrypt] strategy.
type BcryptOptions struct {
	// Cost is the bcrypt work factor (logarithmic).
	// Valid range: [bcrypt.MinCost (4), bcrypt.MaxCost (31)].
	// Default: [DefaultBcryptCost] (12).
	Cost int

	// Policy is the complexity policy.
	Policy Policy
}

// DefaultBcryptOptions returns BcryptOptions with [DefaultBcryptCost] and
// [DefaultPolicy].
func DefaultBcryptOptions() BcryptOptions {
	return BcryptOptions{Cost: DefaultBcryptCost, Policy: DefaultPolicy()}
}

// Bcrypt is the preferred adaptive strategy.
//
// The encoded value is a Modular Crypt Format string ("$2a$12$...") that
// carries version, cost, a 128-bit salt and the digest, so it can be
// verified without the record's salt field.  UsesSalt reports false and the
// salt field of upgraded records is cleared.
//
// bcrypt cannot encode passwords longer than [BcryptMaxPasswordBytes]:
// Validate reports them as [RuleTooLong], and CanUpgradeTo(bcrypt) only holds
// for source policies whose MaxLength keeps passwords within that limit.
type Bcrypt struct {
	base
	unsalted
	cost int
}

// NewBcrypt constructs a Bcrypt strategy.
// Returns [ErrInvalidOption] if Cost is outside [bcrypt.MinCost, bcrypt.MaxCost]
// or the policy is invalid.
func NewBcrypt(opts BcryptOptions) (*Bcrypt, error) {
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidOption, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if err := opts.Policy.check(); err != nil {
		return nil, err
	}
	return &Bcrypt{base: base{policy: opts.Policy, maxBytes: BcryptMaxPasswordBytes}, cost: opts.Cost}, nil
}

// Kind returns [KindBcrypt].
func (s *Bcrypt) Kind() Kind { return KindBcrypt }

// Cost returns the configured bcrypt work factor.
func (s *Bcrypt) Cost() int { return s.cost }

// Encode hashes password with bcrypt.  Each call embeds a fresh random salt,
// so two encodings of the same password differ.
func (s *Bcrypt) Encode(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hashing: bcrypt: failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare verifies that password matches the bcrypt-encoded value.
// Returns (false, nil) on mismatch and [ErrInvalidHash] when encoded is not
// a bcrypt string.
func (s *Bcrypt) Compare(password, encoded string) (bool, error) {
	if !looksLikeBcrypt(encoded) {
		return false, fmt.Errorf("%w: value does not appear to be bcrypt", ErrInvalidHash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hashing: bcrypt: %w", err)
	}
	return true, nil
}

// NeedsRehash returns true if the work factor encoded in encoded differs
// from the configured cost.
func (s *Bcrypt) NeedsRehash(encoded string) (bool, error) {
	if !looksLikeBcrypt(encoded) {
		return false, fmt.Errorf("%w: value does not appear to be bcrypt", ErrInvalidHash)
	}
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	return cost != s.cost, nil
}

// Clone returns an unconfigured copy.
func (s *Bcrypt) Clone() Strategy {
	return &Bcrypt{base: s.base.fresh(), cost: s.cost}
}

// bcrypt hashes start with $2a$, $2b$, or $2y$
func looksLikeBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}
