package hashing

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
)

// LegacyDigest encodes passwords as a single unsalted MD5 hex digest.
//
// It exists only so credentials created by older systems can still be
// verified and then upgraded.  Never make it the default strategy.
type LegacyDigest struct {
	base
	unsalted
}

// NewLegacyDigest constructs a LegacyDigest with the given policy.  Legacy
// data was usually created without complexity rules, so the zero Policy is
// the common choice.
func NewLegacyDigest(policy Policy) (*LegacyDigest, error) {
	if err := policy.check(); err != nil {
		return nil, err
	}
	return &LegacyDigest{base: base{policy: policy}}, nil
}

// Kind returns [KindLegacyDigest].
func (s *LegacyDigest) Kind() Kind { return KindLegacyDigest }

// Encode returns the lowercase hex MD5 digest of password.
func (s *LegacyDigest) Encode(password string) (string, error) {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Compare reports whether password digests to encoded.
func (s *LegacyDigest) Compare(password, encoded string) (bool, error) {
	got, err := s.Encode(password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(encoded)) == 1, nil
}

// Clone returns an unconfigured copy.
func (s *LegacyDigest) Clone() Strategy {
	return &LegacyDigest{base: s.base.fresh()}
}
