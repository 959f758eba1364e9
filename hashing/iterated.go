package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"
)

const (
	// DefaultIteratedWorkFactor is the number of digest passes applied by
	// [IteratedHash] when no work factor is configured.
	DefaultIteratedWorkFactor = 100

	// DefaultDigest is the digest used by [IteratedHash] when none is set.
	// SHA-1 matches credentials written by the systems this strategy reads.
	DefaultDigest = "sha1"

	// iteratedSaltBytes is the number of random bytes in a generated salt.
	iteratedSaltBytes = 20

	// saltSeparator joins salt and password before the first pass.
	saltSeparator = "###"
)

var digests = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

// Digests returns the names accepted by [IteratedHashOptions].Digest.
func Digests() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IteratedHashOptions configures an [IteratedHash].
type IteratedHashOptions struct {
	// WorkFactor is the number of digest passes.  Latency grows linearly
	// with it; pick a value that hits the target verification time on
	// production hardware.  Default: [DefaultIteratedWorkFactor].
	WorkFactor int

	// Digest names the digest function: md5, sha1, sha256 or sha512.
	// Default: [DefaultDigest].
	Digest string

	// Policy is the complexity policy.
	Policy Policy

	// Entropy supplies salt bytes.  Nil means [DefaultEntropy].
	Entropy *Entropy
}

// DefaultIteratedHashOptions returns options with the default work factor,
// digest and policy.
func DefaultIteratedHashOptions() IteratedHashOptions {
	return IteratedHashOptions{
		WorkFactor: DefaultIteratedWorkFactor,
		Digest:     DefaultDigest,
		Policy:     DefaultPolicy(),
	}
}

// IteratedHash is a salted scheme that re-digests salt+"###"+password
// WorkFactor times, hex-encoding the running value between passes.
type IteratedHash struct {
	base
	opts    IteratedHashOptions
	newHash func() hash.Hash
}

// NewIteratedHash constructs an IteratedHash.
// Returns [ErrInvalidOption] for a non-positive work factor, an unknown
// digest, or an invalid policy.
func NewIteratedHash(opts IteratedHashOptions) (*IteratedHash, error) {
	if opts.Digest == "" {
		opts.Digest = DefaultDigest
	}
	if opts.WorkFactor < 1 {
		return nil, fmt.Errorf("%w: hash work factor must be >= 1, got %d", ErrInvalidOption, opts.WorkFactor)
	}
	h, ok := digests[opts.Digest]
	if !ok {
		return nil, fmt.Errorf("%w: unknown digest %q", ErrInvalidOption, opts.Digest)
	}
	if err := opts.Policy.check(); err != nil {
		return nil, err
	}
	return &IteratedHash{base: base{policy: opts.Policy}, opts: opts, newHash: h}, nil
}

// Kind returns [KindIteratedHash].
func (s *IteratedHash) Kind() Kind { return KindIteratedHash }

// WorkFactor returns the configured number of digest passes.
func (s *IteratedHash) WorkFactor() int { return s.opts.WorkFactor }

// UsesSalt returns true.
func (s *IteratedHash) UsesSalt() bool { return true }

// Salt returns the current salt, generating a fresh one when none is set or
// forceRefresh is true.
func (s *IteratedHash) Salt(forceRefresh bool) (string, error) {
	return s.saltFrom(forceRefresh, s.generateSalt)
}

func (s *IteratedHash) generateSalt() (string, error) {
	b, err := s.opts.Entropy.Bytes(iteratedSaltBytes)
	if err != nil {
		return "", fmt.Errorf("hashing: hash: failed to generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Encode applies the digest WorkFactor times to salt+"###"+password.
func (s *IteratedHash) Encode(password string) (string, error) {
	salt, err := s.Salt(false)
	if err != nil {
		return "", err
	}
	value := salt + saltSeparator + password
	for i := 0; i < s.opts.WorkFactor; i++ {
		h := s.newHash()
		h.Write([]byte(value))
		value = hex.EncodeToString(h.Sum(nil))
	}
	return value, nil
}

// Compare encodes password under the current salt and compares the result
// with encoded in constant time.
func (s *IteratedHash) Compare(password, encoded string) (bool, error) {
	got, err := s.Encode(password)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(encoded)) == 1, nil
}

// Clone returns an unconfigured copy.
func (s *IteratedHash) Clone() Strategy {
	return &IteratedHash{base: s.base.fresh(), opts: s.opts, newHash: s.newHash}
}
