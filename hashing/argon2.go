package hashing

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ──────────────────────────────────────────────────────────────────────────────
// Options
// ──────────────────────────────────────────────────────────────────────────────

const (
	// DefaultArgon2Memory is the default memory cost in KiB (64 MiB).
	// OWASP ASVS Level 2 requires ≥ 19 MiB; 64 MiB is the standard production
	// recommendation for Argon2id.
	DefaultArgon2Memory uint32 = 64 * 1024

	// DefaultArgon2Time is the default number of iterations.
	DefaultArgon2Time uint32 = 3

	// DefaultArgon2Threads is the default degree of parallelism.
	DefaultArgon2Threads uint8 = 2

	// DefaultArgon2KeyLen is the default output key length in bytes.
	DefaultArgon2KeyLen uint32 = 32

	// DefaultArgon2SaltLen is the default random salt length in bytes.
	DefaultArgon2SaltLen uint32 = 16

	argon2Version = argon2.Version // 0x13 = 19
	argon2Variant = "argon2id"
)

// Argon2Options configures an [Argon2id] strategy.
//
// All cost parameters are encoded into the output (PHC format), so changing
// them only affects newly produced values; existing ones stay verifiable.
type Argon2Options struct {
	// Memory is the memory cost in KiB.
	// Minimum: 8 * Threads.  Default: [DefaultArgon2Memory] (64 MiB).
	Memory uint32

	// Time is the number of passes over memory.  This is the strategy's
	// work factor.  Minimum: 1.  Default: [DefaultArgon2Time] (3).
	Time uint32

	// Threads is the degree of parallelism.
	// Minimum: 1.  Default: [DefaultArgon2Threads] (2).
	Threads uint8

	// KeyLen is the length of the derived key in bytes.
	// Default: [DefaultArgon2KeyLen] (32).
	KeyLen uint32

	// SaltLen is the length of the random salt in bytes.
	// Minimum: 8.  Default: [DefaultArgon2SaltLen] (16).
	SaltLen uint32

	// Policy is the complexity policy.
	Policy Policy

	// Entropy supplies salt bytes.  Nil means [DefaultEntropy].
	Entropy *Entropy
}

// DefaultArgon2Options returns Argon2Options with the recommended defaults.
// These exceed OWASP ASVS Level 2 requirements.
func DefaultArgon2Options() Argon2Options {
	return Argon2Options{
		Memory:  DefaultArgon2Memory,
		Time:    DefaultArgon2Time,
		Threads: DefaultArgon2Threads,
		KeyLen:  DefaultArgon2KeyLen,
		SaltLen: DefaultArgon2SaltLen,
		Policy:  DefaultPolicy(),
	}
}

func validateArgon2Options(opts Argon2Options) error {
	if opts.Time < 1 {
		return fmt.Errorf("%w: argon2 time must be ≥ 1, got %d", ErrInvalidOption, opts.Time)
	}
	if opts.Threads < 1 {
		return fmt.Errorf("%w: argon2 threads must be ≥ 1, got %d", ErrInvalidOption, opts.Threads)
	}
	if opts.Memory < 8*uint32(opts.Threads) {
		return fmt.Errorf("%w: argon2 memory (%d KiB) must be ≥ 8×threads (%d KiB)",
			ErrInvalidOption, opts.Memory, 8*uint32(opts.Threads))
	}
	if opts.KeyLen < 4 {
		return fmt.Errorf("%w: argon2 key_len must be ≥ 4, got %d", ErrInvalidOption, opts.KeyLen)
	}
	if opts.SaltLen < 8 {
		return fmt.Errorf("%w: argon2 salt_len must be ≥ 8, got %d", ErrInvalidOption, opts.SaltLen)
	}
	return opts.Policy.check()
}

// ──────────────────────────────────────────────────────────────────────────────
// PHC string format helpers
// ──────────────────────────────────────────────────────────────────────────────

// argon2Params holds parameters and raw values decoded from a PHC string.
type argon2Params struct {
	version uint32
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
	salt    []byte
	hash    []byte
}

// encodePHC serialises an Argon2id hash in PHC String Format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
//
// The base64 encoding uses the standard alphabet without padding.
func encodePHC(memory, time uint32, threads uint8, salt, hash []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Variant,
		argon2Version,
		memory,
		time,
		threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// decodePHC parses an Argon2id PHC string and returns its components.
func decodePHC(encoded string) (*argon2Params, error) {
	// Split on "$"; the leading "$" produces an empty first element.
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected 5-segment PHC string, got %d segments",
			ErrInvalidHash, len(parts)-1)
	}
	if parts[1] != argon2Variant {
		return nil, fmt.Errorf("%w: unsupported argon2 variant %q", ErrInvalidHash, parts[1])
	}

	version, err := parseKV(parts[2], "v")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	kvs, err := parseParams(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}
	memory, ok1 := kvs["m"]
	time, ok2 := kvs["t"]
	threads64, ok3 := kvs["p"]
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: missing m/t/p in parameter segment %q", ErrInvalidHash, parts[3])
	}
	if threads64 == 0 || threads64 > 255 || time == 0 {
		return nil, fmt.Errorf("%w: out of range parameters in %q", ErrInvalidHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt base64: %v", ErrInvalidHash, err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hash base64: %v", ErrInvalidHash, err)
	}
	if len(hash) == 0 {
		return nil, fmt.Errorf("%w: empty hash segment", ErrInvalidHash)
	}

	return &argon2Params{
		version: uint32(version),
		memory:  uint32(memory),
		time:    uint32(time),
		threads: uint8(threads64),
		keyLen:  uint32(len(hash)),
		salt:    salt,
		hash:    hash,
	}, nil
}

// parseKV parses a "key=value" string and returns the uint64 value.
func parseKV(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix in %q", prefix, s)
	}
	return strconv.ParseUint(s[len(prefix):], 10, 64)
}

// parseParams splits "m=65536,t=3,p=2" into a map.
func parseParams(s string) (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("malformed param %q", kv)
		}
		v, err := strconv.ParseUint(kv[eq+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric value in %q: %v", kv, err)
		}
		out[kv[:eq]] = v
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Argon2id
// ──────────────────────────────────────────────────────────────────────────────

// Argon2id is a memory-hard adaptive strategy.
//
// Output format: PHC string ($argon2id$v=19$m=…,t=…,p=…$<salt>$<hash>).
// Like [Bcrypt] the salt lives inside the encoded value, so UsesSalt
// reports false.
type Argon2id struct {
	base
	unsalted
	opts Argon2Options
}

// NewArgon2id constructs an Argon2id strategy with the given options.
// Use [DefaultArgon2Options] for recommended defaults.
func NewArgon2id(opts Argon2Options) (*Argon2id, error) {
	if err := validateArgon2Options(opts); err != nil {
		return nil, err
	}
	return &Argon2id{base: base{policy: opts.Policy}, opts: opts}, nil
}

// Kind returns [KindArgon2id].
func (s *Argon2id) Kind() Kind { return KindArgon2id }

// Options returns the current Argon2 parameter set.
func (s *Argon2id) Options() Argon2Options { return s.opts }

// Encode hashes password with Argon2id and returns a PHC-formatted string.
// A fresh random salt of the configured length is generated for each call.
func (s *Argon2id) Encode(password string) (string, error) {
	salt, err := s.opts.Entropy.Bytes(int(s.opts.SaltLen))
	if err != nil {
		return "", fmt.Errorf("hashing: argon2id: failed to generate salt: %w", err)
	}
	key := argon2.IDKey(
		[]byte(password), salt,
		s.opts.Time, s.opts.Memory, s.opts.Threads, s.opts.KeyLen,
	)
	return encodePHC(s.opts.Memory, s.opts.Time, s.opts.Threads, salt, key), nil
}

// Compare verifies that password matches the Argon2id PHC value.  The cost
// parameters are read from encoded itself, so verification keeps working
// after the configuration changes.
func (s *Argon2id) Compare(password, encoded string) (bool, error) {
	p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(computed, p.hash) == 1, nil
}

// NeedsRehash returns true if any parameter stored in encoded differs from
// the current configuration.
func (s *Argon2id) NeedsRehash(encoded string) (bool, error) {
	p, err := decodePHC(encoded)
	if err != nil {
		return false, err
	}
	return p.version != argon2Version ||
		p.memory != s.opts.Memory ||
		p.time != s.opts.Time ||
		p.threads != s.opts.Threads ||
		p.keyLen != s.opts.KeyLen, nil
}

// Clone returns an unconfigured copy.
func (s *Argon2id) Clone() Strategy {
	return &Argon2id{base: s.base.fresh(), opts: s.opts}
}
