// Package hashing provides pluggable password encoding strategies and a
// registry that names them.
//
// # Architecture
//
// The central abstraction is the [Strategy] interface.  Four implementations
// ship with this package:
//
//   - [LegacyDigest]: unsalted MD5, kept only to verify old credentials
//   - [IteratedHash]: salted digest repeated WorkFactor times
//   - [Bcrypt]: adaptive, self-describing; the recommended default
//   - [Argon2id]: adaptive, memory-hard, self-describing
//
// Every strategy carries a complexity [Policy].  [Strategy.Validate] reports
// the first violated [Rule] as a [*ValidationError], and
// [Strategy.CanUpgradeTo] tells whether a password accepted by one policy is
// guaranteed to satisfy another, which is what makes silent re-encoding
// safe.
//
// The [Registry] maps persisted strategy ids to configured strategies and
// designates a default.  [NewStrategy] builds strategies from a [Spec]; custom
// implementations are added with [RegisterKind].
//
// # Quick start
//
//	bc, _ := hashing.NewBcrypt(hashing.DefaultBcryptOptions())
//	md5, _ := hashing.NewLegacyDigest(hashing.Policy{})
//
//	r := hashing.NewRegistry("bcrypt")
//	_ = r.Register("bcrypt", bc)
//	_ = r.Register("legacy", md5)
//
//	id, s, err := r.Resolve(storedStrategyID)
//	s.SetSalt(storedSalt)
//	ok, err := s.Compare(password, storedEncoded)
//
// The orchestration that upgrades credentials on login lives in the
// credential package.
//
// # Salts and entropy
//
// Salted strategies draw bytes from an [Entropy].  It prefers crypto/rand,
// falls back to reading /dev/urandom, and only when AllowDegraded is set
// derives bytes from a timing-based HMAC mix.  That last mode is weak and
// is logged as [ErrDegradedEntropy] every time it is used.
//
// # Security defaults
//
//   - bcrypt:  cost 12 (≈ 250 ms on modern hardware; exceeds OWASP minimum of 10).
//   - Argon2id: m=64 MiB, t=3 iterations, p=2 threads, 32-byte key.
//   - hash: SHA-1, 100 passes.  Only suitable for existing data.
package hashing
