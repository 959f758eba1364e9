package hashing

import (
	"fmt"
	"sort"
	"sync"
)

// Spec is the implementation-agnostic description of a configured strategy,
// as read from configuration.
type Spec struct {
	// Kind selects the implementation.
	Kind Kind
	// WorkFactor is the cost parameter: digest passes for [KindIteratedHash],
	// log2 cost for [KindBcrypt], time cost for [KindArgon2id].  Zero
	// selects the implementation's default.  Ignored by [KindLegacyDigest].
	WorkFactor int
	// Digest is only used by [KindIteratedHash].
	Digest string
	// Policy is the complexity policy.
	Policy Policy
}

// Constructor builds a Strategy from a Spec.
type Constructor func(spec Spec, entropy *Entropy) (Strategy, error)

var (
	constructorsMu sync.RWMutex
	constructors   = map[Kind]Constructor{
		KindLegacyDigest: newLegacyFromSpec,
		KindIteratedHash: newIteratedFromSpec,
		KindBcrypt:       newBcryptFromSpec,
		KindArgon2id:     newArgon2idFromSpec,
	}
)

// RegisterKind makes a custom implementation available to [NewStrategy]
// and therefore to configuration files.  Registering an existing kind
// replaces it.
func RegisterKind(kind Kind, c Constructor) error {
	if kind == "" {
		return fmt.Errorf("%w: kind must not be empty", ErrInvalidOption)
	}
	if c == nil {
		return fmt.Errorf("%w: constructor for %q must not be nil", ErrInvalidOption, kind)
	}
	constructorsMu.Lock()
	defer constructorsMu.Unlock()
	constructors[kind] = c
	return nil
}

// Kinds returns the implementation kinds known to [NewStrategy].
func Kinds() []Kind {
	constructorsMu.RLock()
	defer constructorsMu.RUnlock()
	kinds := make([]Kind, 0, len(constructors))
	for k := range constructors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// NewStrategy builds the strategy described by spec.  entropy may be nil.
func NewStrategy(spec Spec, entropy *Entropy) (Strategy, error) {
	constructorsMu.RLock()
	c, ok := constructors[spec.Kind]
	constructorsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, spec.Kind)
	}
	return c(spec, entropy)
}

func newLegacyFromSpec(spec Spec, _ *Entropy) (Strategy, error) {
	return NewLegacyDigest(spec.Policy)
}

func newIteratedFromSpec(spec Spec, entropy *Entropy) (Strategy, error) {
	opts := IteratedHashOptions{
		WorkFactor: spec.WorkFactor,
		Digest:     spec.Digest,
		Policy:     spec.Policy,
		Entropy:    entropy,
	}
	if opts.WorkFactor == 0 {
		opts.WorkFactor = DefaultIteratedWorkFactor
	}
	return NewIteratedHash(opts)
}

func newBcryptFromSpec(spec Spec, _ *Entropy) (Strategy, error) {
	opts := BcryptOptions{Cost: spec.WorkFactor, Policy: spec.Policy}
	if opts.Cost == 0 {
		opts.Cost = DefaultBcryptCost
	}
	return NewBcrypt(opts)
}

func newArgon2idFromSpec(spec Spec, entropy *Entropy) (Strategy, error) {
	opts := DefaultArgon2Options()
	opts.Policy = spec.Policy
	opts.Entropy = entropy
	if spec.WorkFactor < 0 {
		return nil, fmt.Errorf("%w: argon2 time must be ≥ 1, got %d", ErrInvalidOption, spec.WorkFactor)
	}
	if spec.WorkFactor > 0 {
		opts.Time = uint32(spec.WorkFactor)
	}
	return NewArgon2id(opts)
}
