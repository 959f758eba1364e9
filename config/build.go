package config

import (
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/hasbyte1/go-credentials/credential"
	"github.com/hasbyte1/go-credentials/hashing"
)

// Spec converts the strategy entry into a hashing.Spec.
func (s Strategy) Spec() hashing.Spec {
	return hashing.Spec{
		Kind:       hashing.Kind(s.Implementation),
		WorkFactor: s.WorkFactor,
		Digest:     s.Digest,
		Policy: hashing.Policy{
			MinLength:            s.MinLength,
			MaxLength:            s.MaxLength,
			MinDigits:            s.MinDigits,
			MinUpperCaseLetters:  s.MinUpperCaseLetters,
			MinLowerCaseLetters:  s.MinLowerCaseLetters,
			MinSpecialCharacters: s.MinSpecialCharacters,
			SpecialCharacters:    s.SpecialCharacterSet,
			DaysValid:            s.DaysValid,
		},
	}
}

// Build constructs the strategy registry and the service options described
// by c.  It fails when any strategy is invalid, the registry is empty, or the
// default strategy is not registered.
func (c Credentials) Build(logger *zap.Logger) (*hashing.Registry, []credential.Option, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entropy := &hashing.Entropy{
		AllowDegraded: c.AllowDegradedEntropy,
		Logger:        logger,
	}

	ids := make([]string, 0, len(c.Strategies))
	for id := range c.Strategies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reg := hashing.NewRegistry(c.DefaultStrategy)
	for _, id := range ids {
		s, err := hashing.NewStrategy(c.Strategies[id].Spec(), entropy)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "strategy %q", id)
		}
		if err := reg.Register(id, s); err != nil {
			return nil, nil, errors.Wrapf(err, "register strategy %q", id)
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, nil, errors.Wrap(err, "credentials")
	}

	if c.AllowDegradedEntropy {
		logger.Warn("config: degraded entropy fallback enabled", zap.Error(hashing.ErrDegradedEntropy))
	}

	opts := []credential.Option{
		credential.WithAutoUpgrade(c.AutoUpgrade),
		credential.WithRehash(c.RehashOnCostChange),
		credential.WithLogger(logger),
		credential.WithResetNamespace(c.ResetNamespace),
	}
	return reg, opts, nil
}
