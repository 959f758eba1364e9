package credential

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hasbyte1/go-credentials/hashing"
)

// Outcome is the result of [Service.Authenticate].
type Outcome int

const (
	// OutcomeInvalid means the password did not match.
	OutcomeInvalid Outcome = iota
	// OutcomeValid means the password matched.  The record may have been
	// upgraded or flagged with RequiresNewPassword as a side effect.
	OutcomeValid
	// OutcomeNoStrategy means the record's strategy could not be resolved.
	// It is a configuration problem, never a mismatch.
	OutcomeNoStrategy
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNoStrategy:
		return "no-strategy"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Status is the result of [Service.ChangePassword].
type Status int

const (
	// StatusChanged means the record now holds the new encoding.
	StatusChanged Status = iota + 1
	// StatusValidationFailed means the password was rejected by the default
	// strategy's policy and nothing was modified.
	StatusValidationFailed
)

func (s Status) String() string {
	switch s {
	case StatusChanged:
		return "changed"
	case StatusValidationFailed:
		return "validation-failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ChangeOptions controls [Service.ChangePassword].
type ChangeOptions struct {
	// Validate runs the default strategy's complexity policy first.
	Validate bool
	// Persist writes the changed fields through the Updater.
	Persist bool
}

// DefaultChangeOptions validates and persists.
func DefaultChangeOptions() ChangeOptions {
	return ChangeOptions{Validate: true, Persist: true}
}

// ChangeResult describes what [Service.ChangePassword] did.
type ChangeResult struct {
	Status Status
	// Violation is set when Status is StatusValidationFailed.
	Violation *hashing.ValidationError
	// Strategy is the id the record was encoded under.
	Strategy string
	// Fields lists the fields staged on the record.
	Fields []Field
}

// Service orchestrates verification, password changes and strategy
// upgrades.  It holds no per-call state and is safe for concurrent use as
// long as each call works on its own Record.
type Service struct {
	registry *hashing.Registry
	updater  Updater
	cfg      config
}

// NewService returns a Service using reg for strategy lookup and updater for
// persistence.
//
// The registry is not validated here; call [hashing.Registry.Validate] at
// start-up (config.Build does).  A registry that cannot resolve a record
// makes Authenticate report [OutcomeNoStrategy].
func NewService(reg *hashing.Registry, updater Updater, opts ...Option) (*Service, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: registry is nil", ErrMissingDependency)
	}
	if updater == nil {
		return nil, fmt.Errorf("%w: updater is nil", ErrMissingDependency)
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{registry: reg, updater: updater, cfg: cfg}, nil
}

// Registry returns the registry the service resolves strategies from.
func (s *Service) Registry() *hashing.Registry { return s.registry }

// Authenticate verifies password against rec.
//
// A mismatch is reported as [OutcomeInvalid] with a nil error.  An
// unresolvable strategy yields [OutcomeNoStrategy] and an error wrapping
// [hashing.ErrNoStrategyAvailable].  A stored value the strategy cannot
// parse yields OutcomeInvalid and the parse error.
//
// After a match the record may be re-encoded under the default strategy.
// Failures while upgrading are logged and never fail the login.
func (s *Service) Authenticate(ctx context.Context, rec Record, password string) (Outcome, error) {
	storedID := rec.Strategy()
	encoded := rec.EncodedPassword()
	salt := rec.Salt()
	username := rec.Username()

	id, strategy, err := s.registry.Resolve(storedID)
	if err != nil {
		s.cfg.logger.Error("credential: no strategy available",
			zap.String("record", rec.ID()),
			zap.String("strategy", storedID),
			zap.Error(err),
		)
		return OutcomeNoStrategy, err
	}
	strategy.SetSalt(salt)
	strategy.SetUsername(username)

	ok, err := strategy.Compare(password, encoded)
	if err != nil {
		return OutcomeInvalid, fmt.Errorf("credential: compare under %q: %w", id, err)
	}
	if !ok {
		return OutcomeInvalid, nil
	}

	switch def := s.registry.DefaultName(); {
	case s.cfg.autoUpgrade && id != def:
		s.upgrade(ctx, rec, id, strategy, password)
	case s.cfg.rehash && id == def:
		s.rehash(ctx, rec, id, strategy, encoded, password)
	}
	return OutcomeValid, nil
}

func (s *Service) upgrade(ctx context.Context, rec Record, fromID string, from hashing.Strategy, password string) {
	log := s.cfg.logger.With(
		zap.String("record", rec.ID()),
		zap.String("from", fromID),
		zap.String("to", s.registry.DefaultName()),
	)
	def, ok := s.registry.Default()
	if !ok {
		log.Error("credential: upgrade skipped, default strategy is not registered")
		return
	}

	res, err := s.ChangePassword(ctx, rec, password, ChangeOptions{
		Validate: !from.CanUpgradeTo(def),
		Persist:  true,
	})
	if err != nil {
		log.Error("credential: upgrade failed", zap.Error(err))
		return
	}
	if res.Status == StatusValidationFailed {
		rec.SetRequiresNewPassword(true)
		log.Warn("credential: upgrade refused, new password required",
			zap.String("rule", string(res.Violation.Rule)),
		)
		if err := s.updater.UpdateFields(ctx, rec, FieldRequiresNewPassword); err != nil {
			log.Error("credential: persist requires-new-password flag", zap.Error(err))
		}
		return
	}
	log.Info("credential: upgraded")
}

func (s *Service) rehash(ctx context.Context, rec Record, id string, strategy hashing.Strategy, encoded, password string) {
	rh, ok := strategy.(hashing.Rehasher)
	if !ok {
		return
	}
	needs, err := rh.NeedsRehash(encoded)
	if err != nil || !needs {
		return
	}
	log := s.cfg.logger.With(zap.String("record", rec.ID()), zap.String("strategy", id))
	if _, err := s.encodeInto(ctx, rec, id, strategy.Clone(), password, true); err != nil {
		log.Error("credential: rehash failed", zap.Error(err))
		return
	}
	log.Info("credential: rehashed with current cost")
}

// ChangePassword encodes newPassword onto rec.
//
// With opts.Validate the default strategy's policy is checked first; a
// violation returns [StatusValidationFailed] and leaves rec untouched.  The
// password is encoded under the default strategy when auto-upgrade is
// enabled, otherwise under the record's current strategy.  The salt is
// always regenerated.  Strategy, salt and encoded value are staged on rec,
// together with the change time for [Timestamped] records and a cleared
// RequiresNewPassword flag when it was set.  With opts.Persist exactly those
// fields are written through the Updater.
func (s *Service) ChangePassword(ctx context.Context, rec Record, newPassword string, opts ChangeOptions) (ChangeResult, error) {
	if opts.Validate {
		def, ok := s.registry.Default()
		if !ok {
			return ChangeResult{}, fmt.Errorf("%w: default strategy %q is not registered",
				hashing.ErrNoStrategyAvailable, s.registry.DefaultName())
		}
		if err := def.Validate(newPassword); err != nil {
			var verr *hashing.ValidationError
			if errors.As(err, &verr) {
				return ChangeResult{Status: StatusValidationFailed, Violation: verr}, nil
			}
			return ChangeResult{}, err
		}
	}

	var (
		id       string
		strategy hashing.Strategy
		err      error
	)
	if s.cfg.autoUpgrade {
		id = s.registry.DefaultName()
		var ok bool
		if strategy, ok = s.registry.Get(id); !ok {
			return ChangeResult{}, fmt.Errorf("%w: default strategy %q is not registered",
				hashing.ErrNoStrategyAvailable, id)
		}
	} else if id, strategy, err = s.registry.Resolve(rec.Strategy()); err != nil {
		return ChangeResult{}, err
	}

	return s.encodeInto(ctx, rec, id, strategy, newPassword, opts.Persist)
}

// encodeInto encodes password with a fresh salt, stages the result on rec
// and optionally persists it.
func (s *Service) encodeInto(ctx context.Context, rec Record, id string, strategy hashing.Strategy, password string, persist bool) (ChangeResult, error) {
	strategy.SetUsername(rec.Username())
	salt, err := strategy.Salt(true)
	if err != nil {
		return ChangeResult{}, fmt.Errorf("credential: generate salt: %w", err)
	}
	encoded, err := strategy.Encode(password)
	if err != nil {
		return ChangeResult{}, fmt.Errorf("credential: encode under %q: %w", id, err)
	}

	rec.SetStrategy(id)
	rec.SetSalt(salt)
	rec.SetEncodedPassword(encoded)
	fields := []Field{FieldStrategy, FieldSalt, FieldEncodedPassword}
	if ts, ok := rec.(Timestamped); ok {
		ts.SetPasswordChangedAt(s.cfg.now().UTC())
		fields = append(fields, FieldPasswordChangedAt)
	}
	if rec.RequiresNewPassword() {
		rec.SetRequiresNewPassword(false)
		fields = append(fields, FieldRequiresNewPassword)
	}

	res := ChangeResult{Status: StatusChanged, Strategy: id, Fields: fields}
	if persist {
		if err := s.updater.UpdateFields(ctx, rec, fields...); err != nil {
			return res, fmt.Errorf("credential: persist %s: %w", rec.ID(), err)
		}
	}
	return res, nil
}

// ValidatePassword checks password against the policy of the strategy rec
// resolves to.  A violation is returned as a [*hashing.ValidationError].
func (s *Service) ValidatePassword(rec Record, password string) error {
	_, strategy, err := s.registry.Resolve(rec.Strategy())
	if err != nil {
		return err
	}
	return strategy.Validate(password)
}
