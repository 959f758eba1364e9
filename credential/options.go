package credential

import (
	"time"

	"go.uber.org/zap"
)

// DefaultResetNamespace prefixes every reset code digest.
const DefaultResetNamespace = "credential.reset"

type config struct {
	autoUpgrade    bool
	rehash         bool
	logger         *zap.Logger
	now            func() time.Time
	resetNamespace string
}

func defaultConfig() config {
	return config{
		autoUpgrade:    true,
		logger:         zap.NewNop(),
		now:            time.Now,
		resetNamespace: DefaultResetNamespace,
	}
}

// Option configures a [Service].
type Option func(*config)

// WithAutoUpgrade enables or disables re-encoding credentials under the
// default strategy after a successful login.  Enabled by default.
func WithAutoUpgrade(enabled bool) Option {
	return func(c *config) { c.autoUpgrade = enabled }
}

// WithRehash enables re-encoding credentials that are already on their
// target strategy when that strategy reports [hashing.Rehasher.NeedsRehash],
// e.g. after the bcrypt cost was raised.  Disabled by default.
func WithRehash(enabled bool) Option {
	return func(c *config) { c.rehash = enabled }
}

// WithLogger sets the logger.  A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now, used for password-change stamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithResetNamespace sets the namespace mixed into reset codes.  Services
// with different namespaces produce unrelated codes for the same record.
func WithResetNamespace(ns string) Option {
	return func(c *config) {
		if ns != "" {
			c.resetNamespace = ns
		}
	}
}
