package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"time"
)

// ResetCode returns a password-reset code for rec: the hex SHA-256 of the
// service namespace, record id, salt ("0" when empty) and encoded value.
// The code is stable until the password changes.  Single use is the
// caller's concern.
func (s *Service) ResetCode(rec Record) string {
	salt := rec.Salt()
	if salt == "" {
		salt = "0"
	}
	sum := sha256.Sum256([]byte(strings.Join([]string{
		s.cfg.resetNamespace,
		rec.ID(),
		salt,
		rec.EncodedPassword(),
	}, "|")))
	return hex.EncodeToString(sum[:])
}

// VerifyResetCode reports whether code is the current reset code of rec.
func (s *Service) VerifyResetCode(rec Record, code string) bool {
	return subtle.ConstantTimeCompare([]byte(s.ResetCode(rec)), []byte(code)) == 1
}

// PasswordExpired reports whether rec's password is older than the
// DaysValid of its strategy's policy.  Records that are not [Timestamped],
// have never been stamped, or whose policy has no DaysValid never expire.
func (s *Service) PasswordExpired(rec Record) (bool, error) {
	_, strategy, err := s.registry.Resolve(rec.Strategy())
	if err != nil {
		return false, err
	}
	days := strategy.Policy().DaysValid
	if days <= 0 {
		return false, nil
	}
	ts, ok := rec.(Timestamped)
	if !ok {
		return false, nil
	}
	changed := ts.PasswordChangedAt()
	if changed.IsZero() {
		return false, nil
	}
	return s.cfg.now().After(changed.Add(time.Duration(days) * 24 * time.Hour)), nil
}
