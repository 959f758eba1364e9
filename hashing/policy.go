package hashing

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultSpecialCharacters is the alphabet counted as "special" when a
// [Policy] does not override it.
const DefaultSpecialCharacters = " '~!@#£$%^&*()_-+=[]\\|{};:\".,/<>?`"

// DefaultMinLength is the minimum password length applied by
// [DefaultPolicy].
const DefaultMinLength = 6

// Rule names one complexity check.  The string values are stable and are
// intended to be used as message-catalog keys by the caller.
type Rule string

const (
	// RuleTooShort is reported when the password has fewer runes than MinLength.
	RuleTooShort Rule = "tooShort"
	// RuleTooLong is reported when the password has more runes than MaxLength.
	RuleTooLong Rule = "tooLong"
	// RuleDigits is reported when the password has fewer than MinDigits digits.
	RuleDigits Rule = "digits"
	// RuleUpperCaseLetters is reported when the password has fewer than
	// MinUpperCaseLetters upper case letters.
	RuleUpperCaseLetters Rule = "uppercaseLetters"
	// RuleLowerCaseLetters is reported when the password has fewer than
	// MinLowerCaseLetters lower case letters.
	RuleLowerCaseLetters Rule = "lowercaseLetters"
	// RuleSpecialCharacters is reported when the password has fewer than
	// MinSpecialCharacters characters from the special alphabet.
	RuleSpecialCharacters Rule = "specialCharacters"
)

// ValidationError reports the first complexity rule a password violated.
// It wraps [ErrPasswordPolicy].
type ValidationError struct {
	// Rule is the violated rule.
	Rule Rule
	// Limit is the configured bound for Rule (e.g. the minimum length).
	Limit int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("hashing: password policy violation: %s (limit %d)", e.Rule, e.Limit)
}

func (e *ValidationError) Unwrap() error { return ErrPasswordPolicy }

// Policy is the complexity policy attached to a strategy.
// A zero value in any numeric field means "no requirement".
type Policy struct {
	MinLength            int
	MaxLength            int
	MinDigits            int
	MinUpperCaseLetters  int
	MinLowerCaseLetters  int
	MinSpecialCharacters int

	// SpecialCharacters is the alphabet counted by MinSpecialCharacters.
	// Empty means [DefaultSpecialCharacters].
	SpecialCharacters string

	// DaysValid is the number of days a password stays valid before it
	// should be rotated.  Zero means passwords never expire.
	DaysValid int
}

// DefaultPolicy returns the policy used when a strategy is configured
// without explicit complexity requirements.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:         DefaultMinLength,
		SpecialCharacters: DefaultSpecialCharacters,
	}
}

func (p Policy) check() error {
	for name, v := range map[string]int{
		"minLength":            p.MinLength,
		"maxLength":            p.MaxLength,
		"minDigits":            p.MinDigits,
		"minUpperCaseLetters":  p.MinUpperCaseLetters,
		"minLowerCaseLetters":  p.MinLowerCaseLetters,
		"minSpecialCharacters": p.MinSpecialCharacters,
		"daysValid":            p.DaysValid,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %d", ErrInvalidOption, name, v)
		}
	}
	if p.MaxLength > 0 && p.MinLength > p.MaxLength {
		return fmt.Errorf("%w: minLength %d exceeds maxLength %d", ErrInvalidOption, p.MinLength, p.MaxLength)
	}
	return nil
}

// Validate checks password against the policy and returns a
// [*ValidationError] naming the first violated rule, or nil.
//
// Rules are evaluated in a fixed order: length bounds, digits, upper case,
// lower case, special characters.  Only the first failure is reported.
// Lengths are counted in runes.
func (p Policy) Validate(password string) error {
	length := utf8.RuneCountInString(password)
	if p.MinLength > 0 && length < p.MinLength {
		return &ValidationError{Rule: RuleTooShort, Limit: p.MinLength}
	}
	if p.MaxLength > 0 && length > p.MaxLength {
		return &ValidationError{Rule: RuleTooLong, Limit: p.MaxLength}
	}

	var digits, upper, lower, special int
	specials := p.SpecialCharacters
	if specials == "" {
		specials = DefaultSpecialCharacters
	}
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'A' && r <= 'Z':
			upper++
		case r >= 'a' && r <= 'z':
			lower++
		}
		if strings.ContainsRune(specials, r) {
			special++
		}
	}

	if digits < p.MinDigits {
		return &ValidationError{Rule: RuleDigits, Limit: p.MinDigits}
	}
	if upper < p.MinUpperCaseLetters {
		return &ValidationError{Rule: RuleUpperCaseLetters, Limit: p.MinUpperCaseLetters}
	}
	if lower < p.MinLowerCaseLetters {
		return &ValidationError{Rule: RuleLowerCaseLetters, Limit: p.MinLowerCaseLetters}
	}
	if special < p.MinSpecialCharacters {
		return &ValidationError{Rule: RuleSpecialCharacters, Limit: p.MinSpecialCharacters}
	}
	return nil
}

// Covers reports whether every password accepted by p is also accepted by
// other's minimums, i.e. no minimum in other exceeds the one in p.
// MaxLength is not compared.
func (p Policy) Covers(other Policy) bool {
	return other.MinLength <= p.MinLength &&
		other.MinDigits <= p.MinDigits &&
		other.MinUpperCaseLetters <= p.MinUpperCaseLetters &&
		other.MinLowerCaseLetters <= p.MinLowerCaseLetters &&
		other.MinSpecialCharacters <= p.MinSpecialCharacters
}
