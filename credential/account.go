package credential

import (
	"time"

	"github.com/google/uuid"
)

// State is the plain data behind an [Account].  Stores persist and restore
// it.
type State struct {
	ID                  string
	Username            string
	EncodedPassword     string
	Salt                string
	Strategy            string
	RequiresNewPassword bool
	PasswordChangedAt   time.Time
}

// Snapshot copies the current field values of rec.  The password-changed
// time is only filled for [Timestamped] records.
func Snapshot(rec Record) State {
	st := State{
		ID:                  rec.ID(),
		Username:            rec.Username(),
		EncodedPassword:     rec.EncodedPassword(),
		Salt:                rec.Salt(),
		Strategy:            rec.Strategy(),
		RequiresNewPassword: rec.RequiresNewPassword(),
	}
	if ts, ok := rec.(Timestamped); ok {
		st.PasswordChangedAt = ts.PasswordChangedAt()
	}
	return st
}

// Account is the reference [Record] implementation.  It also implements
// [Timestamped].  An Account is not safe for concurrent mutation.
type Account struct {
	st State
}

// NewAccount creates an Account for username with a random UUID id and no
// password.
func NewAccount(username string) *Account {
	return &Account{st: State{ID: uuid.NewString(), Username: username}}
}

// AccountFromState restores an Account from persisted data.
func AccountFromState(st State) *Account {
	return &Account{st: st}
}

// State returns a copy of the account's data.
func (a *Account) State() State { return a.st }

func (a *Account) ID() string       { return a.st.ID }
func (a *Account) Username() string { return a.st.Username }

func (a *Account) EncodedPassword() string     { return a.st.EncodedPassword }
func (a *Account) SetEncodedPassword(v string) { a.st.EncodedPassword = v }

func (a *Account) Salt() string     { return a.st.Salt }
func (a *Account) SetSalt(v string) { a.st.Salt = v }

func (a *Account) Strategy() string      { return a.st.Strategy }
func (a *Account) SetStrategy(id string) { a.st.Strategy = id }

func (a *Account) RequiresNewPassword() bool     { return a.st.RequiresNewPassword }
func (a *Account) SetRequiresNewPassword(v bool) { a.st.RequiresNewPassword = v }

func (a *Account) PasswordChangedAt() time.Time     { return a.st.PasswordChangedAt }
func (a *Account) SetPasswordChangedAt(t time.Time) { a.st.PasswordChangedAt = t }

var (
	_ Record      = (*Account)(nil)
	_ Timestamped = (*Account)(nil)
)
