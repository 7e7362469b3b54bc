// Package auth holds the value objects exchanged when an account signs up
// or signs in.
package auth

import (
	"errors"

	"affiliate-notify/internal/domain/user"
)

// bcrypt ignores everything past 72 bytes.
const MaxPasswordBytes = 72

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
)

// Credentials is what a sign-in presents. The password is checked against
// the stored hash, never stored.
type Credentials struct {
	email    user.Email
	password user.Password
}

func NewCredentials(email, password string) (Credentials, error) {
	e, err := user.NewEmail(email)
	if err != nil {
		return Credentials{}, err
	}
	p, err := newPassword(password)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{email: e, password: p}, nil
}

func (c Credentials) Email() user.Email       { return c.email }
func (c Credentials) Password() user.Password { return c.password }

// Registration is a self-service sign-up. Accounts created this way are
// always shoppers; curators and admins are promoted out of band.
type Registration struct {
	Credentials
	role user.Role
}

func NewRegistration(email, password string) (Registration, error) {
	c, err := NewCredentials(email, password)
	if err != nil {
		return Registration{}, err
	}
	return Registration{Credentials: c, role: user.RoleShopper}, nil
}

func (r Registration) Role() user.Role { return r.role }

func newPassword(s string) (user.Password, error) {
	if len(s) > MaxPasswordBytes {
		return user.Password{}, ErrPasswordTooLong
	}
	return user.NewPassword(s)
}
