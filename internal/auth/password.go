package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	ModePlain  = "plain"
	ModeBcrypt = "bcrypt"
)

// PasswordHasher encodes passwords for storage and checks login attempts
// against the stored value. Compare reports a mismatch as (false, nil); an
// error means the stored value could not be checked at all.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) (bool, error)
}

// NewPasswordHasher returns the hasher for a PASSWORD_HASHING mode.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case ModePlain, "":
		return Plain{}, nil
	case ModeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing mode %q", mode)
	}
}

// Plain stores passwords as given and compares them literally.
// Not suitable for production deployments; enable bcrypt there.
type Plain struct{}

func (Plain) Hash(password string) (string, error) {
	return password, nil
}

func (Plain) Compare(stored, password string) (bool, error) {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil
}

// Bcrypt stores salted bcrypt hashes.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("generate bcrypt hash: %w", err)
	}
	return string(bytes), nil
}

// Compare fails with an error when stored is not a bcrypt hash, usually a
// plain-text row left over from before bcrypt was enabled.
func (Bcrypt) Compare(stored, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("stored password is not a valid bcrypt hash: %w", err)
	}
}
