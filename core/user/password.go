package user

import (
	"regexp"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	hashCost = 10

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

var (
	ErrInvalidCredential = errors.New("invalid credentials")

	// modular crypt format of bcrypt: $2a$, $2b$ or $2y$, 2 digit cost, 53 chars of salt + hash
	bcryptHashRegex = regexp.MustCompile(`^\$2[aby]\$\d{2}\$[./A-Za-z0-9]{53}$`)
)

// IsHashed reports whether val is already a bcrypt hash.
func IsHashed(val string) bool {
	return bcryptHashRegex.MatchString(val)
}

// HashPassword returns the salted bcrypt hash of pwd.
// pwd is returned unchanged when it is already hashed.
func HashPassword(pwd string) (string, error) {
	if pwd == "" {
		return "", ErrInvalidCredential
	}
	if IsHashed(pwd) {
		return pwd, nil
	}
	if len(pwd) > MaxPasswordBytes {
		return "", ErrInvalidCredential
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}
	return string(hash), nil
}

// VerifyPassword reports whether hash was derived from candidate.
func VerifyPassword(candidate, hash string) bool {
	if candidate == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
