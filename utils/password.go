package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt will accept.
const MaxPasswordBytes = 72

func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether plain matches digest. A malformed digest is a mismatch.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
