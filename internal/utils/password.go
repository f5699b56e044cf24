package utils

import "golang.org/x/crypto/bcrypt"

// HashToken returns the bcrypt hash of plain using the given cost.  It is
// used to produce ADMIN_OVERRIDE_TOKEN_BCRYPT values.
func HashToken(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyToken safely compares a bcrypt hash and a plain token.
func VerifyToken(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
