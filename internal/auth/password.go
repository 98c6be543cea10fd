package auth

import "golang.org/x/crypto/bcrypt"

// bcrypt ignores everything past 72 bytes; truncate explicitly so hashing
// and verification agree on long passwords.
const maxPasswordBytes = 72

// HashPassword hashes a plain password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	hash, err := bcrypt.GenerateFromPassword(b, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plain password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), b) == nil
}
