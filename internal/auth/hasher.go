package auth

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor. Kept at 8 so existing password hashes
// stay verifiable; raise it only together with a rehash-on-login migration.
const hashCost = 8

// HashPassword returns a salted bcrypt digest of plain. bcrypt embeds a
// fresh random salt, so two calls with the same input produce different
// digests that both verify.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the stored digest. The
// comparison runs in constant time inside bcrypt. A malformed digest is
// simply a non-match, never an error.
func CheckPassword(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
