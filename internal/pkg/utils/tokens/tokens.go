package tokens

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

func HMAC256Hex(pepper, secret string) string {
	m := hmac.New(sha256.New, []byte(pepper))
	m.Write([]byte(secret))
	return hex.EncodeToString(m.Sum(nil)) // 64 hex chars
}

// Equal compares two shared secrets in constant time. Both sides are hashed
// first so the comparison does not leak their lengths.
func Equal(pepper, got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	return hmac.Equal([]byte(HMAC256Hex(pepper, got)), []byte(HMAC256Hex(pepper, want)))
}
