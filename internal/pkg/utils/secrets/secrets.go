package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	Time      = 2
	MemoryMB  = 16
	Threads   = 1
	KeyLen    = 32
	SaltBytes = 16
)

var (
	ErrUnsupportedHash = errors.New("unsupported hash format")
	ErrInvalidPHC      = errors.New("invalid phc")
)

// HashSecret returns an argon2id PHC string for secret+pepper, suitable for
// root.secret_token_phc.
func HashSecret(secret, pepper string) (string, error) {
	if secret == "" {
		return "", errors.New("empty secret")
	}
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret+pepper), salt, Time, MemoryMB*1024, Threads, KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		MemoryMB*1024, Time, Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verifier checks presented secrets against one parsed PHC string.
type Verifier struct {
	pepper  string
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// NewVerifier parses phc once so a malformed hash is reported at startup.
func NewVerifier(phc, pepper string) (*Verifier, error) {
	if !strings.HasPrefix(phc, "$argon2id$") {
		return nil, ErrUnsupportedHash
	}
	parts := strings.Split(phc, "$")
	if len(parts) != 6 {
		return nil, ErrInvalidPHC
	}

	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return nil, fmt.Errorf("%w: params: %v", ErrInvalidPHC, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidPHC, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidPHC, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidPHC)
	}
	return &Verifier{pepper: pepper, memory: m, time: t, threads: p, salt: salt, key: key}, nil
}

func (v *Verifier) Verify(secret string) bool {
	if secret == "" {
		return false
	}
	got := argon2.IDKey([]byte(secret+v.pepper), v.salt, v.time, v.memory, v.threads, uint32(len(v.key)))
	return subtle.ConstantTimeCompare(got, v.key) == 1
}

func VerifySecret(secret, pepper, phc string) (bool, error) {
	v, err := NewVerifier(phc, pepper)
	if err != nil {
		return false, err
	}
	return v.Verify(secret), nil
}
