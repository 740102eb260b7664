package secrets

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashSecret(t *testing.T) {
	hash, err := HashSecret("s3cret-token", "pepper")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, fmt.Sprintf("m=%d,t=%d,p=%d", MemoryMB*1024, Time, Threads), parts[3])

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	require.NoError(t, err)
	assert.Len(t, salt, SaltBytes)
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	require.NoError(t, err)
	assert.Len(t, key, KeyLen)

	again, err := HashSecret("s3cret-token", "pepper")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must be random")

	_, err = HashSecret("", "pepper")
	assert.Error(t, err)
}

func TestVerifier(t *testing.T) {
	hash, err := HashSecret("s3cret-token", "pepper")
	require.NoError(t, err)

	v, err := NewVerifier(hash, "pepper")
	require.NoError(t, err)
	assert.True(t, v.Verify("s3cret-token"))
	assert.False(t, v.Verify("s3cret-tokeN"))
	assert.False(t, v.Verify(""))

	wrongPepper, err := NewVerifier(hash, "other")
	require.NoError(t, err)
	assert.False(t, wrongPepper.Verify("s3cret-token"))

	ok, err := VerifySecret("s3cret-token", "pepper", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewVerifier_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		phc     string
		wantErr error
	}{
		{name: "other algorithm", phc: "$bcrypt$invalid", wantErr: ErrUnsupportedHash},
		{name: "missing parts", phc: fmt.Sprintf("$argon2id$v=19$m=%d", MemoryMB*1024), wantErr: ErrInvalidPHC},
		{name: "bad params", phc: "$argon2id$v=19$invalid$c2FsdA$a2V5", wantErr: ErrInvalidPHC},
		{name: "bad salt", phc: "$argon2id$v=19$m=16384,t=2,p=1$!!$a2V5", wantErr: ErrInvalidPHC},
		{name: "bad key", phc: "$argon2id$v=19$m=16384,t=2,p=1$c2FsdA$!!", wantErr: ErrInvalidPHC},
		{name: "empty key", phc: "$argon2id$v=19$m=16384,t=2,p=1$c2FsdA$", wantErr: ErrInvalidPHC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(tt.phc, "pepper")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifier_ShortKeyDoesNotMatch(t *testing.T) {
	hash, err := HashSecret("s3cret-token", "pepper")
	require.NoError(t, err)
	parts := strings.Split(hash, "$")
	parts[5] = "c2hvcnQ"

	v, err := NewVerifier(strings.Join(parts, "$"), "pepper")
	require.NoError(t, err)
	assert.False(t, v.Verify("s3cret-token"))
}
