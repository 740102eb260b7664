package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMAC256Hex(t *testing.T) {
	a := HMAC256Hex("pepper", "secret")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HMAC256Hex("pepper", "secret"))
	assert.NotEqual(t, a, HMAC256Hex("other", "secret"))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
		ok   bool
	}{
		{name: "match", got: "s3cret", want: "s3cret", ok: true},
		{name: "mismatch", got: "s3cret", want: "s3cre7", ok: false},
		{name: "prefix", got: "s3c", want: "s3cret", ok: false},
		{name: "empty presented", got: "", want: "s3cret", ok: false},
		{name: "empty configured", got: "", want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, Equal("pepper", tt.got, tt.want))
		})
	}
}
