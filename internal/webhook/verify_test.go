package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsReferenceSignature(t *testing.T) {
	secret := "top-secret"
	timestamp := "1700000000"
	body := []byte(`{"event":"meeting.started","payload":{"object":{"id":123}}}`)

	v := NewVerifier(secret)
	assert.True(t, v.Verify(body, timestamp, signBody(secret, timestamp, body)))
}

func TestVerifyRejectsTampering(t *testing.T) {
	secret := "top-secret"
	timestamp := "1700000000"
	body := []byte(`{"event":"meeting.started"}`)
	sig := signBody(secret, timestamp, body)

	tests := []struct {
		name      string
		body      []byte
		timestamp string
		secret    string
	}{
		{"flipped body byte", []byte(`{"event":"meeting.startee"}`), timestamp, secret},
		{"different timestamp", body, "1700000001", secret},
		{"different secret", body, timestamp, "other-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, NewVerifier(tt.secret).Verify(tt.body, tt.timestamp, sig))
		})
	}
}

func TestVerifyFailsClosed(t *testing.T) {
	body := []byte(`{}`)
	sig := signBody("secret", "ts", body)

	assert.False(t, NewVerifier("").Verify(body, "ts", signBody("", "ts", body)),
		"empty secret must never verify")
	assert.False(t, NewVerifier("secret").Verify(body, "", sig))
	assert.False(t, NewVerifier("secret").Verify(body, "ts", ""))
}

func TestRespondToChallenge(t *testing.T) {
	v := NewVerifier("secret")

	first := v.RespondToChallenge("token-abc")
	second := v.RespondToChallenge("token-abc")
	assert.Equal(t, first, second, "challenge response must be deterministic")
	assert.Equal(t, "token-abc", first.PlainToken)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("token-abc"))
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), first.EncryptedToken)
}
