// Package webhook verifies and routes inbound platform webhooks.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier validates webhook signatures against the shared secret and
// answers the platform's endpoint URL-validation challenge.
type Verifier struct {
	secret string
}

// NewVerifier creates a verifier. An empty secret makes Verify reject
// everything: an unconfigured secret never means "verification off".
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify checks the signature header against an HMAC computed over the
// exact bytes received: "v0=" + hex(HMAC-SHA256(secret, "v0:"+ts+":"+body)).
// Fails closed when the secret or either header is missing. The compare
// is constant-time.
func (v *Verifier) Verify(rawBody []byte, timestamp, signature string) bool {
	if v.secret == "" || timestamp == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(rawBody)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ChallengeResponse is the body returned for endpoint.url_validation events.
type ChallengeResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// RespondToChallenge answers the URL-validation handshake:
// encryptedToken = hex(HMAC-SHA256(secret, plainToken)). Pure; no
// session state is touched.
func (v *Verifier) RespondToChallenge(plainToken string) ChallengeResponse {
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(plainToken))
	return ChallengeResponse{
		PlainToken:     plainToken,
		EncryptedToken: hex.EncodeToString(mac.Sum(nil)),
	}
}
