package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign(t *testing.T) {
	payload := []byte(`{"event_type":"MODEL_VERSION_CREATED"}`)
	secret := []byte("top-secret")

	got := Sign(payload, secret)

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	want := hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, want, got)
	assert.Len(t, got, 64, "sha256 hex digest is 64 characters")
}

func TestSign_DifferentSecretsDifferentSignatures(t *testing.T) {
	payload := []byte("same payload")
	a := Sign(payload, []byte("secret-a"))
	b := Sign(payload, []byte("secret-b"))
	assert.NotEqual(t, a, b)
}

func TestSign_Deterministic(t *testing.T) {
	payload := []byte("same payload")
	secret := []byte("secret")
	assert.Equal(t, Sign(payload, secret), Sign(payload, secret))
}
