package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the HMAC-SHA256 signature of payload using secret, returning
// the lower-case hex digest with no prefix. It is a pure function: no I/O, no
// shared state, deterministic for a given (payload, secret) pair.
//
// The wire header carries this value as "sha256=<hex>"; that prefix is added
// by the sender, not by Sign, so the return value can also be used directly
// in tests and other non-HTTP contexts.
func Sign(payload []byte, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
