// Package token generates the unguessable response tokens embedded in
// recipient links. A token is the sole credential to mutate a recipient's
// response state, so the value space must make guessing or enumeration
// computationally infeasible.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// byteLen is the raw entropy per token: 128 bits, encoded to 22 URL-safe
// characters. Uniqueness is additionally enforced by the unique index on
// recipients.token; see repo.CreateRecipient.
const byteLen = 16

// New returns a fresh URL-safe response token.
//
// It panics only if the operating system's entropy source is unavailable,
// which is a fatal configuration error: issuing predictable tokens would
// hand out response credentials to anyone.
func New() string {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("token: entropy source unavailable: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
