package digest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const clientNonceSize = 16

// Session is the digest authentication state of one client. It is a value:
// every transition returns a new Session and leaves the receiver untouched,
// so the owner decides when the new state becomes current.
type Session struct {
	Realm       string
	Nonce       string
	Opaque      string
	Qop         string
	Algorithm   string
	NonceCount  uint32
	ClientNonce string
}

// WithChallenge overwrites the challenge parameters. The nonce count is kept,
// it only restarts with a new session.
func (s Session) WithChallenge(ch *Challenge) Session {
	s.Realm = ch.Realm
	s.Nonce = ch.Nonce
	s.Opaque = ch.Opaque
	s.Qop = ch.Qop
	s.Algorithm = ch.Algorithm
	return s
}

// Next advances the nonce count and installs a fresh client nonce, the pair
// always moves together.
func (s Session) Next(cnonce string) Session {
	s.NonceCount++
	s.ClientNonce = cnonce
	return s
}

// NC renders the nonce count as 8 zero padded digits.
func (s Session) NC() string {
	return fmt.Sprintf("%08d", s.NonceCount)
}

func (s Session) HasQop() bool {
	return len(s.Qop) != 0
}

// NewClientNonce returns 16 random bytes, hex encoded.
func NewClientNonce() (string, error) {
	buf := make([]byte, clientNonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random failed, err:%w", err)
	}
	return hex.EncodeToString(buf), nil
}
