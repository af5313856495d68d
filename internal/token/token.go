// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies the signed action tokens embedded in
// confirm and unsubscribe links. Tokens are self-contained: an identity,
// an expiry and an HMAC over both. No server-side state is kept.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidToken is returned for malformed, tampered or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Codec signs and verifies action tokens with a shared secret.
//
// The wire format is "base64(identity.expiry).hex(mac)" so tokens survive
// transport in a URL query parameter.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// New creates a codec for the given secret. An empty secret still produces
// a working codec; deployments must guarantee a configured secret.
func New(secret string) *Codec {
	return &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue creates a signed token authorizing an action for identity until
// ttl from now.
func (c *Codec) Issue(identity string, ttl time.Duration) string {
	exp := c.now().Add(ttl).Unix()
	payload := fmt.Sprintf("%s.%d", identity, exp)
	return base64.StdEncoding.EncodeToString([]byte(payload)) + "." + hex.EncodeToString(c.sign(payload))
}

// Verify checks the token's signature and expiry and returns the identity
// it was issued for. The identity is returned as encoded; callers normalize.
func (c *Codec) Verify(tok string) (string, error) {
	lastDot := strings.LastIndex(tok, ".")
	if lastDot == -1 {
		return "", ErrInvalidToken
	}

	decoded, err := base64.StdEncoding.DecodeString(tok[:lastDot])
	if err != nil {
		return "", ErrInvalidToken
	}

	// The expiry never contains a dot, the identity may.
	payload := string(decoded)
	sep := strings.LastIndex(payload, ".")
	if sep <= 0 {
		return "", ErrInvalidToken
	}
	identity := payload[:sep]

	exp, err := strconv.ParseInt(payload[sep+1:], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}
	if !c.now().Before(time.Unix(exp, 0)) {
		return "", ErrInvalidToken
	}

	mac, err := hex.DecodeString(tok[lastDot+1:])
	if err != nil {
		return "", ErrInvalidToken
	}
	if !hmac.Equal(mac, c.sign(payload)) {
		return "", ErrInvalidToken
	}

	return identity, nil
}

func (c *Codec) sign(payload string) []byte {
	h := hmac.New(sha256.New, c.secret)
	h.Write([]byte(payload))
	return h.Sum(nil)
}
