package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("auth secret is not configured")
	ErrEmptyUserID   = errors.New("user id must not be empty")
)

// TokenSigner stands in for the external identity service: it mints and
// verifies compact HMAC bearer tokens carrying a user ID and an expiry.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenSigner returns a signer with the given secret and token lifetime.
func NewTokenSigner(secret []byte, ttl time.Duration) *TokenSigner {
	return &TokenSigner{
		secret: secret,
		ttl:    ttl,
	}
}

// Issue mints a token for the provided user ID.
func (s *TokenSigner) Issue(userID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if userID == "" {
		return "", ErrEmptyUserID
	}

	payload := make([]byte, 4+len(userID)) // 4 bytes expiry + user id
	expires := uint32(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint32(payload[:4], expires)
	copy(payload[4:], userID)

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := s.sign(payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s", payloadEnc, sigEnc), nil
}

// Verify checks signature integrity and TTL and returns the embedded user ID.
func (s *TokenSigner) Verify(token string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}

	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", ErrInvalidToken
	}
	if len(sigProvided) != 16 {
		return "", ErrInvalidToken
	}

	expected := s.sign(payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return "", ErrInvalidToken
	}

	if len(payload) < 5 {
		return "", ErrInvalidToken
	}
	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return "", ErrInvalidToken
	}

	return string(payload[4:]), nil
}

func (s *TokenSigner) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}
