package ticket

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"
	"strings"
)

const (
	tokenBytes = 32
	// base64url without padding of 32 bytes
	tokenLength = 43
)

var (
	ErrInvalidToken   = errors.New("invalid ticket token")
	ErrTokenGenerator = errors.New("token generation failed")
)

// TokenSource produces fresh redemption tokens.
type TokenSource interface {
	NewToken() (string, error)
}

type RandomTokenSource struct {
	reader io.Reader
}

func NewRandomTokenSource() *RandomTokenSource {
	return &RandomTokenSource{reader: rand.Reader}
}

// NewTokenSourceFromReader draws token bytes from r instead of crypto/rand.
func NewTokenSourceFromReader(r io.Reader) *RandomTokenSource {
	return &RandomTokenSource{reader: r}
}

func (s *RandomTokenSource) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return "", errors.Join(ErrTokenGenerator, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// IsWellFormed reports whether s has the shape of a minted token.
func IsWellFormed(s string) bool {
	if len(s) != tokenLength {
		return false
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	return err == nil && len(raw) == tokenBytes
}

// Fingerprint identifies a scanned value in audit rows without storing it.
func Fingerprint(scanned string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(scanned)))
	return hex.EncodeToString(sum[:8])
}
