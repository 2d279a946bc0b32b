package auth

import (
	"crypto/sha256"
	"errors"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// Link purposes. A token signed for one purpose is rejected for any other.
const (
	PurposeConfirmEmail  = "confirm-email"
	PurposePasswordReset = "password-reset"
)

// ErrInvalidLink is returned for link tokens that are malformed, expired or
// were issued for another purpose.
var ErrInvalidLink = errors.New("invalid or expired link")

// LinkSigner creates the time-limited tokens embedded in confirmation and
// password reset emails. Tokens are fernet messages: encrypted, authenticated
// and URL-safe.
type LinkSigner struct {
	key *fernet.Key
	ttl time.Duration
}

// NewLinkSigner derives the fernet key from secret. Tokens older than ttl are rejected.
func NewLinkSigner(secret string, ttl time.Duration) *LinkSigner {
	sum := sha256.Sum256([]byte("link-signer:" + secret))
	key := fernet.Key(sum)
	return &LinkSigner{key: &key, ttl: ttl}
}

// Sign returns a token binding email to purpose.
func (s *LinkSigner) Sign(purpose, email string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(purpose+"\n"+email), s.key)
	if err != nil {
		return "", err
	}
	return string(tok), nil
}

// Verify returns the email bound to token if it is valid for purpose.
func (s *LinkSigner) Verify(purpose, token string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(token), s.ttl, []*fernet.Key{s.key})
	if msg == nil {
		return "", ErrInvalidLink
	}

	gotPurpose, email, ok := strings.Cut(string(msg), "\n")
	if !ok || gotPurpose != purpose || email == "" {
		return "", ErrInvalidLink
	}
	return email, nil
}
