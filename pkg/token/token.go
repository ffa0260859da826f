package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when a token cannot be decoded: wrong segment
// count, invalid base64, or an unparseable JSON payload.
var ErrMalformed = errors.New("token: malformed token")

// ExpiryWindow is the default "expiring soon" horizon. A token whose
// remaining lifetime is below this window should be treated as about to lapse.
const ExpiryWindow = 5 * time.Minute

// Payload is the decoded, unverified payload segment of a bearer token.
// Signature verification is the server's job; the client only reads the
// claims it needs to decide whether a credential is still worth presenting.
type Payload struct {
	// Subject is the `sub` claim, the user ID the token was issued for.
	Subject string

	// ExpiresAt is the `exp` claim. Zero when the claim is absent; a token
	// without an expiry is never trusted as non-expiring.
	ExpiresAt time.Time

	// User is the optional embedded `user` claim, left raw so callers can
	// unmarshal it into their own profile type.
	User json.RawMessage
}

// HasExpiry reports whether the payload carried a numeric `exp` claim.
func (p *Payload) HasExpiry() bool {
	return p != nil && !p.ExpiresAt.IsZero()
}

type payloadClaims struct {
	jwt.RegisteredClaims
	User json.RawMessage `json:"user,omitempty"`
}

var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Decode splits the token into its three segments and decodes the payload.
// The signature is not verified. Returns ErrMalformed for anything that is
// not a structurally valid token.
func Decode(tok string) (*Payload, error) {
	var claims payloadClaims
	if _, _, err := parser.ParseUnverified(tok, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p := &Payload{
		Subject: claims.Subject,
		User:    claims.User,
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// IsExpired reports whether the payload is expired at the given instant.
// A payload without an `exp` claim counts as expired: an untrusted token,
// not an eternal one.
func IsExpired(p *Payload, now time.Time) bool {
	if !p.HasExpiry() {
		return true
	}
	return !p.ExpiresAt.After(now)
}

// SecondsRemaining returns the whole seconds until expiry, never negative.
// The second return is false when the payload carries no `exp` claim.
func SecondsRemaining(p *Payload, now time.Time) (int64, bool) {
	if !p.HasExpiry() {
		return 0, false
	}
	remaining := p.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0, true
	}
	return int64(remaining / time.Second), true
}

// ExpiresWithin reports whether the payload expires inside the given window.
// A payload without an `exp` claim is treated as expiring immediately.
func ExpiresWithin(p *Payload, now time.Time, window time.Duration) bool {
	if !p.HasExpiry() {
		return true
	}
	return p.ExpiresAt.Sub(now) < window
}

// Active reports whether the token string decodes cleanly and is not expired.
// This is the "may I treat the holder as logged in" predicate: any decode
// failure yields false.
func Active(tok string, now time.Time) bool {
	if tok == "" {
		return false
	}
	p, err := Decode(tok)
	if err != nil {
		return false
	}
	return !IsExpired(p, now)
}

// ExpiringSoon reports whether the token string expires inside the window.
// This is the "should I warn or renew" predicate: any decode failure yields
// true, the conservative answer for this question. Note the deliberate
// asymmetry with Active, which fails closed in the opposite direction.
func ExpiringSoon(tok string, now time.Time, window time.Duration) bool {
	p, err := Decode(tok)
	if err != nil {
		return true
	}
	return ExpiresWithin(p, now, window)
}

// Remaining returns the time until the token expires, or zero and false when
// the token is malformed or carries no expiry.
func Remaining(tok string, now time.Time) (time.Duration, bool) {
	p, err := Decode(tok)
	if err != nil {
		return 0, false
	}
	secs, ok := SecondsRemaining(p, now)
	if !ok {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
