package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway tolerates small clock drift between the issuer and this service.
const DefaultLeeway = 30 * time.Second

// ErrMissingSubject is returned when a token carries neither a uid nor a sub claim.
var ErrMissingSubject = errors.New("jwt: missing user id claim")

// VerifierConfig bundles the configuration required to build a TokenVerifier.
type VerifierConfig struct {
	Secret string
	Issuer string
	Leeway time.Duration
	Clock  func() time.Time
}

// Claims represents the claims read from access tokens issued by the identity service.
type Claims struct {
	UserID    string `json:"uid,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the authenticated user id, preferring uid over sub.
func (c *Claims) Identity() string {
	if c == nil {
		return ""
	}
	if id := strings.TrimSpace(c.UserID); id != "" {
		return id
	}
	return strings.TrimSpace(c.RegisteredClaims.Subject)
}

// TokenVerifier validates HS256 bearer tokens. It never issues tokens.
type TokenVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewTokenVerifier constructs a TokenVerifier when provided with the required configuration.
func NewTokenVerifier(cfg VerifierConfig) (*TokenVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt: secret must be provided")
	}

	leeway := cfg.Leeway
	if leeway < 0 {
		leeway = 0
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenVerifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: leeway,
		now:    now,
	}, nil
}

// Verify parses and validates a signed JWT, returning its claims.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("jwt: token string is empty")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(options...).ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: parse token: %w", err)
	}

	if claims.Identity() == "" {
		return nil, ErrMissingSubject
	}

	return &claims, nil
}
