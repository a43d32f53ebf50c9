package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/auth-api/internal/core/domain"
)

// DefaultTokenTTL is used when TokenConfig.TTL is not positive.
const DefaultTokenTTL = 7 * 24 * time.Hour

// TokenConfig is the immutable signing configuration, built once at startup.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// JWTIssuer signs and verifies HS256 bearer tokens whose subject is a user ID.
// It implements both ports.TokenIssuer and ports.TokenVerifier.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customises a JWTIssuer.
type Option func(*JWTIssuer)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(i *JWTIssuer) { i.now = now }
}

func NewJWTIssuer(cfg TokenConfig, opts ...Option) (*JWTIssuer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	i := &JWTIssuer{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a token for subjectID that expires after the configured TTL.
func (i *JWTIssuer) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("token: subject is required")
	}
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subjectID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
// Every failure is reported as domain.ErrInvalidToken.
func (i *JWTIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
