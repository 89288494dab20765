package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ironlog/ironlog/internal"
)

// Config holds token verification settings.
type Config struct {
	Secret   string        `env:"AUTH_JWT_SECRET,required"`
	Issuer   string        `env:"AUTH_JWT_ISSUER"`
	Audience string        `env:"AUTH_JWT_AUDIENCE"`
	Leeway   time.Duration `env:"AUTH_JWT_LEEWAY" envDefault:"30s"`
}

// Claims is the token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier checks tokens and implements the function Authenticator.
type Verifier struct {
	now    func() time.Time
	secret []byte
	cfg    Config
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier creates a Verifier. The secret must not be blank.
func NewVerifier(cfg Config, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSecret
	}
	v := &Verifier{
		now:    time.Now,
		secret: []byte(cfg.Secret),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Authenticate verifies token and returns the principal it names.
func (v *Verifier) Authenticate(_ context.Context, token string) (internal.Principal, error) {
	claims, err := v.Verify(token)
	if err != nil {
		return internal.Principal{}, err
	}
	return internal.Principal{ID: claims.Subject, Email: claims.Email}, nil
}

// Verify parses and validates token.
func (v *Verifier) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...); err != nil {
		return nil, mapJWTError(err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSubject
	}
	return &claims, nil
}

// Sign issues a token for p valid for ttl. It uses the configured issuer and
// audience so the result passes Verify.
func (v *Verifier) Sign(p internal.Principal, ttl time.Duration) (string, error) {
	now := v.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    v.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: p.Email,
	}
	if v.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.cfg.Audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// mapJWTError collapses jwt library errors into the package sentinels,
// keeping the original for logging.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return errors.Join(ErrExpiredToken, err)
	}
	return errors.Join(ErrInvalidToken, err)
}
