package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/smartsupply/internal"
)

// Claims carried by an access token. The subject is the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenGenerator issues and verifies stateless access tokens.
type TokenGenerator interface {
	Issue(subjectID, email, role string) (string, error)
	Verify(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	Leeway time.Duration
	Issuer string

	now func() time.Time
}

// NewJWTTokenGenerator builds an HS256 generator. A non-positive ttl falls back to
// seven days and leeway is clamped to [0, 5m].
func NewJWTTokenGenerator(secret string, ttl, leeway time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = internal.DefaultTokenTTL
	}
	if leeway < 0 {
		leeway = 0
	}
	if leeway > internal.MaxTokenLeeway {
		leeway = internal.MaxTokenLeeway
	}
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		Leeway: leeway,
		now:    time.Now,
	}
}

func NewJWTTokenGeneratorFromConfig(cfg internal.SecurityConfig) *JWTTokenGenerator {
	g := NewJWTTokenGenerator(cfg.JWTSecret, cfg.TokenTTL, cfg.TokenLeeway)
	g.Issuer = cfg.JWTIssuer
	return g
}

// WithClock replaces the time source.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

func (j *JWTTokenGenerator) Issue(subjectID, email, role string) (string, error) {
	if subjectID == "" {
		return "", errors.New("issue token: empty subject")
	}

	issuedAt := j.now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(j.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm, issuer and expiry. A token is already expired at
// the instant equal to its exp claim.
func (j *JWTTokenGenerator) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid {
		return nil, internal.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
