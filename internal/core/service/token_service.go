package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gkats/catalog-api/internal/core/domain"
)

// MinSigningKeyLen is the shortest HMAC key accepted for HS256.
const MinSigningKeyLen = 32

// registered claim names that extra claims may not override.
var reservedClaims = map[string]struct{}{
	"sub": {}, "iat": {}, "exp": {}, "nbf": {}, "iss": {}, "aud": {}, "jti": {},
}

// JWTService issues and validates HS256 JSON Web Tokens.
type JWTService struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// JWTOption customises a JWTService.
type JWTOption func(*JWTService)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService returns a token service signing with key. The key is the
// decoded secret; it must be at least MinSigningKeyLen bytes and ttl must be
// positive.
func NewJWTService(key []byte, ttl time.Duration, opts ...JWTOption) (*JWTService, error) {
	if len(key) < MinSigningKeyLen {
		return nil, fmt.Errorf("jwt: signing key must be at least %d bytes, got %d", MinSigningKeyLen, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwt: token ttl must be positive, got %s", ttl)
	}

	s := &JWTService{
		key: append([]byte(nil), key...),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	return s, nil
}

// TTL reports the configured token lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject. Extra claims are copied into the payload
// except for registered claim names, which the service always sets itself.
func (s *JWTService) Issue(subject string, extra map[string]any) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("jwt: empty subject")
	}

	now := s.now().Truncate(time.Second)
	claims := jwt.MapClaims{}
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and then the expiry of token. Failures are
// domain.ErrTokenInvalid or domain.ErrTokenExpired.
func (s *JWTService) Validate(token string) (*domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		// The parser checks the signature before any claim, so an expiry
		// error implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", domain.ErrTokenInvalid)
	}

	out := &domain.TokenClaims{
		Subject:   sub,
		ExpiresAt: exp.Time,
		Extra:     make(map[string]any),
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	for k, v := range claims {
		if _, reserved := reservedClaims[k]; !reserved {
			out.Extra[k] = v
		}
	}
	return out, nil
}

// ExtractSubject validates token and returns its subject.
func (s *JWTService) ExtractSubject(token string) (string, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
