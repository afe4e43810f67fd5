// Package servicetoken issues and validates the short-lived HS256 bearer
// tokens used between contactsync and the legacy and target APIs.
package servicetoken

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid service token")

// Claims identifies the calling service.
type Claims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// Service signs tokens for outbound calls and validates inbound ones.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	clientID   string
	ttl        time.Duration
	now        func() time.Time

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

func New(signingKey, issuer, audience, clientID string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		clientID:   clientID,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Token returns a cached token, minting a new one when less than a fifth of
// its lifetime remains.
func (s *Service) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != "" && now.Add(s.ttl/5).Before(s.expiresAt) {
		return s.cached, nil
	}

	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID: s.clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	s.cached = signed
	s.expiresAt = expiresAt
	return signed, nil
}

// Validate checks signature, expiry, issuer and audience.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
