package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// SessionCookieName matches the cookie the clinic frontend already sends.
const SessionCookieName = "__session"

type sessionClaims struct {
	ClinicID string `json:"clinicId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager mints and verifies the HS256 session cookie payload.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration) (*SessionManager, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a signed session token for the user.
func (m *SessionManager) Issue(user *domain.User) (string, error) {
	now := m.now().UTC()
	claims := sessionClaims{
		ClinicID: user.ClinicID,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the authenticated principal.
func (m *SessionManager) Verify(tokenString string) (*domain.Principal, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify session", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify session", fmt.Errorf("invalid session token"))
	}

	return &domain.Principal{
		UserID:   claims.Subject,
		ClinicID: claims.ClinicID,
		Role:     domain.UserRole(claims.Role),
	}, nil
}
