// Package session issues the dashboard's own session cookie and keeps the
// upstream client and controller that belong to each session.
package session

import (
	"errors"
	"fmt"
	"time"

	"complaintdesk/dashboard/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "complaintdesk-dashboard"

var ErrInvalidToken = errors.New("session: invalid or expired token")

// Claims identify a dashboard session and the browser profile behind it.
type Claims struct {
	SessionID string      `json:"sid"`
	Profile   string      `json:"profile"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for a new session of user on profile.
func (i *Issuer) Issue(profile string, user models.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: NewID(),
		Profile:   profile,
		Email:     user.Email,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates the signature and expiry of a session token.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuerName))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TTL is the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// NewID returns a random identifier for sessions and browser profiles.
func NewID() string {
	return uuid.NewString()
}

// ValidProfile reports whether p looks like an ID made by NewID.
func ValidProfile(p string) bool {
	_, err := uuid.Parse(p)
	return err == nil
}
