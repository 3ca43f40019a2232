// Package admin authenticates the administrative panel. Credentials are a
// single configured username and password; sessions are HS256 tokens.
package admin

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hackgods/saude-connect/internal/apperr"
)

const issuer = "saude-connect"

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid username or password")
	ErrInvalidToken       = apperr.New(apperr.ErrUnauthorized, "invalid or expired admin token")
)

type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Session struct {
	Admin     Profile   `json:"admin"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Authenticator struct {
	username string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthenticator(username, password, secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Authenticator{
		username: username,
		password: password,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks the credentials and issues a signed token.
func (a *Authenticator) Login(username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	if !userOK || !passOK || a.username == "" {
		return Session{}, ErrInvalidCredentials
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   a.username,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Admin:     Profile{Username: a.username, Role: "admin"},
		Token:     token,
		ExpiresAt: expires.UTC(),
	}, nil
}

// Verify parses a token issued by Login and returns its admin profile.
func (a *Authenticator) Verify(token string) (Profile, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("token not valid")
		}
		return Profile{}, errors.Join(ErrInvalidToken, err)
	}
	if claims.Subject != a.username {
		return Profile{}, ErrInvalidToken
	}
	return Profile{Username: claims.Subject, Role: "admin"}, nil
}
