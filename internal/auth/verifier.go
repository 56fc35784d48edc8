package auth

import (
	"time"

	apperrors "studysphere/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the verified identity attached to a request.
type Principal struct {
	Email string
	Role  string
}

// Verifier checks a bearer credential and returns the principal it names.
// It is stateless; every request is verified independently.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// Issuer mints a credential for a principal after login.
type Issuer interface {
	Issue(email, role string) (string, error)
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type jwtAuthority struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTAuthority(secret string, ttl time.Duration) interface {
	Verifier
	Issuer
} {
	return &jwtAuthority{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (a *jwtAuthority) Issue(email, role string) (string, error) {
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *jwtAuthority) Verify(tokenString string) (Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})

	if err != nil || !token.Valid {
		return Principal{}, apperrors.Unauthorized("invalid or expired token")
	}
	if claims.Email == "" {
		return Principal{}, apperrors.Unauthorized("token carries no principal")
	}

	return Principal{Email: claims.Email, Role: claims.Role}, nil
}
