package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/JakubMikolajczyk/Library/internal/user"
)

var (
	// ErrTokenExpired marks a token whose signature and claims are fine but
	// whose expiry is in the past. The parsed claims are still returned so
	// callers can read the token id for ledger cleanup.
	ErrTokenExpired = errors.New("token expired")
	// ErrMalformedToken marks a token with a bad signature or missing claims.
	ErrMalformedToken = errors.New("malformed token")
)

// AccessClaims is the claim set of short-lived access tokens. The token id
// shared with the paired refresh token travels in RegisteredClaims.ID (jti).
type AccessClaims struct {
	Role user.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of long-lived refresh tokens.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

func IssueAccessToken(subject, tokenID string, role user.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func IssueRefreshToken(subject, tokenID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ReissueAccessToken mints a fresh access token carrying the same subject
// and token id as the presented refresh claims. It never touches storage;
// the caller must have validated the token id against the ledger first.
func ReissueAccessToken(claims *RefreshClaims, role user.Role, secret string, ttl time.Duration) (string, error) {
	return IssueAccessToken(claims.Subject, claims.ID, role, secret, ttl)
}

func ParseAccessToken(tokenString, secret string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	err := parseClaims(tokenString, secret, claims)
	if err != nil && !errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	return claims, err
}

func ParseRefreshToken(tokenString, secret string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	err := parseClaims(tokenString, secret, claims)
	if err != nil && !errors.Is(err, ErrTokenExpired) {
		return nil, err
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, ErrMalformedToken
	}
	return claims, err
}

func parseClaims(tokenString, secret string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		var vErr *jwt.ValidationError
		// Expiry is the one validation failure callers need to see through:
		// the claims were decoded and the signature checked before the
		// expiry check ran.
		if errors.As(err, &vErr) && vErr.Errors == jwt.ValidationErrorExpired {
			return ErrTokenExpired
		}
		return ErrMalformedToken
	}
	if !token.Valid {
		return ErrMalformedToken
	}
	return nil
}
