package auth

import (
	"fmt"

	"ai-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the external auth provider.
type Claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 bearer tokens. This service never issues tokens;
// minting is the auth provider's job.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Identify resolves a raw token into a caller identity. An empty token is
// the anonymous identity, not an error; a malformed, forged, or expired
// token is ErrUnauthenticated.
func (v *Verifier) Identify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, nil
	}
	if len(v.secret) == 0 {
		return domain.Identity{}, fmt.Errorf("%w: no verification secret configured", domain.ErrUnauthenticated)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.UserID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: invalid claims", domain.ErrUnauthenticated)
	}

	return domain.Identity{UserID: claims.UserID, Name: claims.Name}, nil
}
