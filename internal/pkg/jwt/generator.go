// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string // key id for rotation
	ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		ttl:      ttl,
	}
}

// GenerateOperatorToken signs a token for the offer authoring API. It returns
// the token and its ID.
func (g *Generator) GenerateOperatorToken(operatorID string, roles []string) (string, string, error) {
	if g.priv == nil {
		return "", "", fmt.Errorf("jwt generator has nil private key")
	}
	if operatorID == "" {
		return "", "", fmt.Errorf("operator id is required")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		Roles:   roles,
		Purpose: PurposeOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   operatorID,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	signed, err := tok.SignedString(g.priv)
	return signed, jti, err
}
