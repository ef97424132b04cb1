// internal/pkg/jwt/verifier.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	xerrors "bakery-popup/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
)

// clockSkew tolerated on exp/nbf between the minting host and this one.
const clockSkew = 30 * time.Second

// Verifier checks RS256 operator tokens. All failures wrap
// xerrors.ErrUnauthorized.
type Verifier struct {
	pub    *rsa.PublicKey
	parser *jwt.Parser
}

func NewVerifier(pub *rsa.PublicKey, issuer, audience string) *Verifier {
	return &Verifier{
		pub: pub,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(clockSkew),
		),
	}
}

// Verify parses tokenString and checks signature, issuer, audience and expiry.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if v.pub == nil {
		return nil, fmt.Errorf("%w: verifier has no public key", xerrors.ErrUnauthorized)
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", xerrors.ErrUnauthorized, err)
	}
	return claims, nil
}

// VerifyOperatorToken additionally requires the operator purpose, a subject
// and a jti so the token can be revoked.
func (v *Verifier) VerifyOperatorToken(tokenString string) (*Claims, error) {
	claims, err := v.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	switch {
	case claims.Purpose != PurposeOperator:
		return nil, fmt.Errorf("%w: not an operator token", xerrors.ErrUnauthorized)
	case claims.Subject == "":
		return nil, fmt.Errorf("%w: token has no subject", xerrors.ErrUnauthorized)
	case claims.ID == "":
		return nil, fmt.Errorf("%w: token has no id", xerrors.ErrUnauthorized)
	}
	return claims, nil
}
