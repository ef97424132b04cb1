// internal/pkg/jwt/claims.go
package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// PurposeOperator marks tokens that unlock the offer authoring API.
const PurposeOperator = "operator"

// Claims carried by operator tokens. The operator identity is the subject.
type Claims struct {
	Roles   []string `json:"roles,omitempty"`
	Purpose string   `json:"purpose"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of roles was granted.
func (c *Claims) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}
