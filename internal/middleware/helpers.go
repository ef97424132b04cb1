// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetOperatorID returns the authenticated operator, if any.
func GetOperatorID(c *gin.Context) (string, bool) {
	id, exists := c.Get("operator_id")
	if !exists {
		return "", false
	}

	s, ok := id.(string)
	return s, ok
}

// GetJTI returns the token ID stored by Auth.
func GetJTI(c *gin.Context) string {
	return c.GetString("jti")
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get("roles")
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

// HasRole checks the roles stored by Auth.
func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}
