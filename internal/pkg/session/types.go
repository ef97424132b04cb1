// internal/pkg/session/types.go
package session

import "time"

// OperatorSession is one issued operator token.
type OperatorSession struct {
	JTI        string    `json:"jti"`
	OperatorID string    `json:"operator_id"`
	Roles      []string  `json:"roles"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
