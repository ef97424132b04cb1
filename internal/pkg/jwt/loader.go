// internal/pkg/jwt/loader.go
package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// LoadVerifier builds a verifier from the public key alone; the API never
// signs tokens.
func LoadVerifier(cfg Config) (*Verifier, error) {
	pub, err := LoadRSAPublicKeyFromPEM(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key from %s: %w", cfg.PubPath, err)
	}
	return NewVerifier(pub, cfg.Issuer, cfg.Audience), nil
}

// LoadGenerator builds a generator for minting operator tokens.
func LoadGenerator(cfg Config) (*Generator, error) {
	priv, err := LoadRSAPrivateKeyFromPEM(cfg.PrivPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key from %s: %w", cfg.PrivPath, err)
	}
	return NewGenerator(priv, cfg.Issuer, cfg.Audience, cfg.KID, cfg.TTL), nil
}
