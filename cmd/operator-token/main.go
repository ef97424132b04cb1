// Command operator-token mints a signed token for the offer authoring API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"bakery-popup/internal/config"
	"bakery-popup/internal/db"
	"bakery-popup/internal/pkg/jwt"
	"bakery-popup/internal/pkg/session"

	"github.com/joho/godotenv"
)

func main() {
	operatorID := flag.String("operator", "", "operator id placed in the sub claim")
	roles := flag.String("roles", "operator", "comma separated roles")
	flag.Parse()

	if *operatorID == "" {
		fmt.Fprintln(os.Stderr, "usage: operator-token -operator <id> [-roles operator,admin]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	gen, err := jwt.LoadGenerator(cfg.JWT)
	if err != nil {
		log.Fatalf("failed to load signing key: %v", err)
	}

	issuedAt := time.Now()
	token, jti, err := gen.GenerateOperatorToken(*operatorID, splitRoles(*roles))
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}

	if len(cfg.RedisAddrs) > 0 {
		track(cfg, &session.OperatorSession{
			JTI:        jti,
			OperatorID: *operatorID,
			Roles:      splitRoles(*roles),
			IssuedAt:   issuedAt,
			ExpiresAt:  issuedAt.Add(cfg.JWT.TTL),
		})
	}

	fmt.Fprintf(os.Stderr, "jti=%s ttl=%s\n", jti, cfg.JWT.TTL)
	fmt.Println(token)
}

// track records the token so it can be listed and revoked. The token is still
// valid if this fails; revocation just won't know about it.
func track(cfg config.AppConfig, s *session.OperatorSession) {
	client, err := db.NewRedis(db.RedisConfig{
		ClusterMode: len(cfg.RedisAddrs) > 1,
		Addresses:   cfg.RedisAddrs,
		Password:    cfg.RedisPass,
	})
	if err != nil {
		log.Printf("warning: session not tracked: %v", err)
		return
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := session.NewManager(client).CreateSession(ctx, s); err != nil {
		log.Printf("warning: session not tracked: %v", err)
	}
}

func splitRoles(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
