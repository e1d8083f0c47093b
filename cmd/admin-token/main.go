// Command admin-token prints a bearer token for the admin routes, signed with
// ADMIN_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"charity-events/internal/auth"
	"charity-events/internal/config"
	"charity-events/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewWithWriter(os.Stderr)

	if cfg.Auth.AdminSecret == "" {
		log.Fatal("AUTH", "ADMIN_JWT_SECRET not set")
	}
	token, err := auth.IssueAdminToken(cfg.Auth.AdminSecret, *subject, *ttl)
	if err != nil {
		log.Fatal("AUTH", fmt.Sprintf("Failed to sign token: %v", err))
	}
	fmt.Println(token)
}
