// Command token issues a signed bearer token for an operator. Identity is
// managed outside the service; this is how tokens are handed out.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"punchclock/internal/domain/auth"
	"punchclock/internal/platform/config"
)

func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	role := flag.String("role", auth.RoleClerk, "role: clerk, supervisor, payroll or admin")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	if err := issue(os.Stdout, cfg.JWTSecret, *userID, *role, *ttl); err != nil {
		slog.Error("token not issued", "err", err)
		os.Exit(1)
	}
}

func issue(out io.Writer, secret, userID, role string, ttl time.Duration) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("-user is required")
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if _, ok := auth.RolePermissions[role]; !ok {
		return fmt.Errorf("unknown role %q", role)
	}
	token, err := auth.GenerateToken(secret, auth.Claims{UserID: userID, RoleName: role}, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
