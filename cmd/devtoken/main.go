// Command devtoken mints an access token against the configured session
// store. It is meant for local testing and operator bootstrap.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ivankudzin/paquera/internal/config"
	redrepo "github.com/ivankudzin/paquera/internal/repo/redis"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := run(ctx, os.Args[1:], os.Stdout)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "devtoken: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	userID := flags.Int64("user", 0, "owner id to issue the session for")
	role := flags.String("role", "USER", "USER, OPERATOR or OWNER")
	cfgPath := flags.String("config", os.Getenv("APP_CONFIG"), "config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *cfgPath == "" {
		*cfgPath = "configs/config.yaml"
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.IsProduction() {
		return fmt.Errorf("refusing to run in production")
	}

	client, err := redrepo.NewClient(ctx, redrepo.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = client.Close() }()

	auth := authsvc.NewService(
		authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL),
		redrepo.NewSessionRepo(client),
		cfg.Auth.SessionTTL,
	)
	issued, err := auth.IssueSession(ctx, *userID, *role)
	if err != nil {
		return fmt.Errorf("issue session: %w", err)
	}

	fmt.Fprintf(stdout, "user_id=%d role=%s sid=%s expires=%s\n", issued.UserID, issued.Role, issued.SessionID, issued.AccessExpires.Format(time.RFC3339))
	fmt.Fprintln(stdout, issued.AccessToken)
	return nil
}
