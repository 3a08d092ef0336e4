package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/greencart/internal/app"
	"github.com/greencart/internal/config"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "run mode: all (default), api, worker")
	flag.Parse()

	printStartupBanner(mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	release := cfg.Server.Mode == "release"
	if isWeakSecret(cfg.JWT.SecretKey) {
		if release {
			stdLog.Fatalf("jwt.secret is weak or still the default value; configure a strong random key")
		}
		logger.Warnw("jwt_secret_weak", "hint", "set JWT_SECRET before going to production")
	}
	if release && strings.TrimSpace(cfg.Stripe.WebhookSecret) == "" {
		logger.Warnw("stripe_webhook_secret_missing", "effect", "all webhook deliveries will be rejected")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, !release); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migrate failed: %v", err)
	}

	if err := models.EnsureStaffAccounts(cfg.Security.StaffEmails); err != nil {
		logger.Warnw("staff_accounts_promote_failed", "error", err)
	}

	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("server exited: %v", err)
	}
}

func printStartupBanner(mode string) {
	fmt.Println(ansiGreen + ansiBold + "  ___                      ___          _   " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + " / __|_ _ ___ ___ _ _    / __|__ _ _ _| |_ " + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "| (_ | '_/ -_) -_) ' \\  | (__/ _` | '_|  _|" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + " \\___|_| \\___\\___|_||_|  \\___\\__,_|_|  \\__|" + ansiReset)
	fmt.Println(ansiCyan + "GreenCart API starting, mode=" + mode + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key", "secret-key"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
