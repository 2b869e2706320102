package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cjmartens/homestead/internal/api"
	"github.com/cjmartens/homestead/internal/app"
	"github.com/cjmartens/homestead/internal/app/maintenance"
	iauth "github.com/cjmartens/homestead/internal/auth"
	"github.com/cjmartens/homestead/internal/database"
	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/logger"
	"github.com/cjmartens/homestead/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("homestead-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	if err := ensureSecretsPresent(cfg); err != nil {
		return err
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	sessionSvc, err := iauth.NewSessionService(db, jwtService, cfg.Auth.SessionServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise session service: %w", err)
	}

	mailer, err := buildMailer(cfg, log)
	if err != nil {
		return err
	}

	oidcProvider, err := buildOIDCProvider(cfg, log)
	if err != nil {
		return err
	}

	if cfg.Maintenance.Enabled {
		cleaner, cleanerErr := buildCleaner(db, sessionSvc, cfg)
		if cleanerErr != nil {
			return cleanerErr
		}
		if err := cleaner.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		defer func() {
			stopCtx := cleaner.Stop()
			if err := cleaner.RunOnce(stopCtx); err != nil {
				log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
			}
		}()
	}

	router, err := api.NewRouter(db, jwtService, sessionSvc, api.Options{
		Mailer:        mailer,
		InviteBaseURL: cfg.Server.BaseURL,
		InviteExpiry:  cfg.Invites.Expiry,
		FreeHomeLimit: cfg.Limits.FreeHomes,
		OIDCProvider:  oidcProvider,
		OIDCName:      cfg.Auth.OIDC.Name,
		RateLimit:     cfg.Server.RateLimit.Requests,
		RateWindow:    cfg.Server.RateLimit.Window,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func ensureSecretsPresent(cfg *app.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	return nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseServiceConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func buildMailer(cfg *app.Config, log *zap.Logger) (mail.Mailer, error) {
	if !cfg.Email.SMTP.Enabled {
		log.Info("smtp disabled; invite email delivery is off")
		return nil, nil
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}
	return mailer, nil
}

func buildOIDCProvider(cfg *app.Config, log *zap.Logger) (*iauth.OIDCProvider, error) {
	if !cfg.Auth.OIDC.Enabled {
		return nil, nil
	}

	provider, err := iauth.NewOIDCProvider(cfg.Auth.OIDCProviderConfig(), iauth.OIDCOptions{})
	if err != nil {
		return nil, fmt.Errorf("initialise oidc provider %q: %w", cfg.Auth.OIDC.Name, err)
	}

	log.Info("oidc provider configured",
		zap.String("name", cfg.Auth.OIDC.Name),
		zap.String("issuer", cfg.Auth.OIDC.Issuer))
	return provider, nil
}

func buildCleaner(db *gorm.DB, sessions *iauth.SessionService, cfg *app.Config) (*maintenance.Cleaner, error) {
	shareStore, err := services.NewShareStore(db)
	if err != nil {
		return nil, err
	}

	activitySvc, err := services.NewActivityService(db)
	if err != nil {
		return nil, err
	}

	return maintenance.NewCleaner(sessions, shareStore, activitySvc,
		maintenance.WithSchedule(cfg.Maintenance.Schedule),
		maintenance.WithActivityRetention(cfg.Maintenance.ActivityRetention),
	), nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
