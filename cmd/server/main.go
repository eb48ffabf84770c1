// Copyright 2026 The Upsight Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/upsight-edu/upsight/internal/audit"
	"github.com/upsight-edu/upsight/internal/authz"
	"github.com/upsight-edu/upsight/internal/config"
	"github.com/upsight-edu/upsight/internal/content"
	"github.com/upsight-edu/upsight/internal/identity"
	"github.com/upsight-edu/upsight/internal/observability/logger"
	"github.com/upsight-edu/upsight/internal/observability/metrics"
	"github.com/upsight-edu/upsight/internal/observability/tracing"
	"github.com/upsight-edu/upsight/internal/roster"
	"github.com/upsight-edu/upsight/internal/store/postgres"
	"github.com/upsight-edu/upsight/internal/token"
	transportHTTP "github.com/upsight-edu/upsight/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting upsight identity service")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if len(os.Args) > 1 && os.Args[1] == "bootstrap" {
		if err := runBootstrap(cfg); err != nil {
			fmt.Printf("Bootstrap failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Initialize context
	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := connect(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	bindingRepo := postgres.NewBindingRepository(db)
	contentRepo := postgres.NewContentRepository(db)
	rosterRepo := postgres.NewRosterRepository(db)
	revocationRepo := postgres.NewRevocationRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Initialize services
	authenticator := identity.NewAuthenticator(accountRepo, passwordHasher, auditLogger)
	provisioner := identity.NewProvisioner(accountRepo, staffRepo, passwordHasher, auditLogger)
	issuer := token.NewIssuer(token.Config{
		SigningKey: []byte(cfg.Token.SigningKey),
		Issuer:     cfg.Token.Issuer,
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
	}, revocationRepo, auditLogger)
	evaluator := authz.NewEvaluator(bindingRepo, auditLogger)
	contentService := content.NewService(contentRepo, auditLogger)
	rosterService := roster.NewService(rosterRepo, auditLogger)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		authenticator,
		provisioner,
		staffRepo,
		issuer,
		evaluator,
		contentService,
		rosterService,
		tenantRepo,
		auditLogger,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Purge expired revocation entries in the background
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := revocationRepo.DeleteExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to purge expired revocations", logger.Error(err))
			}
		}
	}()

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func connect(ctx context.Context, cfg *config.Config) (*postgres.DB, error) {
	return postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying schema migrations...")
	if err := db.RunMigrations(ctx); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}

// runBootstrap provisions the first platform-staff account from the
// BOOTSTRAP_EMPLOYEE_ID / BOOTSTRAP_PASSWORD environment variables. Running
// it against an already provisioned employee id is a no-op.
func runBootstrap(cfg *config.Config) error {
	employeeID := os.Getenv("BOOTSTRAP_EMPLOYEE_ID")
	password := os.Getenv("BOOTSTRAP_PASSWORD")
	if employeeID == "" || password == "" {
		return fmt.Errorf("BOOTSTRAP_EMPLOYEE_ID and BOOTSTRAP_PASSWORD are required")
	}

	ctx := context.Background()
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	provisioner := identity.NewProvisioner(accountRepo, staffRepo, passwordHasher, auditLogger)

	profile := &identity.StaffProfile{
		EmployeeID: employeeID,
		NameUz:     os.Getenv("BOOTSTRAP_NAME"),
		Email:      os.Getenv("BOOTSTRAP_EMAIL"),
	}
	_, err = provisioner.Provision(ctx, profile, password)
	if errors.Is(err, identity.ErrDuplicateIdentifier) {
		fmt.Printf("Account %s already exists, nothing to do.\n", employeeID)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Provisioned platform staff account %s.\n", employeeID)
	return nil
}
