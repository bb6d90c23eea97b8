package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/conference-hub/internal/application"
	"github.com/example/conference-hub/internal/config"
	httptransport "github.com/example/conference-hub/internal/http"
	"github.com/example/conference-hub/internal/mail"
	"github.com/example/conference-hub/internal/persistence/sqlite"
	"github.com/example/conference-hub/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	files, err := storage.NewFileStore(cfg.UploadRoot)
	if err != nil {
		logger.Error("failed to prepare upload storage", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	sessionRepo := sqlite.NewSessionRepository(pool)
	userRepo := sqlite.NewUserRepository(pool)
	roomRepo := sqlite.NewRoomRepository(pool)
	eventRepo := sqlite.NewEventRepository(pool)
	authRepo := sqlite.NewAuthSessionRepository(pool)
	documentRepo := sqlite.NewDocumentRepository(pool)
	requestRepo := sqlite.NewRequestRepository(pool)

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	inviteService := application.NewInviteService(sender, roomRepo, cfg.BaseURL, logger)
	sessionService := application.NewSessionService(sessionRepo, userRepo, roomRepo, eventRepo, inviteService, idGenerator, now, logger)
	authService := application.NewAuthService(userRepo, authRepo, userRepo, tokenGenerator, idGenerator, cfg.SessionTTL, now, logger)
	documentService := application.NewDocumentService(documentRepo, sessionRepo, userRepo, files, idGenerator, now, logger)
	directoryService := application.NewDirectoryService(roomRepo, eventRepo, userRepo, idGenerator, now, logger)
	requestService := application.NewRequestService(requestRepo, idGenerator, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Sessions:  httptransport.NewSessionHandler(sessionService, files, logger),
		Documents: httptransport.NewDocumentHandler(documentService, logger),
		Directory: httptransport.NewDirectoryHandler(directoryService, logger),
		Requests:  httptransport.NewRequestHandler(requestService, logger),
		Protected: httptransport.RequireSession(authService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.AllowedOrigins),
		},
	})

	go purgeExpiredSessions(ctx, authService, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("conference API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// purgeExpiredSessions removes stale login sessions hourly until shutdown.
func purgeExpiredSessions(ctx context.Context, auth *application.AuthService, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.Error("failed to purge expired sessions", "error", err)
			}
		}
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(buf)
}
