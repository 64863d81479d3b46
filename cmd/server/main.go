package main

import (
	"anongram/contract"
	"anongram/errors"
	"anongram/infrastructure/http"
	"anongram/infrastructure/ws"
	"anongram/internal"
	"anongram/observability"
	"anongram/relay"
	"anongram/repositories"
	"anongram/runtime/workers"
	"anongram/services"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Keeping the logic out of main means every defer (database close included)
// executes before the process exits, and the wiring stays testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}

	if logger.Enabled(ctx, slog.LevelDebug) {
		debugPort := 8081
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", debugPort, endpoint))
		database.StartDebugServer(db, debugPort, endpoint, MessageMapper)
	}

	defer func() {
		// Defer ensures the database lock is released and buffers are flushed before the function returns.
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & Realtime Core
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	userRepository := repositories.NewUserRepository(db)

	if err := seedUsers(userRepository); err != nil {
		return exitRuntime, fmt.Errorf("user seeding failed: %w", err)
	}

	registry := relay.NewRegistry(logger)
	messageRelay := relay.NewRelay(logger, registry, messageRepository)

	chatService := services.NewChatService(messageRepository)
	userService := services.NewUserService(userRepository)

	monitor, err := observability.NewMonitor(logger, registry.Size)
	if err != nil {
		return exitRuntime, fmt.Errorf("monitor init failed: %w", err)
	}

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background Workers under supervision
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewBadgerGC(db, logger, config.GCInterval),
		workers.NewHealthRefresh(monitor, logger, config.MetricInterval),
	)
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	// 6. HTTP & Websocket surface
	wsHandler := ws.NewHandler(logger, messageRelay, registry, config.ConnectionBufferSize, ws.Timeouts{
		WriteWait: config.WriteWait,
		PongWait:  config.PongWait,
	})
	httpServer := http.NewServer(logger, chatService, userService, monitor, wsHandler)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &nethttp.Server{Addr: address, Handler: httpServer.Router()}

	errChan := make(chan error, 1)
	go func() {
		banner := color.New(color.BgBlack, color.FgGreen).
			Render(fmt.Sprintf(" Anongram listening on http://%s ", address))
		fmt.Println(banner)
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, nethttp.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	// The execution blocks here until either a signal is received or the server crashes.
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Final Cleanup (Graceful Shutdown)
	// In-flight requests get a grace period; websocket clients are cut when
	// the listener closes and unregister themselves on the way out.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supervisorDone
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

// seedUsers makes sure the demo accounts exist so the frontend has someone to
// talk to on a fresh database. Existing accounts are left untouched.
func seedUsers(directory contract.UserDirectory) error {
	for _, email := range []string{"user1@test.com", "user2@test.com", "user3@test.com"} {
		if _, err := directory.Create(email); err != nil && !stderrors.Is(err, errors.ErrUserAlreadyExists) {
			return err
		}
	}
	return nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
