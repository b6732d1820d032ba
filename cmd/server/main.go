package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-hub/domain"
	"chat-hub/infrastructure/api"
	"chat-hub/infrastructure/ws"
	"chat-hub/internal"
	"chat-hub/repositories"
	"chat-hub/runtime"
	"chat-hub/services"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (store close, snapshot
// flush) executes before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Durable stores: SQLite for identities, BadgerDB for the
	// full-state snapshot blob.
	identityRepository, err := repositories.NewIdentityRepository(ctx, config.SQLitePath)
	if err != nil {
		return exitRuntime, fmt.Errorf("identity store opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing SQLite...")
		_ = identityRepository.Close()
	}()

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("snapshot store opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	snapshotRepository := repositories.NewSnapshotRepository(db)

	// 3. Chat state: restore the snapshot, warm the identity cache.
	registry := runtime.NewRegistry()
	groups := runtime.NewGroupDirectory()
	convos := runtime.NewConversationStore()

	snapshot, found, err := snapshotRepository.Load(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("snapshot load failed: %w", err)
	}
	if found {
		groups.Restore(snapshot.Groups)
		convos.Restore(snapshot.PrivateMessages)
		logger.Info("Snapshot restored",
			"groups", len(snapshot.Groups),
			"conversations", len(snapshot.PrivateMessages))
	}

	snapshots := make(chan domain.Snapshot, config.SnapshotQueueSize)
	identities := make(chan domain.Identity, config.SnapshotQueueSize)

	coordinator := runtime.NewCoordinator(
		logger, registry, groups, convos,
		snapshots, identities,
		config.BufferSize, config.SinkTimeout,
	)

	known, err := identityRepository.All(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("identity warmup failed: %w", err)
	}
	coordinator.WarmIdentities(known)
	logger.Info("Identity cache warmed", "identities", len(known))

	// 4. Supervision
	supervisor := runtime.NewSupervisor(logger, config.RestartInterval)
	supervisor.Add(coordinator)
	supervisor.Add(runtime.NewPersistenceWorker(
		logger, snapshots, identities,
		snapshotRepository, identityRepository,
		config.PersistTimeout,
	))
	supervisor.Add(runtime.NewTelemetryWorker(logger, config.MetricInterval))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	supervisorDone := make(chan struct{})
	go func() {
		defer close(supervisorDone)
		logger.Info("Starting supervised workers")
		supervisor.Run(ctx)
	}()

	// 6. HTTP surface: liveness, identity listing, and the chat socket.
	chatService := services.NewChatService(coordinator)
	socket := ws.NewHandler(logger, chatService, config.ConnectionBufferSize)
	router := api.NewRouter(logger, identityRepository, socket)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: router,
		// Socket sessions inherit the supervised context so shutdown
		// tears them down with the workers.
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Chat server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for shutdown or failure
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		stop()
		<-supervisorDone
		return exitRuntime, err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}

	// The persistence worker flushes pending writes on its way out.
	<-supervisorDone
	logger.Info("Chat server stopped")
	return exitOK, nil
}
