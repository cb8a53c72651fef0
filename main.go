// Command connect-n starts the Connect-N game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Settings come from the environment (optionally a .env file) and can be
// overridden by flags. Sessions live on disk or in Redis, game events go to
// Kafka when brokers are configured, and finished games are recorded in
// Postgres when DATABASE_URL is set.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/connect-n/api"
	"github.com/wricardo/connect-n/game/config"
	"github.com/wricardo/connect-n/game/events"
	"github.com/wricardo/connect-n/game/results"
	"github.com/wricardo/connect-n/game/service"
	"github.com/wricardo/connect-n/game/session"
	"github.com/wricardo/connect-n/transport/mcp"
	"github.com/wricardo/connect-n/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Connect-N Game Server"
)

// Configuration flags override the environment settings when given.
var (
	port         = flag.Int("port", 8080, "HTTP server port (or PORT)")
	host         = flag.String("host", "localhost", "HTTP server host (or HOST)")
	configDir    = flag.String("config-dir", "configs", "Directory containing game configurations (or CONFIG_DIR)")
	sessionStore = flag.String("session-store", config.StoreFile, "Session store: file, redis or memory (or SESSION_STORE)")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel (or NGROK_ENABLED)")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
		fmt.Fprintf(os.Stderr, "  REDIS_URL, REDIS_PASSWORD      Redis session store\n")
		fmt.Fprintf(os.Stderr, "  KAFKA_BROKERS, KAFKA_TOPIC     Publish game events to Kafka\n")
		fmt.Fprintf(os.Stderr, "  DATABASE_URL                   Record finished games in Postgres\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
	}
}

// setupLogging configures the global zerolog logger. Stdio MCP mode owns
// stdout, so logs always go to stderr.
func setupLogging(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Caller().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// applyFlags overrides settings with the flags that were set explicitly
func applyFlags(fs *flag.FlagSet, settings *config.ServerSettings) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			settings.Port = *port
		case "host":
			settings.Host = *host
		case "config-dir":
			settings.ConfigDir = *configDir
		case "session-store":
			settings.SessionStore = *sessionStore
		case "ngrok":
			settings.NgrokEnabled = *ngrokEnabled
		case "ngrok-auth":
			settings.NgrokAuthToken = *ngrokAuth
		case "ngrok-domain":
			settings.NgrokDomain = *ngrokDomain
		}
	})
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	setupLogging(*debug)
	if envErr == nil {
		log.Info().Msg("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		log.Warn().Err(envErr).Msg("error loading .env file")
	}

	settings := config.LoadServerSettings()
	applyFlags(flag.CommandLine, settings)

	// Determine mode from command
	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Info().Str("mode", mode).Str("version", Version).Msgf("starting %s", AppName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc, err := initializeServices(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer svc.Close()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCPWithInternalServer(svc.game, settings)

	case "server", "http":
		runHTTPServer(ctx, svc.game, settings)

	default:
		log.Fatal().Str("mode", mode).Msg("unknown mode, use 'server' (default) or 'stdio-mcp'")
	}
}

// services holds everything initializeServices wired together
type services struct {
	game     service.GameService
	sessions *session.Manager
	closers  []func()
}

// Close persists sessions and releases external connections
func (s *services) Close() {
	if s.sessions != nil {
		if err := s.sessions.SaveAllSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to save sessions on shutdown")
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// initializeServices wires the config and session managers, the event
// publisher and the result store into the game service. It also starts the
// background routines that prune stale sessions; they stop with ctx.
func initializeServices(ctx context.Context, settings *config.ServerSettings) (*services, error) {
	configManager, err := config.NewManager(settings.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	svc := &services{}

	persistence, err := newPersistence(ctx, settings, configManager, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}

	if persistence != nil {
		svc.sessions = session.NewManagerWithPersistence(persistence)
		if err := svc.sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
	} else {
		svc.sessions = session.NewManager()
	}

	publisher, err := newPublisher(settings)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.closers = append(svc.closers, func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	})

	recorder, err := newResultRecorder(ctx, settings, svc)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.game = service.NewGameService(svc.sessions, configManager,
		service.WithPublisher(publisher),
		service.WithResultRecorder(recorder),
		service.WithLogger(log.Logger),
	)

	go sessionCleanupRoutine(ctx, svc.sessions, settings.SessionMaxAge)
	if persistence != nil {
		go storageSyncRoutine(ctx, svc.sessions, persistence)
	}

	return svc, nil
}

// newPersistence returns the configured session store, nil for memory only
func newPersistence(ctx context.Context, settings *config.ServerSettings, configs service.ConfigManager, svc *services) (session.SessionPersistence, error) {
	switch settings.SessionStore {
	case config.StoreMemory:
		log.Info().Msg("sessions are kept in memory only")
		return nil, nil

	case config.StoreRedis:
		if settings.RedisURL == "" {
			return nil, errors.New("SESSION_STORE=redis requires REDIS_URL")
		}
		client, err := session.NewRedisClient(ctx, settings.RedisURL, settings.RedisPassword)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, func() { client.Close() })
		log.Info().Str("addr", settings.RedisURL).Msg("sessions are stored in redis")
		return session.NewRedisPersistence(client, configs, settings.SessionMaxAge), nil

	default:
		persistence, err := session.NewFilePersistence(settings.SessionsDir, configs)
		if err != nil {
			return nil, fmt.Errorf("failed to create session persistence: %w", err)
		}
		log.Info().Str("dir", settings.SessionsDir).Msg("sessions are stored on disk")
		return persistence, nil
	}
}

// newPublisher returns a Kafka publisher when brokers are configured
func newPublisher(settings *config.ServerSettings) (service.EventPublisher, error) {
	if len(settings.KafkaBrokers) == 0 {
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewKafkaPublisher(settings.KafkaBrokers, settings.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}
	log.Info().Strs("brokers", settings.KafkaBrokers).Str("topic", settings.KafkaTopic).Msg("publishing game events to kafka")
	return publisher, nil
}

// newResultRecorder returns a Postgres store when DATABASE_URL is set and a
// bounded in-memory store otherwise
func newResultRecorder(ctx context.Context, settings *config.ServerSettings, svc *services) (service.ResultRecorder, error) {
	if settings.DatabaseURL == "" {
		return results.NewMemoryStore(settings.ResultsLimit), nil
	}

	store, err := results.NewPostgresStore(ctx, settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	svc.closers = append(svc.closers, store.Close)

	if err := store.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate results table: %w", err)
	}
	log.Info().Msg("recording finished games in postgres")
	return store, nil
}

// newRouter combines the REST API, WebSocket endpoint and the /mcp proxy
func newRouter(apiServer http.Handler, mcpServer *server.MCPServer) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpServer))
	return mainRouter
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns once ctx is cancelled
// and the servers have shut down.
func runHTTPServer(ctx context.Context, gameService service.GameService, settings *config.ServerSettings) {
	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()

	apiServer := api.NewServer(gameService, hub)

	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient.GetMCPServer())

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	if settings.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, settings, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
}

// runNgrokTunnel serves handler through an ngrok endpoint until ctx ends
func runNgrokTunnel(ctx context.Context, settings *config.ServerSettings, handler http.Handler) {
	if settings.NgrokAuthToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info().Msg("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if settings.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.NgrokDomain))
		log.Info().Str("domain", settings.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.NgrokAuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// storageSyncRoutine periodically drops in-memory sessions whose stored copy
// is gone (file deleted or Redis key expired).
func storageSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphanedSessions(manager, persistence)
		}
	}
}

func pruneOrphanedSessions(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, sess := range manager.List() {
		if !persistence.Exists(sess.ID) {
			if err := manager.DeleteFromMemory(sess.ID); err == nil {
				pruned++
				log.Debug().Str("session", sess.ID).Msg("pruned session from memory (storage copy deleted)")
			}
		}
	}

	if pruned > 0 {
		log.Info().Int("pruned", pruned).Msg("storage sync: pruned orphaned sessions from memory")
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured host and port; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, settings *config.ServerSettings) {
	var baseURL string

	externalURL := fmt.Sprintf("http://%s:%d", settings.Host, settings.Port)
	log.Info().Str("url", externalURL).Msg("checking for external API server")

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
		baseURL = externalURL
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get available port")
		}
		internalAddr := listener.Addr().String()

		hub := websocket.NewHub()
		go hub.Run()
		defer hub.Stop()

		httpServer := &http.Server{
			Handler: api.NewServer(gameService, hub),
		}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		baseURL = fmt.Sprintf("http://%s", internalAddr)
		log.Info().Str("addr", internalAddr).Msg("internal HTTP server started for MCP stdio")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("api", baseURL).Msg("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		log.Error().Err(err).Msg("MCP stdio server error")
	}
}
