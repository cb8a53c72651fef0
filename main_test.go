package main

import (
	"bytes"
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/wricardo/connect-n/game/config"
	"github.com/wricardo/connect-n/game/engine"
	"github.com/wricardo/connect-n/game/events"
	"github.com/wricardo/connect-n/game/results"
	"github.com/wricardo/connect-n/game/service"
	"github.com/wricardo/connect-n/game/session"
	"github.com/wricardo/connect-n/transport/mcp"
)

func testSettings(t *testing.T) *config.ServerSettings {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	return &config.ServerSettings{
		ConfigDir:     "configs",
		SessionsDir:   t.TempDir(),
		SessionStore:  config.StoreFile,
		SessionMaxAge: 0,
		ResultsLimit:  10,
		KafkaTopic:    events.DefaultTopic,
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Connect-N Game Server" {
		t.Errorf("Unexpected app name %s", AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := initializeServices(ctx, testSettings(t))
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	info, err := svc.game.CreateSession(ctx, "tiny")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.GameState.ColumnCount != 3 {
		t.Errorf("Expected tiny board, got %d columns", info.GameState.ColumnCount)
	}
}

func TestInitializeServices_MemoryStore(t *testing.T) {
	settings := testSettings(t)
	settings.SessionStore = config.StoreMemory

	svc, err := initializeServices(context.Background(), settings)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if _, err := svc.game.CreateSession(context.Background(), ""); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	entries, _ := os.ReadDir(settings.SessionsDir)
	if len(entries) != 0 {
		t.Errorf("Memory store should not write files, found %d", len(entries))
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *config.ServerSettings)
	}{
		{"missing config dir", func(s *config.ServerSettings) { s.ConfigDir = "/non/existent/path" }},
		{"redis without url", func(s *config.ServerSettings) { s.SessionStore = config.StoreRedis }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings(t)
			tt.modify(settings)
			if _, err := initializeServices(context.Background(), settings); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNewPublisher(t *testing.T) {
	publisher, err := newPublisher(&config.ServerSettings{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := publisher.(events.NopPublisher); !ok {
		t.Errorf("Expected NopPublisher without brokers, got %T", publisher)
	}

	publisher, err = newPublisher(&config.ServerSettings{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "t"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer publisher.Close()
	if _, ok := publisher.(*events.KafkaPublisher); !ok {
		t.Errorf("Expected KafkaPublisher, got %T", publisher)
	}
}

func TestNewResultRecorder_Memory(t *testing.T) {
	recorder, err := newResultRecorder(context.Background(), &config.ServerSettings{ResultsLimit: 5}, &services{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := recorder.(*results.MemoryStore); !ok {
		t.Errorf("Expected MemoryStore, got %T", recorder)
	}
}

func TestApplyFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(port, "port", 8080, "")
	fs.StringVar(host, "host", "localhost", "")
	fs.StringVar(sessionStore, "session-store", config.StoreFile, "")
	if err := fs.Parse([]string{"-port", "9191"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	settings := &config.ServerSettings{Port: 7000, Host: "0.0.0.0", SessionStore: config.StoreRedis}
	applyFlags(fs, settings)

	if settings.Port != 9191 {
		t.Errorf("Expected flag to override port, got %d", settings.Port)
	}
	if settings.Host != "0.0.0.0" || settings.SessionStore != config.StoreRedis {
		t.Errorf("Unset flags must keep environment values, got %+v", settings)
	}
}

func TestPruneOrphanedSessions(t *testing.T) {
	dir := t.TempDir()
	configManager, err := config.NewManager("configs")
	if err != nil {
		t.Skipf("configs directory not usable: %v", err)
	}
	persistence, err := session.NewFilePersistence(dir, configManager)
	if err != nil {
		t.Fatalf("NewFilePersistence failed: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence)

	kept, err := manager.Create("", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	gone, err := manager.Create("", engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := persistence.Delete(gone.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if pruned := pruneOrphanedSessions(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get(kept.ID); err != nil {
		t.Errorf("Expected %s to stay in memory: %v", kept.ID, err)
	}
	if _, err := manager.Get(gone.ID); err == nil {
		t.Errorf("Expected %s to be pruned", gone.ID)
	}
}

func TestMCPHandler(t *testing.T) {
	handler := mcpHandler(mcp.NewClient("http://localhost:0").GetMCPServer())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"game_instructions","arguments":{}}}`
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest("POST", "/mcp", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Connect-N") {
		t.Errorf("Expected instructions in response: %s", rec.Body.String())
	}
}

func TestRouter_ServesAPIAndMCP(t *testing.T) {
	var apiHits int
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { apiHits++ })
	router := newRouter(api, mcp.NewClient("http://localhost:0").GetMCPServer())

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))
	if apiHits != 1 {
		t.Errorf("Expected API handler to serve /api/health")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/mcp", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected /mcp handler, got %d", rec.Code)
	}
}

var _ service.ResultRecorder = (*results.MemoryStore)(nil)
