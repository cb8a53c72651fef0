package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/connect-n/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func createValidConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:         "Test Config",
		Description:  "Test configuration",
		Columns:      5,
		Rows:         4,
		WinCondition: 3,
		Rules:        []engine.RuleKind{engine.VerticalRun, engine.HorizontalRun},
		Messages: engine.Messages{
			Welcome: "Welcome!",
			Victory: "%s wins by %s",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, DefaultConfigID, classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic to be the default, got %s", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed even without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected built-in default config")
		}
		if defaultConfig.Columns != 7 || defaultConfig.Rows != 6 || defaultConfig.WinCondition != 4 {
			t.Errorf("Expected 7x6 connect four default, got %dx%d/%d",
				defaultConfig.Columns, defaultConfig.Rows, defaultConfig.WinCondition)
		}
	})

	t.Run("falls back to first available config", func(t *testing.T) {
		dir := createTestConfigDir(t)

		other := createValidConfig()
		other.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Alpha" {
			t.Errorf("Expected Alpha as default, got %s", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	wide := createValidConfig()
	wide.Name = "Wide"
	wide.Columns = 12
	writeConfigFile(t, dir, "wide", wide)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("wide")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Wide" {
			t.Errorf("Expected config name 'Wide', got '%s'", config.Name)
		}
		if config.Columns != 12 {
			t.Errorf("Expected 12 columns, got %d", config.Columns)
		}
		if config.FirstPlayer != engine.PlayerA {
			t.Errorf("Expected first player to default to A, got %v", config.FirstPlayer)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("wide.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Wide" {
			t.Errorf("Expected config name 'Wide', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("wide")
		config2, err := manager.LoadConfig("wide")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("reject path traversal", func(t *testing.T) {
		for _, name := range []string{"../secrets", "a/b", `a\b`} {
			if _, err := manager.LoadConfig(name); !errors.Is(err, ErrConfigNotFound) {
				t.Errorf("Expected ErrConfigNotFound for %q, got %v", name, err)
			}
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`)
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		if _, err := manager.LoadConfig("malformed"); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)

	configs := []struct {
		filename string
		name     string
		columns  int
	}{
		{"classic", "Classic", 7},
		{"tiny", "Tiny", 3},
		{"wide", "Wide", 12},
		{"deep", "Deep", 4},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		config.Columns = cfg.columns
		writeConfigFile(t, dir, cfg.filename, config)
	}

	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"columns": 0}`), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != len(configs) {
		t.Fatalf("Expected %d configs, got %d", len(configs), len(configList))
	}

	wantOrder := []string{"classic", "deep", "tiny", "wide"}
	for i, info := range configList {
		if info.ConfigID != wantOrder[i] {
			t.Errorf("Position %d: expected %s, got %s", i, wantOrder[i], info.ConfigID)
		}
		if info.Filename != info.ConfigID+".json" {
			t.Errorf("Unexpected filename %s for %s", info.Filename, info.ConfigID)
		}
		if info.WinCondition != 3 || info.Rows != 4 {
			t.Errorf("Unexpected dimensions for %s: %+v", info.ConfigID, info)
		}
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, DefaultConfigID, config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.WinCondition != 3 {
		t.Errorf("Expected initial win condition 3, got %d", loaded.WinCondition)
	}

	config.WinCondition = 4
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.WinCondition != 4 {
		t.Errorf("Expected reloaded win condition 4, got %d", reloaded.WinCondition)
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	updated := createValidConfig()
	updated.Name = "Refreshed"
	writeConfigFile(t, dir, DefaultConfigID, updated)

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache failed: %v", err)
	}
	if manager.GetDefault().Name != "Refreshed" {
		t.Errorf("Expected refreshed default, got %s", manager.GetDefault().Name)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the default in cache, got %d", manager.Count())
	}
}

func TestManager_ValidateConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(c *engine.GameConfig)
		wantErr bool
	}{
		{"valid config", func(c *engine.GameConfig) {}, false},
		{"missing name", func(c *engine.GameConfig) { c.Name = "" }, true},
		{"zero columns", func(c *engine.GameConfig) { c.Columns = 0 }, true},
		{"zero win condition", func(c *engine.GameConfig) { c.WinCondition = 0 }, true},
		{"unknown rule", func(c *engine.GameConfig) { c.Rules = []engine.RuleKind{"knight"} }, true},
		{"victory missing placeholder", func(c *engine.GameConfig) { c.Messages.Victory = "%s wins" }, true},
		{"unreachable win condition is allowed", func(c *engine.GameConfig) { c.WinCondition = 10 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.mutate(config)
			err := manager.ValidateConfig(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("saves and caches", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		config.Rules = nil

		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Fatalf("Expected saved.json on disk: %v", err)
		}

		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("LoadConfig after save failed: %v", err)
		}
		if len(loaded.Rules) != len(engine.DefaultRules()) {
			t.Errorf("Expected normalized default rules, got %v", loaded.Rules)
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		config := createValidConfig()
		config.Rows = 0
		if err := manager.SaveConfig("bad", config); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("rejects invalid names", func(t *testing.T) {
		for _, name := range []string{"", "../up", "a/b"} {
			if err := manager.SaveConfig(name, createValidConfig()); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig for %q, got %v", name, err)
			}
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	writeConfigFile(t, dir, DefaultConfigID, createValidConfig())

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = fmt.Sprintf("Config%d", i)
		writeConfigFile(t, dir, fmt.Sprintf("config%d", i), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(fmt.Sprintf("config%d", (id%5)+1)); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

func TestManager_BundledConfigs(t *testing.T) {
	manager, err := NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetDefault().Name != "classic" {
		t.Errorf("Expected classic as default, got %s", manager.GetDefault().Name)
	}

	infos, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(infos) < 5 {
		t.Errorf("Expected all bundled configs to load, got %d", len(infos))
	}
}

// Test-only helpers

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, name)
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) ValidateConfig(config *engine.GameConfig) error {
	return engine.ValidateGameConfig(config)
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
