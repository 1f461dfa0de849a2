package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig_SaveLoadKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := &Config{APIKey: "sk-test", Model: "deepseek-reasoner", SystemPrompt: "总结要点"}
	cfg.Normalize()
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"api_key": "sk-test"`, `"model": "deepseek-reasoner"`, `"system_prompt": "总结要点"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in config file, got:\n%s", key, data)
		}
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Expected: %+v, Got: %+v", cfg, loaded)
	}
}

func TestConfig_NormalizeUnknownModel(t *testing.T) {
	cfg := &Config{Model: "gpt-4"}
	cfg.Normalize()
	if cfg.Model != DefaultModel {
		t.Errorf("Expected unknown model to normalize to %s, got %s", DefaultModel, cfg.Model)
	}

	local := &Config{Provider: "Ollama", Model: "qwen2"}
	local.Normalize()
	if local.Provider != ProviderOllama || local.Model != "qwen2" {
		t.Errorf("Ollama models should be kept as-is, got %+v", local)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}

	cfg.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	local := &Config{Provider: ProviderOllama, Model: "llama3"}
	local.Normalize()
	if err := local.Validate(); err != nil {
		t.Errorf("Ollama should not need an API key, got %v", err)
	}
}

func TestLoadConfigOrDefault_ColdStart(t *testing.T) {
	var logs bytes.Buffer
	logger := NewWriterLogger(&logs)
	dir := t.TempDir()

	cfg := LoadConfigOrDefault(filepath.Join(dir, "missing.json"), logger)
	if cfg.Model != DefaultModel || cfg.APIKey != "" {
		t.Errorf("Expected defaults for missing file, got %+v", cfg)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg = LoadConfigOrDefault(corrupt, logger)
	if cfg.Model != DefaultModel {
		t.Errorf("Expected defaults for corrupt file, got %+v", cfg)
	}
	if !strings.Contains(logs.String(), "[WARN]") {
		t.Errorf("Expected a warning to be logged for corrupt config, got:\n%s", logs.String())
	}
}

func TestModelLabels(t *testing.T) {
	if got := ModelLabel("deepseek-reasoner"); got != "DeepSeek-R1" {
		t.Errorf("Expected DeepSeek-R1, got %s", got)
	}
	if id, ok := ModelIDForLabel("DeepSeek-V3"); !ok || id != "deepseek-chat" {
		t.Errorf("Expected deepseek-chat, got %s (%v)", id, ok)
	}
	if _, ok := ModelIDForLabel("nope"); ok {
		t.Errorf("Unknown label should not resolve")
	}
}

func TestEnvOverrides_Apply(t *testing.T) {
	t.Setenv("CHAT_ANALYZER_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "sk-env")
	t.Setenv("CHAT_ANALYZER_MODEL", "deepseek-reasoner")

	overrides, err := LoadEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadEnvOverrides failed: %v", err)
	}

	cfg := &Config{APIKey: "sk-file", Model: "deepseek-chat"}
	applied := overrides.Apply(cfg)

	if cfg.APIKey != "sk-env" || cfg.Model != "deepseek-reasoner" {
		t.Errorf("Expected env values to win, got %+v", cfg)
	}
	if len(applied) != 2 {
		t.Errorf("Expected 2 applied overrides, got %v", applied)
	}
}

func TestEnvOverrides_DotEnv(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(dotenv, []byte("CHAT_ANALYZER_PROVIDER=ollama\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHAT_ANALYZER_PROVIDER", "")
	os.Unsetenv("CHAT_ANALYZER_PROVIDER")

	overrides, err := LoadEnvOverrides(dotenv)
	if err != nil {
		t.Fatalf("LoadEnvOverrides failed: %v", err)
	}
	if overrides.Provider != "ollama" {
		t.Errorf("Expected provider from .env, got %q", overrides.Provider)
	}
}

func TestResolveDataPaths(t *testing.T) {
	dir := t.TempDir()
	paths := ResolveDataPaths(dir)
	if paths.Config != filepath.Join(dir, "config.json") {
		t.Errorf("Unexpected config path %s", paths.Config)
	}
	if paths.History != filepath.Join(dir, "results.json") {
		t.Errorf("Unexpected history path %s", paths.History)
	}
}

func TestEnvOverrides_EffectiveKeepsKeyOutOfConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveConfig(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CHAT_ANALYZER_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "sk-from-env-only")
	overrides, err := LoadEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadEnvOverrides failed: %v", err)
	}

	var logs bytes.Buffer
	fileConfig := LoadConfigOrDefault(path, NewWriterLogger(&logs))
	effective, applied := overrides.Effective(fileConfig)
	if effective.APIKey != "sk-from-env-only" || len(applied) != 1 {
		t.Errorf("Expected env key in effective config, got %+v (%v)", effective, applied)
	}
	if fileConfig.APIKey != "" {
		t.Errorf("Effective must not change the file config, got key %q", fileConfig.APIKey)
	}

	// UI-only change saved the way the app does on theme change and close
	fileConfig.Theme = "dark"
	fileConfig.WindowWidth = 900
	if err := SaveConfig(path, fileConfig); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sk-from-env-only") {
		t.Errorf("Env-only API key was written to the config file:\n%s", data)
	}
	if !overrides.HasAPIKey() {
		t.Error("Expected HasAPIKey to report the env key")
	}
}
