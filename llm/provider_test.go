package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIProvider_Chat(t *testing.T) {
	var gotReq map[string]interface{}
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"摘要内容"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "sk-test", BaseURL: server.URL, Model: "deepseek-chat"})
	if err != nil {
		t.Fatal(err)
	}

	got, err := provider.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "摘要内容" {
		t.Errorf("Expected: %s, Got: %s", "摘要内容", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Unexpected Authorization header %q", gotAuth)
	}
	if gotReq["model"] != "deepseek-chat" {
		t.Errorf("Unexpected model %v", gotReq["model"])
	}
	msgs, _ := gotReq["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %v", gotReq["messages"])
	}
	first, _ := msgs[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "sys" {
		t.Errorf("Unexpected first message %v", first)
	}
}

func TestOpenAIProvider_ChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"authentication_error"}}`))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "bad", BaseURL: server.URL, Model: "deepseek-chat"})
	_, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("Expected server message in error, got %v", err)
	}
}

func TestOpenAIProvider_Defaults(t *testing.T) {
	provider, _ := NewOpenAIProvider(Config{Model: "deepseek-chat"})
	if provider.config.BaseURL != DeepSeekBaseURL {
		t.Errorf("Expected default base URL %s, got %s", DeepSeekBaseURL, provider.config.BaseURL)
	}
	if provider.Name() != "DeepSeek" {
		t.Errorf("Unexpected provider name %s", provider.Name())
	}
	if err := provider.ValidateConfig(); err == nil {
		t.Error("Expected missing API key to fail validation")
	}
}

func TestOllamaProvider_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if req.Options != nil {
			t.Errorf("Expected no options without temperature or max tokens, got %+v", req.Options)
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   req.Model,
			Message: ollamaMessage{Role: "assistant", Content: "local " + req.Messages[len(req.Messages)-1].Content},
			Done:    true,
		})
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "qwen2.5"})
	got, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "local hi" {
		t.Errorf("Expected: %s, Got: %s", "local hi", got)
	}
}

func TestOllamaProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing"})
	_, err := provider.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("Expected model not found error, got %v", err)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
		wantErr  bool
	}{
		{"", "DeepSeek", false},
		{"DeepSeek", "DeepSeek", false},
		{"openai", "OpenAI Compatible", false},
		{"ollama", "Ollama", false},
		{"claude", "", true},
	}

	for _, tt := range tests {
		p, err := NewProvider(Config{Provider: tt.provider, Model: "m"})
		if tt.wantErr {
			if err == nil {
				t.Errorf("provider %q: expected error", tt.provider)
			}
			continue
		}
		if err != nil {
			t.Errorf("provider %q: unexpected error %v", tt.provider, err)
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("provider %q: Expected: %s, Got: %s", tt.provider, tt.wantName, p.Name())
		}
	}
}
