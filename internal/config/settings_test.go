package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Collection != CollectionName {
		t.Errorf("Collection got %s, want %s", s.Collection, CollectionName)
	}
	if s.VectorBackend != VectorBackend {
		t.Errorf("VectorBackend got %s, want %s", s.VectorBackend, VectorBackend)
	}
}

func TestLoad_YamlThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "collection: from_yaml\nllm_model: phi3\nqdrant_port: 7000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LLM_MODEL", "from_env")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Collection != "from_yaml" {
		t.Errorf("Collection got %s, want from_yaml", s.Collection)
	}
	if s.LLMModel != "from_env" {
		t.Errorf("env should win over yaml, got %s", s.LLMModel)
	}
	if s.QdrantPort != 7000 {
		t.Errorf("QdrantPort got %d, want 7000", s.QdrantPort)
	}
}

func TestLoad_GoogleProviderSwapsModels(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "google")
	t.Setenv("LLM_PROVIDER", "google")

	s, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.EmbeddingModel != GoogleEmbeddingModel {
		t.Errorf("EmbeddingModel got %s, want %s", s.EmbeddingModel, GoogleEmbeddingModel)
	}
	if s.LLMModel != GeminiModelName {
		t.Errorf("LLMModel got %s, want %s", s.LLMModel, GeminiModelName)
	}
}

func TestLoad_BadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("collection: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected yaml error, got nil")
	}
}
