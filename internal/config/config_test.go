package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 5000},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5000 {
		t.Errorf("default port: got %d, want 5000", cfg.HTTP.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Generation.Model != "gpt-4o" {
		t.Errorf("default generation model: got %q, want gpt-4o", cfg.Generation.Model)
	}
	if cfg.Generation.MaxTokens != 1000 {
		t.Errorf("default max tokens: got %d, want 1000", cfg.Generation.MaxTokens)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("default top_k: got %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.3 {
		t.Errorf("default threshold: got %g, want 0.3", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Retrieval.ContextSnippetMax != 500 {
		t.Errorf("default context snippet max: got %d, want 500", cfg.Retrieval.ContextSnippetMax)
	}
	if cfg.Retrieval.FallbackSnippetMax != 200 {
		t.Errorf("default fallback snippet max: got %d, want 200", cfg.Retrieval.FallbackSnippetMax)
	}
	if cfg.Retrieval.MaxLinks != 3 {
		t.Errorf("default max links: got %d, want 3", cfg.Retrieval.MaxLinks)
	}
	if len(cfg.Retrieval.PhraseBonuses) == 0 {
		t.Fatal("expected default phrase lexicon to be applied")
	}
}

func TestDefaultPhraseBonuses_KnownTerms(t *testing.T) {
	weights := make(map[string]int)
	for _, pb := range DefaultPhraseBonuses() {
		weights[pb.Phrase] = pb.Weight
	}

	for phrase, want := range map[string]int{
		"docker":        20,
		"podman":        20,
		"ga4":           20,
		"gpt-3.5-turbo": 20,
		"dashboard":     15,
		"bonus":         15,
		"exam":          15,
	} {
		if got := weights[phrase]; got != want {
			t.Errorf("phrase %q: weight %d, want %d", phrase, got, want)
		}
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.SimilarityThreshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range similarity threshold")
	}
}

func TestValidate_BadPhraseBonus(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.PhraseBonuses = []PhraseBonus{{Phrase: "docker", Weight: 0}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive phrase weight")
	}

	cfg.Retrieval.PhraseBonuses = []PhraseBonus{{Phrase: "  ", Weight: 10}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank phrase")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
