package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key    string
	typ    keyType
	env    string
	secret bool
	apply  func(cfg *Config, v any)
	show   func(cfg *Config) string
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "REGASSIST_SERVER_PORT",
		apply: func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		show:  func(cfg *Config) string { return strconv.Itoa(cfg.Server.Port) },
	},
	{
		key: "server.api_token", typ: kString, env: "REGASSIST_API_TOKEN", secret: true,
		apply: func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		show:  func(cfg *Config) string { return cfg.Server.APIToken },
	},
	{
		key: "ollama.base_url", typ: kString, env: "REGASSIST_OLLAMA_BASE_URL",
		apply: func(cfg *Config, v any) { cfg.Ollama.BaseURL = v.(string) },
		show:  func(cfg *Config) string { return cfg.Ollama.BaseURL },
	},
	{
		key: "ollama.chat_model", typ: kString, env: "REGASSIST_OLLAMA_CHAT_MODEL",
		apply: func(cfg *Config, v any) { cfg.Ollama.ChatModel = v.(string) },
		show:  func(cfg *Config) string { return cfg.Ollama.ChatModel },
	},
	{
		key: "ollama.embed_model", typ: kString, env: "REGASSIST_OLLAMA_EMBED_MODEL",
		apply: func(cfg *Config, v any) { cfg.Ollama.EmbedModel = v.(string) },
		show:  func(cfg *Config) string { return cfg.Ollama.EmbedModel },
	},
	{
		key: "retrieval.top_k", typ: kInt, env: "REGASSIST_RETRIEVAL_TOP_K",
		apply: func(cfg *Config, v any) { cfg.Retrieval.TopK = v.(int) },
		show:  func(cfg *Config) string { return strconv.Itoa(cfg.Retrieval.TopK) },
	},
	{
		key: "ingest.chunk_size", typ: kInt, env: "REGASSIST_INGEST_CHUNK_SIZE",
		apply: func(cfg *Config, v any) { cfg.Ingest.ChunkSize = v.(int) },
		show:  func(cfg *Config) string { return strconv.Itoa(cfg.Ingest.ChunkSize) },
	},
	{
		key: "ingest.chunk_overlap", typ: kInt, env: "REGASSIST_INGEST_CHUNK_OVERLAP",
		apply: func(cfg *Config, v any) { cfg.Ingest.ChunkOverlap = v.(int) },
		show:  func(cfg *Config) string { return strconv.Itoa(cfg.Ingest.ChunkOverlap) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "REGASSIST_STORAGE_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		show:  func(cfg *Config) string { return cfg.Storage.DataDir },
	},
	{
		key: "data.source_path", typ: kString, env: "REGASSIST_DATA_SOURCE_PATH",
		apply: func(cfg *Config, v any) { cfg.Data.SourcePath = v.(string) },
		show:  func(cfg *Config) string { return cfg.Data.SourcePath },
	},
	{
		key: "log.level", typ: kString, env: "REGASSIST_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		show:  func(cfg *Config) string { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
