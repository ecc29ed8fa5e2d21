package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Ollama    OllamaConfig
	Retrieval RetrievalConfig
	Ingest    IngestConfig
	Storage   StorageConfig
	Data      DataConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
	// APIToken gates the management endpoints (/reindex). Empty disables them.
	APIToken string
}

type OllamaConfig struct {
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

type RetrievalConfig struct {
	TopK int
}

type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type StorageConfig struct {
	DataDir string
}

type DataConfig struct {
	// SourcePath points at the nested students/achievements JSON file.
	SourcePath string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	dataDir := defaultDataDir()
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.1:8b",
			EmbedModel: "nomic-embed-text",
		},
		Retrieval: RetrievalConfig{
			TopK: 8,
		},
		Ingest: IngestConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Storage: StorageConfig{
			DataDir: dataDir,
		},
		Data: DataConfig{
			SourcePath: filepath.Join(dataDir, "students_achievements.json"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a .env file (if present), the JSON file
// backend at $XDG_CONFIG_HOME/regassist/config.json, and REGASSIST_*
// environment variables, in increasing order of precedence.
func Load() (Config, error) {
	godotenv.Load()
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// The default source path tracks the data dir unless set explicitly.
	if cfg.Data.SourcePath == "" {
		cfg.Data.SourcePath = filepath.Join(cfg.Storage.DataDir, "students_achievements.json")
	}

	return cfg, nil
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "regassist-data"
		}
	}
	return filepath.Join(dir, "regassist")
}
