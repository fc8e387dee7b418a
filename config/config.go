package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the docbot service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig holds on-disk layout configuration.
type StorageConfig struct {
	// DataDir holds the vector index, passage metadata and upload registry.
	DataDir string `yaml:"data_dir"`
	// UploadDir receives uploaded source files and the ingestion artifact.
	UploadDir string `yaml:"upload_dir"`
}

// ChunkingConfig holds the sliding-window chunker parameters.
type ChunkingConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai-compatible", "mock"
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"` // Environment variable for API key
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the embedding call timeout.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// GenerationConfig holds answer-generation provider configuration.
type GenerationConfig struct {
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Timeout returns the generation call timeout.
func (c GenerationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// WatchConfig holds upload-directory watch configuration.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Storage: StorageConfig{
			DataDir:   "vectorstore",
			UploadDir: "uploads",
		},
		Chunking: ChunkingConfig{
			Size:    700,
			Overlap: 100,
		},
		Embedding: EmbeddingConfig{
			Provider:    "openai-compatible",
			Model:       "all-minilm",
			BaseURL:     "http://localhost:11434/v1",
			APIKeyEnv:   "EMBEDDING_API_KEY",
			Dimension:   384,
			BatchSize:   100,
			TimeoutSecs: 60,
		},
		Generation: GenerationConfig{
			Model:       "llama-3.3-70b-versatile",
			BaseURL:     "https://api.groq.com/openai/v1",
			APIKeyEnv:   "GROQ_API_KEY",
			TimeoutSecs: 60,
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Watch: WatchConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docbot.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docbot.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docbot", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexFilePath returns the path to the serialized vector index.
func IndexFilePath(dataDir string) string {
	return filepath.Join(dataDir, "index.bin")
}

// DocsFilePath returns the path to the passage metadata file.
func DocsFilePath(dataDir string) string {
	return filepath.Join(dataDir, "documents.json")
}

// RegistryDBPath returns the path to the upload registry database.
func RegistryDBPath(dataDir string) string {
	return filepath.Join(dataDir, "registry.db")
}

// ArtifactPath returns the path to the cached ingestion artifact.
func ArtifactPath(uploadDir string) string {
	return filepath.Join(uploadDir, "document.json")
}

// EnsureDirs creates the storage directories if they do not exist.
func (c *Config) EnsureDirs() error {
	if err := os.MkdirAll(c.Storage.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.Storage.UploadDir, 0755)
}
