// Package config loads the docqa service configuration from a TOML
// file, applying sane defaults for anything the file omits. Secrets
// are never stored in the file: the OpenAI API key comes from the
// environment only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is the config file looked up inside the docqa
// directory when no explicit path is given.
const DefaultFileName = "config.toml"

// Duration is a time.Duration that decodes from TOML strings like
// "30s" or "2m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full service configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Storage   Storage   `toml:"storage"`
	OpenAI    OpenAI    `toml:"openai"`
	Chunking  Chunking  `toml:"chunking"`
	Retrieval Retrieval `toml:"retrieval"`
}

// Server configures the HTTP listener.
type Server struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `toml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`

	// MaxUploadBytes caps the accepted upload size.
	MaxUploadBytes int64 `toml:"max_upload_bytes"`
}

// Storage configures where indexes and scratch files live.
type Storage struct {
	// IndexDir is the root directory for per-user index databases.
	// Defaults to ~/.docqa/index.
	IndexDir string `toml:"index_dir"`

	// ScratchDir holds uploads while they are being processed.
	// Defaults to the system temp directory.
	ScratchDir string `toml:"scratch_dir"`
}

// OpenAI configures the embedding and chat-completion providers.
type OpenAI struct {
	// BaseURL overrides the API endpoint, e.g. for a compatible
	// inference server. Empty means the official endpoint.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel names the embedding model.
	EmbeddingModel string `toml:"embedding_model"`

	// ChatModel names the chat-completion model.
	ChatModel string `toml:"chat_model"`

	// RequestsPerSecond rate-limits embedding calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// Timeout bounds individual provider calls.
	Timeout Duration `toml:"timeout"`
}

// Chunking configures the document splitter.
type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Retrieval configures similarity search.
type Retrieval struct {
	// TopK is how many chunks are retrieved per question.
	TopK int `toml:"top_k"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: Server{
			Addr:           ":8000",
			ReadTimeout:    Duration(30 * time.Second),
			WriteTimeout:   Duration(2 * time.Minute),
			MaxUploadBytes: 32 << 20,
		},
		Storage: Storage{},
		OpenAI: OpenAI{
			EmbeddingModel:    "text-embedding-3-small",
			ChatModel:         "gpt-4o-mini",
			RequestsPerSecond: 5,
			Timeout:           Duration(60 * time.Second),
		},
		Chunking: Chunking{
			Size:    200,
			Overlap: 20,
		},
		Retrieval: Retrieval{
			TopK: 4,
		},
	}
}

// Load reads the config file at path. A missing file yields the
// defaults; a present but malformed file is an error. Fields the file
// omits keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the default config file location,
// ~/.docqa/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docqa", DefaultFileName), nil
}

func (c Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive")
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.OpenAI.RequestsPerSecond <= 0 {
		return fmt.Errorf("openai.requests_per_second must be positive")
	}
	return nil
}
