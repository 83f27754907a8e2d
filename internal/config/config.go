// Package config loads the migration configuration: a TOML file carrying
// the marathon list and id mapping, with credentials overridable from the
// environment. The loaded Config is an explicit value handed to the
// orchestrator; nothing reads it as ambient global state.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"marathon-migrate/internal/domain"
)

//go:embed sample_config.toml
var sampleConfig string

const DefaultPath = "migrate.toml"

type Log struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type Legacy struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

type Backend struct {
	BaseURL  string `toml:"base_url"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

type Rate struct {
	LegacyRPS    float64 `toml:"legacy_rps"`
	LegacyBurst  int     `toml:"legacy_burst"`
	BackendRPS   float64 `toml:"backend_rps"`
	BackendBurst int     `toml:"backend_burst"`
	FetchWorkers int     `toml:"fetch_workers"`
}

type SFTP struct {
	Enabled   bool   `toml:"enabled"`
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	User      string `toml:"user"`
	Pass      string `toml:"pass"`
	RemoteDir string `toml:"remote_dir"`
}

type Config struct {
	DataDir   string                 `toml:"data_dir"`
	Log       Log                    `toml:"log"`
	Legacy    Legacy                 `toml:"legacy"`
	Backend   Backend                `toml:"backend"`
	Rate      Rate                   `toml:"rate"`
	SFTP      SFTP                   `toml:"sftp"`
	Marathons []domain.CourseMapping `toml:"marathons"`
}

func defaults() Config {
	return Config{
		DataDir: "migration-data",
		Log:     Log{Level: "info"},
		Rate: Rate{
			LegacyRPS:    0.5,
			LegacyBurst:  1,
			BackendRPS:   2,
			BackendBurst: 1,
			FetchWorkers: 4,
		},
		SFTP: SFTP{Port: 22, RemoteDir: "/reports"},
	}
}

// Load reads the TOML file at path (DefaultPath when empty), applies env
// overrides, and validates the marathon list. A missing file at the default
// path is fine; a missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := defaults()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// run on env vars alone
	default:
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DataDir = getenv("MIGRATE_DATA_DIR", cfg.DataDir)
	cfg.Legacy.BaseURL = getenv("LEGACY_BASE_URL", cfg.Legacy.BaseURL)
	cfg.Legacy.Username = getenv("LEGACY_USERNAME", cfg.Legacy.Username)
	cfg.Legacy.Password = getenv("LEGACY_PASSWORD", cfg.Legacy.Password)
	cfg.Backend.BaseURL = getenv("BACKEND_BASE_URL", cfg.Backend.BaseURL)
	cfg.Backend.Email = getenv("BACKEND_EMAIL", cfg.Backend.Email)
	cfg.Backend.Password = getenv("BACKEND_PASSWORD", cfg.Backend.Password)
	cfg.SFTP.Host = getenv("SFTP_HOST", cfg.SFTP.Host)
	cfg.SFTP.User = getenv("SFTP_USER", cfg.SFTP.User)
	cfg.SFTP.Pass = getenv("SFTP_PASS", cfg.SFTP.Pass)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func validate(cfg Config) error {
	seen := make(map[string]bool, len(cfg.Marathons))
	for i, m := range cfg.Marathons {
		if strings.TrimSpace(m.SourceID) == "" {
			return fmt.Errorf("config: marathons[%d] missing source_id", i)
		}
		if seen[m.SourceID] {
			return fmt.Errorf("config: duplicate marathon source_id %q", m.SourceID)
		}
		seen[m.SourceID] = true
	}
	return nil
}

// RequireLegacy checks the credentials the download phase needs.
func (c Config) RequireLegacy() error {
	if c.Legacy.BaseURL == "" || c.Legacy.Username == "" || c.Legacy.Password == "" {
		return errors.New("config: missing legacy credentials (legacy.base_url/username/password or LEGACY_* env)")
	}
	return nil
}

// RequireBackend checks the credentials the upload phase needs.
func (c Config) RequireBackend() error {
	if c.Backend.BaseURL == "" || c.Backend.Email == "" || c.Backend.Password == "" {
		return errors.New("config: missing backend credentials (backend.base_url/email/password or BACKEND_* env)")
	}
	return nil
}

// Mapping returns the course entry for a source id, if configured.
func (c Config) Mapping(sourceID string) (domain.CourseMapping, bool) {
	for _, m := range c.Marathons {
		if m.SourceID == sourceID {
			return m, true
		}
	}
	return domain.CourseMapping{}, false
}

// WriteSample writes the embedded sample config to path; it refuses to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("config: write sample %s: %w", path, err)
	}
	return nil
}
