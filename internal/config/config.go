// Package config reads and writes the gig configuration under ~/.config/gig:
// config.json for settings, auth.json for credentials. Environment variables
// take precedence over file values; a .env file in the working directory is
// honored via godotenv.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gigtrack/gig/internal/models"
	"github.com/joho/godotenv"
)

func init() {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()
}

// Config is the global gig config stored at ~/.config/gig/config.json.
type Config struct {
	ServerURL  string  `json:"server_url,omitempty"`
	AnalyzeURL string  `json:"analyze_url,omitempty"`
	CostPerKm  float64 `json:"cost_per_km,omitempty"`
	SyncAuto   *bool   `json:"sync_auto,omitempty"` // nil = default true
}

// AuthCredentials stores authentication state at ~/.config/gig/auth.json.
type AuthCredentials struct {
	APIKey   string `json:"api_key"`
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	Premium  bool   `json:"premium,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

const defaultServerURL = "http://localhost:8080"

// Dir returns ~/.config/gig, creating it if necessary.
func Dir() (string, error) {
	if v := os.Getenv("GIG_CONFIG_DIR"); v != "" {
		if err := os.MkdirAll(v, 0755); err != nil {
			return "", fmt.Errorf("create config dir: %w", err)
		}
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "gig")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// DataDir returns the directory holding the local database.
func DataDir() (string, error) {
	if v := os.Getenv("GIG_DATA_DIR"); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// Load reads the global config; a missing file yields zero values.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the global config atomically (temp file + rename).
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadAuth reads auth credentials, or nil when not logged in.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// SaveAuth writes auth credentials (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(filepath.Join(dir, "auth.json"), data, 0600)
}

// ClearAuth removes the auth.json file.
func ClearAuth() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// GetServerURL returns the record service URL.
// Priority: GIG_SERVER_URL env > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("GIG_SERVER_URL"); v != "" {
		return v
	}
	cfg, err := Load()
	if err == nil && cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return defaultServerURL
}

// GetAnalyzeURL returns the AI analysis proxy URL.
// Priority: GIG_ANALYZE_URL env > config.json > server URL.
func GetAnalyzeURL() string {
	if v := os.Getenv("GIG_ANALYZE_URL"); v != "" {
		return v
	}
	cfg, err := Load()
	if err == nil && cfg.AnalyzeURL != "" {
		return cfg.AnalyzeURL
	}
	return GetServerURL()
}

// GetAPIKey returns the API key.
// Priority: GIG_AUTH_KEY env > auth.json.
func GetAPIKey() string {
	if v := os.Getenv("GIG_AUTH_KEY"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil {
		return creds.APIKey
	}
	return ""
}

// IsAuthenticated returns true if an API key is available.
func IsAuthenticated() bool {
	return GetAPIKey() != ""
}

// GetSettings returns the user's cost model.
// Priority: GIG_COST_PER_KM env > config.json > default.
func GetSettings() models.Settings {
	s := models.Settings{CostPerKm: models.DefaultCostPerKm}
	if v := os.Getenv("GIG_COST_PER_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			s.CostPerKm = f
			return s
		}
	}
	cfg, err := Load()
	if err == nil && cfg.CostPerKm > 0 {
		s.CostPerKm = cfg.CostPerKm
	}
	return s
}

// GetSyncAuto returns whether mutations trigger a best-effort sync cycle.
// Priority: GIG_SYNC_AUTO env > config.json > true.
func GetSyncAuto() bool {
	if v := parseBoolEnv("GIG_SYNC_AUTO"); v != nil {
		return *v
	}
	cfg, err := Load()
	if err == nil && cfg.SyncAuto != nil {
		return *cfg.SyncAuto
	}
	return true
}

// GetDeviceID returns the device ID from auth.json, generating and persisting
// one if needed.
func GetDeviceID() (string, error) {
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}
	id, err := generateDeviceID()
	if err != nil {
		return "", err
	}
	if creds == nil {
		creds = &AuthCredentials{}
	}
	creds.DeviceID = id
	if err := SaveAuth(creds); err != nil {
		return "", err
	}
	return id, nil
}

// generateDeviceID creates a new random device ID (16 bytes hex).
func generateDeviceID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// parseBoolEnv returns nil if env not set, pointer to bool if set.
func parseBoolEnv(envKey string) *bool {
	v := strings.ToLower(os.Getenv(envKey))
	if v == "1" || v == "true" {
		b := true
		return &b
	}
	if v == "0" || v == "false" {
		b := false
		return &b
	}
	return nil
}

// WatchInterval returns the connectivity probe interval.
// Priority: GIG_WATCH_INTERVAL env (duration) > 30s.
func WatchInterval() time.Duration {
	if v := os.Getenv("GIG_WATCH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 30 * time.Second
}
