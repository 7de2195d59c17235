package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Storage selects and locates the record store backend.
type Storage struct {
	Backend            string `toml:"backend"` // "json" or "sqlite"
	Path               string `toml:"path"`    // Default: <data_dir>/records.json or records.db
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
}

// Trend contains polynomial fit settings.
type Trend struct {
	Degree int `toml:"degree"`
}

// Clustering contains residual clustering settings.
type Clustering struct {
	Seed          uint64 `toml:"seed"`
	Restarts      int    `toml:"restarts"`
	MaxIterations int    `toml:"max_iterations"`
	// SignedResiduals clusters on mileage minus trend instead of its
	// absolute value.
	SignedResiduals bool `toml:"signed_residuals"`
}

// Prediction contains nearest-neighbour settings.
type Prediction struct {
	Neighbors int `toml:"neighbors"`
}

// Extrapolation contains projection grid settings.
type Extrapolation struct {
	StepMonths int `toml:"step_months"`
}

// Ingest contains settings for turning images into readings.
type Ingest struct {
	DefaultClass         string `toml:"default_class"`
	OCRLanguage          string `toml:"ocr_language"`
	MileageDigits        int    `toml:"mileage_digits"`
	AcceptFirstCandidate bool   `toml:"accept_first_candidate"`
	// ErrorDir receives copies of unreadable and multi-read photos.
	ErrorDir             string `toml:"error_dir"`
}

// API contains HTTP server settings.
type API struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Vehicle is one entry of the static fleet registry.
type Vehicle struct {
	Name             string `toml:"name"`
	Model            string `toml:"model"`
	Class            string `toml:"class"`
	Year             int    `toml:"year"`
	Color            string `toml:"color"`
	Engine           string `toml:"engine"`
	VIN              string `toml:"vin"`
	Registration     string `toml:"registration"`
	EmissionStandard string `toml:"emission_standard"`
	MaxLoadKg        int    `toml:"max_load_kg"`
	SpeedLimitKmh    int    `toml:"speed_limit_kmh"`
	DailyLimitKm     int    `toml:"daily_limit_km"`
	Seats            int    `toml:"seats"`
}

// ResidualGroup maps the two residual clusters of a class to identities.
// Lower receives the cluster with the smaller mean residual.
type ResidualGroup struct {
	Class string `toml:"class"`
	Lower string `toml:"lower"`
	Upper string `toml:"upper"`
}

// Config encapsulates all configuration values for milelog.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Storage: record store backend, location, and lock timeout
//   - Trend, Clustering, Prediction, Extrapolation: engine parameters
//   - Ingest: OCR and reading acceptance rules
//   - API: HTTP bind address
//   - Logging: log format and level
//   - Vehicles, ResidualGroups: fleet registry and residual label mapping
type Config struct {
	Paths          Paths           `toml:"paths"`
	Storage        Storage         `toml:"storage"`
	Trend          Trend           `toml:"trend"`
	Clustering     Clustering      `toml:"clustering"`
	Prediction     Prediction      `toml:"prediction"`
	Extrapolation  Extrapolation   `toml:"extrapolation"`
	Ingest         Ingest          `toml:"ingest"`
	API            API             `toml:"api"`
	Logging        Logging         `toml:"logging"`
	Vehicles       []Vehicle       `toml:"vehicles"`
	ResidualGroups []ResidualGroup `toml:"residual_groups"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Tables given in the file replace the built-in fleet entirely.
		cfg.Vehicles = nil
		cfg.ResidualGroups = nil
		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if cfg.Vehicles == nil {
			cfg.Vehicles = DefaultVehicles()
		}
		if cfg.ResidualGroups == nil {
			cfg.ResidualGroups = DefaultResidualGroups()
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("milelog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories and the parent of
// the store file.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if strings.TrimSpace(c.Storage.Path) != "" {
		dirs = append(dirs, filepath.Dir(c.Storage.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockTimeout returns the store lock acquisition timeout.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Storage.LockTimeoutSeconds) * time.Second
}

// LockPath returns the advisory lock file guarding the store.
func (c *Config) LockPath() string {
	return c.Storage.Path + ".lock"
}

// TesseractBinary returns the tesseract executable name used by doctor checks.
func (c *Config) TesseractBinary() string {
	return "tesseract"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
