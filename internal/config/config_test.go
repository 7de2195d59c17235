package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"milelog/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MILELOG_STORE", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "milelog")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Storage.Path != filepath.Join(wantData, "records.json") {
		t.Fatalf("unexpected store path: %q", cfg.Storage.Path)
	}
	if cfg.LockPath() != cfg.Storage.Path+".lock" {
		t.Fatalf("unexpected lock path: %q", cfg.LockPath())
	}
	if cfg.Trend.Degree != 3 {
		t.Fatalf("expected degree 3, got %d", cfg.Trend.Degree)
	}
	if cfg.Prediction.Neighbors != 3 {
		t.Fatalf("expected k=3, got %d", cfg.Prediction.Neighbors)
	}
	if cfg.Clustering.SignedResiduals {
		t.Fatal("expected absolute residuals by default")
	}
	if cfg.API.Bind != "127.0.0.1:7610" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if len(cfg.Vehicles) != 3 {
		t.Fatalf("expected built-in fleet, got %d vehicles", len(cfg.Vehicles))
	}
	if len(cfg.ResidualGroups) != 1 || cfg.ResidualGroups[0].Lower != "L3H2" {
		t.Fatalf("unexpected residual groups: %+v", cfg.ResidualGroups)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "milelog.toml")

	type payload struct {
		Storage struct {
			Backend string `toml:"backend"`
			Path    string `toml:"path"`
		} `toml:"storage"`
		Trend struct {
			Degree int `toml:"degree"`
		} `toml:"trend"`
		Clustering struct {
			SignedResiduals bool `toml:"signed_residuals"`
		} `toml:"clustering"`
		Ingest struct {
			ErrorDir string `toml:"error_dir"`
		} `toml:"ingest"`
	}
	custom := payload{}
	custom.Storage.Backend = "SQLite"
	custom.Storage.Path = filepath.Join(tempDir, "fleet.db")
	custom.Trend.Degree = 2
	custom.Clustering.SignedResiduals = true
	custom.Ingest.ErrorDir = " " + filepath.Join(tempDir, "photos", "..", "errors") + " "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("expected backend to be normalized, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != filepath.Join(tempDir, "fleet.db") {
		t.Fatalf("unexpected store path: %q", cfg.Storage.Path)
	}
	if cfg.Trend.Degree != 2 {
		t.Fatalf("expected degree 2, got %d", cfg.Trend.Degree)
	}
	if !cfg.Clustering.SignedResiduals {
		t.Fatal("expected signed residuals from file")
	}
	if cfg.Ingest.ErrorDir != filepath.Join(tempDir, "errors") {
		t.Fatalf("unexpected error dir: %q", cfg.Ingest.ErrorDir)
	}
	// No [[vehicles]] in the file keeps the built-in fleet.
	if len(cfg.Vehicles) != 3 {
		t.Fatalf("expected default fleet, got %d", len(cfg.Vehicles))
	}
}

func TestStoreEnvFallback(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Chdir(tempDir)
	t.Setenv("MILELOG_STORE", filepath.Join(tempDir, "env.json"))

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage.Path != filepath.Join(tempDir, "env.json") {
		t.Fatalf("expected store path from env, got %q", cfg.Storage.Path)
	}
}

func TestLoadNormalizesLegacyClassNames(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "milelog.toml")
	body := `
[ingest]
default_class = "Dostawczy"

[[vehicles]]
name = "Van A"
class = "Dostawczy"

[[vehicles]]
name = "Van B"
class = "truck"

[[residual_groups]]
class = "DOSTAWCZY"
lower = "van a"
upper = "Van B"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Ingest.DefaultClass != "cargo" {
		t.Fatalf("expected cargo default class, got %q", cfg.Ingest.DefaultClass)
	}
	for _, v := range cfg.Vehicles {
		if v.Class != "cargo" {
			t.Fatalf("vehicle %s: expected cargo, got %q", v.Name, v.Class)
		}
		if v.DailyLimitKm != 300 {
			t.Fatalf("vehicle %s: expected default daily limit, got %d", v.Name, v.DailyLimitKm)
		}
	}
	if cfg.ResidualGroups[0].Class != "cargo" {
		t.Fatalf("unexpected group class %q", cfg.ResidualGroups[0].Class)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[[residual_groups]]") {
		t.Fatalf("sample config missing residual groups: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Vehicles) != len(config.DefaultVehicles()) {
		t.Fatalf("sample fleet drifted from defaults: %d vehicles", len(cfg.Vehicles))
	}
	if !strings.Contains(cfg.Paths.DataDir, "milelog") {
		t.Fatalf("expected data dir to contain milelog, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Storage.Path = "/tmp/records.json"
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"backend", func(c *config.Config) { c.Storage.Backend = "csv" }},
		{"degree", func(c *config.Config) { c.Trend.Degree = 0 }},
		{"neighbors", func(c *config.Config) { c.Prediction.Neighbors = 0 }},
		{"step months", func(c *config.Config) { c.Extrapolation.StepMonths = 0 }},
		{"digits", func(c *config.Config) { c.Ingest.MileageDigits = 12 }},
		{"duplicate vehicle", func(c *config.Config) { c.Vehicles[1].Name = "scudo" }},
		{"reserved name", func(c *config.Config) { c.Vehicles[0].Name = "unknown" }},
		{"vehicle class", func(c *config.Config) { c.Vehicles[0].Class = "unknown" }},
		{"group unregistered", func(c *config.Config) { c.ResidualGroups[0].Upper = "Transit" }},
		{"group wrong class", func(c *config.Config) { c.ResidualGroups[0].Upper = "Scudo" }},
		{"group same labels", func(c *config.Config) { c.ResidualGroups[0].Upper = "L3H2" }},
	}

	if cfg := base(); cfg.Validate() != nil {
		t.Fatalf("expected defaults to validate: %v", cfg.Validate())
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
