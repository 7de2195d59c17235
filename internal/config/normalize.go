package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"milelog/internal/records"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeEngine()
	if err := c.normalizeIngest(); err != nil {
		return err
	}
	c.normalizeAPI()
	c.normalizeLogging()
	c.normalizeFleet()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.Path = strings.TrimSpace(c.Storage.Path)
	if c.Storage.Path == "" {
		if value, ok := os.LookupEnv("MILELOG_STORE"); ok {
			c.Storage.Path = strings.TrimSpace(value)
		}
	}
	if c.Storage.Path == "" {
		name := "records.json"
		if c.Storage.Backend == "sqlite" {
			name = "records.db"
		}
		c.Storage.Path = filepath.Join(c.Paths.DataDir, name)
	}
	var err error
	if c.Storage.Path, err = expandPath(c.Storage.Path); err != nil {
		return fmt.Errorf("storage.path: %w", err)
	}
	if c.Storage.LockTimeoutSeconds <= 0 {
		c.Storage.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeEngine() {
	if c.Trend.Degree <= 0 {
		c.Trend.Degree = defaultTrendDegree
	}
	if c.Clustering.Restarts <= 0 {
		c.Clustering.Restarts = defaultClusterRestarts
	}
	if c.Clustering.MaxIterations <= 0 {
		c.Clustering.MaxIterations = defaultClusterIterations
	}
	if c.Prediction.Neighbors <= 0 {
		c.Prediction.Neighbors = defaultNeighbors
	}
	if c.Extrapolation.StepMonths <= 0 {
		c.Extrapolation.StepMonths = defaultStepMonths
	}
}

func (c *Config) normalizeIngest() error {
	c.Ingest.DefaultClass = string(records.ParseClass(c.Ingest.DefaultClass))
	c.Ingest.OCRLanguage = strings.TrimSpace(c.Ingest.OCRLanguage)
	if c.Ingest.OCRLanguage == "" {
		c.Ingest.OCRLanguage = defaultOCRLanguage
	}
	if c.Ingest.MileageDigits <= 0 {
		c.Ingest.MileageDigits = defaultMileageDigits
	}
	var err error
	if c.Ingest.ErrorDir, err = expandPath(strings.TrimSpace(c.Ingest.ErrorDir)); err != nil {
		return fmt.Errorf("ingest.error_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAPI() {
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeFleet() {
	for i := range c.Vehicles {
		v := &c.Vehicles[i]
		v.Name = strings.TrimSpace(v.Name)
		v.Model = strings.TrimSpace(v.Model)
		v.Class = string(records.ParseClass(v.Class))
		v.VIN = strings.ToUpper(strings.TrimSpace(v.VIN))
		v.Registration = strings.ToUpper(strings.TrimSpace(v.Registration))
		if v.DailyLimitKm <= 0 {
			v.DailyLimitKm = defaultDailyLimitKm
		}
	}
	for i := range c.ResidualGroups {
		g := &c.ResidualGroups[i]
		g.Class = string(records.ParseClass(g.Class))
		g.Lower = strings.TrimSpace(g.Lower)
		g.Upper = strings.TrimSpace(g.Upper)
	}
}
