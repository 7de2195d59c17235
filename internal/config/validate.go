package config

import (
	"errors"
	"fmt"
	"strings"

	"milelog/internal/records"
	"milelog/internal/textutil"
)

const maxTrendDegree = 8

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateFleet(); err != nil {
		return err
	}
	if err := c.validateResidualGroups(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("storage.backend must be \"json\" or \"sqlite\", got %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path must be set")
	}
	if c.Storage.LockTimeoutSeconds <= 0 {
		return errors.New("storage.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Trend.Degree < 1 || c.Trend.Degree > maxTrendDegree {
		return fmt.Errorf("trend.degree must be between 1 and %d", maxTrendDegree)
	}
	return ensurePositiveMap(map[string]int{
		"clustering.restarts":       c.Clustering.Restarts,
		"clustering.max_iterations": c.Clustering.MaxIterations,
		"prediction.neighbors":      c.Prediction.Neighbors,
		"extrapolation.step_months": c.Extrapolation.StepMonths,
	})
}

func (c *Config) validateIngest() error {
	if c.Ingest.MileageDigits < 1 || c.Ingest.MileageDigits > 9 {
		return errors.New("ingest.mileage_digits must be between 1 and 9")
	}
	return nil
}

func (c *Config) validateFleet() error {
	seen := make(map[string]struct{}, len(c.Vehicles))
	for i, v := range c.Vehicles {
		if v.Name == "" {
			return fmt.Errorf("vehicles[%d].name must be set", i)
		}
		key := textutil.Fold(v.Name)
		if key == textutil.Fold(string(records.IdentityUnknown)) {
			return fmt.Errorf("vehicles[%d].name %q is reserved", i, v.Name)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("vehicles[%d].name %q is duplicated", i, v.Name)
		}
		seen[key] = struct{}{}
		if records.Class(v.Class) == records.ClassUnknown {
			return fmt.Errorf("vehicles[%d].class must be personal or cargo", i)
		}
		if v.MaxLoadKg < 0 || v.SpeedLimitKmh < 0 || v.Seats < 0 {
			return fmt.Errorf("vehicles[%d]: numeric attributes must be >= 0", i)
		}
	}
	return nil
}

func (c *Config) validateResidualGroups() error {
	classOf := make(map[string]string, len(c.Vehicles))
	for _, v := range c.Vehicles {
		classOf[textutil.Fold(v.Name)] = v.Class
	}
	seen := make(map[string]struct{}, len(c.ResidualGroups))
	for i, g := range c.ResidualGroups {
		if records.Class(g.Class) == records.ClassUnknown {
			return fmt.Errorf("residual_groups[%d].class must be personal or cargo", i)
		}
		if _, dup := seen[g.Class]; dup {
			return fmt.Errorf("residual_groups[%d]: class %q already has a group", i, g.Class)
		}
		seen[g.Class] = struct{}{}
		if g.Lower == "" || g.Upper == "" {
			return fmt.Errorf("residual_groups[%d]: lower and upper must be set", i)
		}
		if textutil.EqualFold(g.Lower, g.Upper) {
			return fmt.Errorf("residual_groups[%d]: lower and upper must differ", i)
		}
		for _, name := range []string{g.Lower, g.Upper} {
			class, ok := classOf[textutil.Fold(name)]
			if !ok {
				return fmt.Errorf("residual_groups[%d]: vehicle %q is not registered", i, name)
			}
			if class != g.Class {
				return fmt.Errorf("residual_groups[%d]: vehicle %q is class %s, not %s", i, name, class, g.Class)
			}
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
