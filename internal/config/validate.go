package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSave(); err != nil {
		return err
	}
	if err := c.validateOwnership(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateScenarios(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSave() error {
	switch c.Save.Overwrite {
	case OverwritePrompt, OverwriteAlways, OverwriteNever:
		return nil
	default:
		return fmt.Errorf("save.overwrite: unsupported value %q (want prompt, always, or never)", c.Save.Overwrite)
	}
}

// validateOwnership enforces that no directory is the write target of two
// stages and that no stage writes into the raw input directory.
func (c *Config) validateOwnership() error {
	owners := map[string]string{}
	dirs := []struct{ key, path string }{
		{"paths.raw_data_dir", c.Paths.RawDataDir},
		{"paths.data_dir", c.Paths.DataDir},
		{"paths.features_dir", c.Paths.FeaturesDir},
		{"paths.models_dir", c.Paths.ModelsDir},
		{"paths.scenarios_dir", c.Paths.ScenariosDir},
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir.path) == "" {
			return fmt.Errorf("%s must be set", dir.key)
		}
		if other, ok := owners[dir.path]; ok {
			return fmt.Errorf("%s and %s resolve to the same directory %s", other, dir.key, dir.path)
		}
		owners[dir.path] = dir.key
	}
	return nil
}

func (c *Config) validateModel() error {
	if c.Model.Target == "" {
		return errors.New("model.target must be set")
	}
	if c.Model.Version == "" {
		return errors.New("model.version must be set")
	}
	if c.Model.TestSize <= 0 || c.Model.TestSize >= 1 {
		return errors.New("model.test_size must be between 0 and 1 (exclusive)")
	}
	if c.Model.CVFolds < 2 {
		return errors.New("model.cv_folds must be at least 2")
	}
	if c.Model.RidgeAlpha < 0 {
		return errors.New("model.ridge_alpha must not be negative")
	}
	for _, col := range c.Model.Exclude {
		if col == c.Model.Target {
			return fmt.Errorf("model.exclude must not contain the target column %q", col)
		}
	}
	return nil
}

func (c *Config) validateScenarios() error {
	if c.Scenarios.ExpectedVisitors < 0 {
		return errors.New("scenarios.expected_visitors must not be negative")
	}
	if c.Scenarios.DaysPerVisitor < 0 {
		return errors.New("scenarios.days_per_visitor must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
