package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSave()
	c.normalizeWrangle()
	c.normalizeModel()
	if err := c.normalizeScenarios(); err != nil {
		return err
	}
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ProjectDir) == "" {
		if value, ok := os.LookupEnv("SKIPRICE_PROJECT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.ProjectDir = strings.TrimSpace(value)
		} else {
			c.Paths.ProjectDir = "."
		}
	}
	if c.Paths.ProjectDir, err = expandPath(c.Paths.ProjectDir); err != nil {
		return fmt.Errorf("paths.project_dir: %w", err)
	}

	base := c.Paths.ProjectDir
	fields := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.raw_data_dir", &c.Paths.RawDataDir, defaultRawDataDir},
		{"paths.data_dir", &c.Paths.DataDir, defaultDataDir},
		{"paths.features_dir", &c.Paths.FeaturesDir, defaultFeaturesDir},
		{"paths.models_dir", &c.Paths.ModelsDir, defaultModelsDir},
		{"paths.scenarios_dir", &c.Paths.ScenariosDir, defaultScenariosDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		if *field.value, err = resolveUnder(base, *field.value); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = resolveUnder(base, c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSave() {
	c.Save.Overwrite = strings.ToLower(strings.TrimSpace(c.Save.Overwrite))
	if value, ok := os.LookupEnv("SKIPRICE_OVERWRITE"); ok && strings.TrimSpace(value) != "" {
		c.Save.Overwrite = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Save.Overwrite == "" {
		c.Save.Overwrite = defaultOverwritePolicy
	}
}

func (c *Config) normalizeWrangle() {
	c.Wrangle.InputFile = strings.TrimSpace(c.Wrangle.InputFile)
	if c.Wrangle.InputFile == "" {
		c.Wrangle.InputFile = defaultRawDataFile
	}
	c.Wrangle.DropColumns = dedupeTrimmed(c.Wrangle.DropColumns)
}

func (c *Config) normalizeModel() {
	c.Model.Target = strings.TrimSpace(c.Model.Target)
	if c.Model.Target == "" {
		c.Model.Target = defaultTarget
	}
	c.Model.Version = strings.TrimSpace(c.Model.Version)
	if c.Model.Version == "" {
		c.Model.Version = defaultModelVersion
	}
	c.Model.Exclude = dedupeTrimmed(c.Model.Exclude)
}

func (c *Config) normalizeScenarios() error {
	var err error
	c.Scenarios.Resort = strings.TrimSpace(c.Scenarios.Resort)
	if c.Scenarios.Resort == "" {
		c.Scenarios.Resort = defaultScenarioResort
	}
	if strings.TrimSpace(c.Scenarios.Path) == "" {
		c.Scenarios.Path = defaultScenarioFile
	}
	if c.Scenarios.Path, err = resolveUnder(c.Paths.ProjectDir, c.Scenarios.Path); err != nil {
		return fmt.Errorf("scenarios.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLedger() error {
	var err error
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = filepath.Join(c.Paths.StateDir, defaultLedgerFileName)
	}
	if c.Ledger.Path, err = resolveUnder(c.Paths.ProjectDir, c.Ledger.Path); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func dedupeTrimmed(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
