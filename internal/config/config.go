package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the project directory and the directories owned by each
// pipeline stage. Relative values are resolved against ProjectDir.
type Paths struct {
	ProjectDir   string `toml:"project_dir"`
	RawDataDir   string `toml:"raw_data_dir"`
	DataDir      string `toml:"data_dir"`
	FeaturesDir  string `toml:"features_dir"`
	ModelsDir    string `toml:"models_dir"`
	ScenariosDir string `toml:"scenarios_dir"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Save contains configuration for the safe-save utility.
type Save struct {
	// Overwrite is one of "prompt", "always", or "never".
	Overwrite string `toml:"overwrite"`
}

// Wrangle contains configuration for the cleaning stage.
type Wrangle struct {
	InputFile   string   `toml:"input_file"`
	DropColumns []string `toml:"drop_columns"`
}

// Model contains configuration for the training stage.
type Model struct {
	Target     string   `toml:"target"`
	Version    string   `toml:"version"`
	TestSize   float64  `toml:"test_size"`
	RandomSeed int64    `toml:"random_seed"`
	CVFolds    int      `toml:"cv_folds"`
	RidgeAlpha float64  `toml:"ridge_alpha"`
	Exclude    []string `toml:"exclude"`
}

// Scenarios contains configuration for the business scenario stage.
type Scenarios struct {
	Path             string  `toml:"path"`
	Resort           string  `toml:"resort"`
	ExpectedVisitors float64 `toml:"expected_visitors"`
	DaysPerVisitor   float64 `toml:"days_per_visitor"`
}

// Ledger contains configuration for the save history database.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for skiprice.
//
// Configuration sections:
//   - Paths: project directory and per-stage output directories
//   - Save: overwrite policy for existing files
//   - Wrangle: raw input file and columns dropped while cleaning
//   - Model: target column, artifact version, split and regularization
//   - Scenarios: scenario file, resort under study, revenue assumptions
//   - Ledger: SQLite save history
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Save      Save      `toml:"save"`
	Wrangle   Wrangle   `toml:"wrangle"`
	Model     Model     `toml:"model"`
	Scenarios Scenarios `toml:"scenarios"`
	Ledger    Ledger    `toml:"ledger"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/skiprice/config.toml")
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

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
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
		info, err := os.Stat(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return "", false, fmt.Errorf("config file %s not found", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("skiprice.toml")
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

// EnsureDirectories creates the directories skiprice itself needs to run.
// Stage output directories are not created here; the safe-save utility
// creates them on demand.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RawDataPath returns the absolute path of the raw input dataset.
func (c *Config) RawDataPath() string {
	if filepath.IsAbs(c.Wrangle.InputFile) {
		return c.Wrangle.InputFile
	}
	return filepath.Join(c.Paths.RawDataDir, c.Wrangle.InputFile)
}

// LockPath returns the workspace lock file guarding stage runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "skiprice.lock")
}

// LogPath returns the log file written by the CLI.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "skiprice.log")
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

// resolveUnder expands pathValue, joining relative values onto base.
func resolveUnder(base, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(base, pathValue)
	}
	return expandPath(pathValue)
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
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
