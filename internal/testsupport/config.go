package testsupport

import (
	"path/filepath"
	"testing"

	"skiprice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose project directory is a fresh temp
// directory. Every stage directory resolves under it, existing outputs are
// never overwritten, and the config passes validation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths = config.Paths{
		ProjectDir:   base,
		RawDataDir:   filepath.Join(base, "raw_data"),
		DataDir:      filepath.Join(base, "data"),
		FeaturesDir:  filepath.Join(base, "data", "features"),
		ModelsDir:    filepath.Join(base, "models"),
		ScenariosDir: filepath.Join(base, "data", "scenarios"),
		StateDir:     filepath.Join(base, ".skiprice"),
		LogDir:       filepath.Join(base, ".skiprice", "logs"),
	}
	cfgVal.Save.Overwrite = config.OverwriteNever
	cfgVal.Scenarios.Path = filepath.Join(base, "scenarios.hcl")
	cfgVal.Ledger.Path = filepath.Join(base, ".skiprice", "ledger.db")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithOverwrite sets the save.overwrite policy.
func WithOverwrite(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Save.Overwrite = policy
	}
}

// WithLedgerDisabled turns off the save ledger.
func WithLedgerDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ledger.Enabled = false
	}
}

// WithConfig applies an arbitrary mutation.
func WithConfig(mutate func(*config.Config)) ConfigOption {
	return func(b *configBuilder) {
		mutate(b.cfg)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.ProjectDir
}
