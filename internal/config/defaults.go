package config

const (
	defaultRawDataDir       = "raw_data"
	defaultDataDir          = "data"
	defaultFeaturesDir      = "data/features"
	defaultModelsDir        = "models"
	defaultScenariosDir     = "data/scenarios"
	defaultStateDir         = ".skiprice"
	defaultLogDirName       = "logs"
	defaultLedgerFileName   = "ledger.db"
	defaultRawDataFile      = "ski_resort_data.csv"
	defaultOverwritePolicy  = OverwritePrompt
	defaultTarget           = "AdultWeekend"
	defaultModelVersion     = "1.0"
	defaultTestSize         = 0.3
	defaultRandomSeed       = 47
	defaultCVFolds          = 5
	defaultRidgeAlpha       = 1.0
	defaultScenarioFile     = "scenarios.hcl"
	defaultScenarioResort   = "Big Mountain Resort"
	defaultExpectedVisitors = 350000
	defaultDaysPerVisitor   = 5
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Overwrite policies accepted by save.overwrite.
const (
	OverwritePrompt = "prompt"
	OverwriteAlways = "always"
	OverwriteNever  = "never"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RawDataDir:   defaultRawDataDir,
			DataDir:      defaultDataDir,
			FeaturesDir:  defaultFeaturesDir,
			ModelsDir:    defaultModelsDir,
			ScenariosDir: defaultScenariosDir,
			StateDir:     defaultStateDir,
		},
		Save: Save{
			Overwrite: defaultOverwritePolicy,
		},
		Wrangle: Wrangle{
			InputFile:   defaultRawDataFile,
			DropColumns: []string{"fastEight", "AdultWeekday"},
		},
		Model: Model{
			Target:     defaultTarget,
			Version:    defaultModelVersion,
			TestSize:   defaultTestSize,
			RandomSeed: defaultRandomSeed,
			CVFolds:    defaultCVFolds,
			RidgeAlpha: defaultRidgeAlpha,
		},
		Scenarios: Scenarios{
			Path:             defaultScenarioFile,
			Resort:           defaultScenarioResort,
			ExpectedVisitors: defaultExpectedVisitors,
			DaysPerVisitor:   defaultDaysPerVisitor,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
