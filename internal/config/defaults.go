package config

const (
	defaultConfigPath         = "~/.config/milelog/config.toml"
	defaultDataDir            = "~/.local/share/milelog"
	defaultLogDir             = "~/.local/share/milelog/logs"
	defaultStorageBackend     = "json"
	defaultLockTimeoutSeconds = 10
	defaultTrendDegree        = 3
	defaultClusterRestarts    = 10
	defaultClusterIterations  = 300
	defaultNeighbors          = 3
	defaultStepMonths         = 1
	defaultIngestClass        = "unknown"
	defaultOCRLanguage        = "eng"
	defaultMileageDigits      = 6
	defaultAPIBind            = "127.0.0.1:7610"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultDailyLimitKm       = 300
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Storage: Storage{
			Backend:            defaultStorageBackend,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Trend: Trend{
			Degree: defaultTrendDegree,
		},
		Clustering: Clustering{
			Seed:          0,
			Restarts:      defaultClusterRestarts,
			MaxIterations: defaultClusterIterations,
		},
		Prediction: Prediction{
			Neighbors: defaultNeighbors,
		},
		Extrapolation: Extrapolation{
			StepMonths: defaultStepMonths,
		},
		Ingest: Ingest{
			DefaultClass:  defaultIngestClass,
			OCRLanguage:   defaultOCRLanguage,
			MileageDigits: defaultMileageDigits,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Vehicles:       DefaultVehicles(),
		ResidualGroups: DefaultResidualGroups(),
	}
}

// DefaultVehicles returns the built-in fleet: one passenger van and two
// cargo vans of the same make that differ only in body length.
func DefaultVehicles() []Vehicle {
	return []Vehicle{
		{
			Name:             "Scudo",
			Model:            "Fiat Scudo",
			Class:            "personal",
			Year:             2013,
			Color:            "Granatowy",
			Engine:           "2.0 Multijet 163KM",
			EmissionStandard: "Euro 5",
			SpeedLimitKmh:    140,
			DailyLimitKm:     defaultDailyLimitKm,
			Seats:            9,
		},
		{
			Name:             "L3H2",
			Model:            "Peugeot Boxer L3H2",
			Class:            "cargo",
			Year:             2011,
			Color:            "Biały",
			Engine:           "2.2 HDI 120KM",
			EmissionStandard: "Euro 5",
			MaxLoadKg:        1190,
			SpeedLimitKmh:    120,
			DailyLimitKm:     defaultDailyLimitKm,
			Seats:            3,
		},
		{
			Name:             "L4H2",
			Model:            "Peugeot Boxer L4H2",
			Class:            "cargo",
			Year:             2010,
			Engine:           "3.0 HDI 160KM",
			EmissionStandard: "Euro 4",
			MaxLoadKg:        1439,
			SpeedLimitKmh:    140,
			DailyLimitKm:     defaultDailyLimitKm,
			Seats:            3,
		},
	}
}

// DefaultResidualGroups returns the label mapping for the built-in cargo pair.
func DefaultResidualGroups() []ResidualGroup {
	return []ResidualGroup{
		{Class: "cargo", Lower: "L3H2", Upper: "L4H2"},
	}
}
