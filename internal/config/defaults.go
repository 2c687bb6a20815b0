package config

const (
	defaultConfigPath = "~/.config/factor/config.toml"
	projectConfigName = "factor.toml"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultLogOutput  = "stderr"
	defaultOutputDir  = "."
	templatesDirEnv   = "FACTOR_TEMPLATES_DIR"
	logLevelEnv       = "FACTOR_LOG_LEVEL"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Output: defaultLogOutput,
		},
		Render: Render{
			OutputDir: defaultOutputDir,
		},
	}
}
