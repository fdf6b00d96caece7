package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plexify/plexify/pkg/config"
	"github.com/plexify/plexify/pkg/logger"
	"github.com/plexify/plexify/pkg/version"
)

const (
	defaultConfigFile = "plexify.yaml"
	defaultEnvFile    = ".env"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "plexify",
		Short:         "Plexify LLM gateway",
		Long:          "Plexify serves structured-output agents, narration, podcasts and document export over HTTP.",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return SetupGlobalConfig(cmd)
		},
	}
	addGlobalFlags(root)
	root.AddCommand(
		ServeCmd(),
		AgentCmd(),
		AgentsCmd(),
		VersionCmd(),
	)
	return root
}

func addGlobalFlags(root *cobra.Command) {
	def := config.Default()
	flags := root.PersistentFlags()
	flags.String("config", defaultConfigFile, "Path to the YAML configuration file")
	flags.String("env-file", defaultEnvFile, "Path to the environment variables file")
	flags.String("log-level", def.Runtime.LogLevel, "Log level (debug, info, warn, error)")
	flags.Bool("log-json", def.Runtime.LogJSON, "Output logs in JSON format")
	flags.Bool("log-source", false, "Include source file and line in logs")
	flags.Bool("debug", false, "Enable debug mode (sets log level to debug)")
	flags.String("environment", def.Runtime.Environment, "Runtime environment (env: RUNTIME_ENVIRONMENT)")

	flags.String("host", def.Server.Host, "Host to bind the server to (env: SERVER_HOST)")
	flags.Int("port", def.Server.Port, "Port to run the server on (env: SERVER_PORT, PORT)")
	flags.Bool("cors", def.Server.CORSEnabled, "Enable CORS (env: SERVER_CORS_ENABLED)")
	flags.Bool("metrics", def.Monitoring.Enabled, "Expose Prometheus metrics (env: MONITORING_ENABLED)")
	flags.Bool("rate-limit", def.RateLimit.Enabled, "Enable per-client rate limiting (env: RATELIMIT_ENABLED)")

	flags.String("model", def.Anthropic.Model, "Preferred Anthropic model (env: ANTHROPIC_MODEL)")
	flags.Int("transient-retry", def.Anthropic.TransientRetries,
		"Retries per model on 429/5xx (env: ANTHROPIC_TRANSIENT_RETRIES)")
	flags.String("sources-dir", def.Sources.RootDir, "Root directory of project documents (env: SOURCES_ROOT_DIR)")
	flags.String("output-dir", def.Storage.OutputDir, "Directory generated media is written to (env: STORAGE_OUTPUT_DIR)")
	flags.String("tts-provider", def.TTS.Provider, "Speech provider: elevenlabs or polly (env: TTS_PROVIDER)")
}

// SetupGlobalConfig loads the env file, configuration and logger, and attaches
// them to the command context.
func SetupGlobalConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	envFile, err := loadEnvFile(cmd)
	if err != nil {
		return err
	}
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, manager, err := loadConfig(ctx, cmd, configFile)
	if err != nil {
		return err
	}
	log, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithManager(ctx, manager)
	cmd.SetContext(ctx)
	log.Debug("Configuration loaded", "config_file", configFile, "env_file", envFile, "environment", cfg.Runtime.Environment)
	return nil
}

// loadConfig merges defaults, the YAML file, the environment and changed flags,
// in increasing precedence.
func loadConfig(ctx context.Context, cmd *cobra.Command, configFile string) (*config.Config, *config.Manager, error) {
	sources := []config.Source{
		config.NewDefaultProvider(),
	}
	if configFile != "" {
		sources = append(sources, config.NewYAMLProvider(configFile))
	}
	sources = append(sources, config.NewEnvProvider())
	cliFlags := make(map[string]any)
	extractCLIFlags(cmd, cliFlags)
	if len(cliFlags) > 0 {
		sources = append(sources, config.NewCLIProvider(cliFlags))
	}
	manager := config.NewManager(config.NewService())
	cfg, err := manager.Load(ctx, sources...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, manager, nil
}

func setupLogger(cmd *cobra.Command, cfg *config.Config) (logger.Logger, error) {
	_, _, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return nil, err
	}
	level := cfg.Runtime.LogLevel
	if debug, err := cmd.Flags().GetBool("debug"); err == nil && debug {
		level = "debug"
	}
	return logger.SetupLogger(level, cfg.Runtime.LogJSON, logSource), nil
}
