package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OwlPlug/owlplug-studiorack-registry/internal/branding"
	"github.com/OwlPlug/owlplug-studiorack-registry/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configFile string
	verbose    bool
	logFormat  string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` fetches the StudioRack plugin registry and rewrites it as an
OwlPlug registry: one package per plugin slug, typed versions and per-platform
download bundles. Run without a subcommand to build the registry.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose, logFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.With(
			zap.String("run_id", uuid.NewString()),
			zap.String("command", cmd.Name()),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		// Sync on stderr fails with EINVAL on some platforms; nothing to report.
		_ = logger.Sync()
	},
	RunE: runBuild,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to a YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&logFormat, "log-format", "json", "Log encoding (json, console)")

	pf.String("build-dir", config.DefaultBuildDir, envUsage("Directory receiving registry.json and registry.min.json", config.KeyBuildDir))
	pf.String("registry-url", config.DefaultRegistryURL, envUsage("StudioRack registry base URL or local directory", config.KeyRegistryURL))
	pf.String("github-url", config.DefaultGitHubURL, envUsage("Base URL of the host serving release downloads", config.KeyGitHubURL))
	pf.String("source-format", string(config.FormatUnified), envUsage("Upstream layout (unified, legacy)", config.KeySourceFormat))
	pf.Duration("timeout", config.DefaultTimeout, envUsage("Timeout for each upstream request", config.KeyTimeout))
}

// envUsage appends the environment variable that also sets key.
func envUsage(usage, key string) string {
	return usage + " [$" + branding.EnvVar(key) + "]"
}

// newLogger builds the process logger. Logs go to stderr so command output
// on stdout stays machine-readable.
func newLogger(debug bool, format string) (*zap.Logger, error) {
	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or console)", format)
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}

// loadConfig resolves the effective configuration for cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command with build info injected via ldflags.
// SIGINT and SIGTERM cancel the run; a cancelled build writes nothing.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
