package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/TuftsBCB/searchio/config"
	"github.com/TuftsBCB/searchio/logger"
	"github.com/TuftsBCB/searchio/searchio"
)

// app is the state shared by the commands of a single invocation.
type app struct {
	v          *viper.Viper
	cfg        config.Config
	configFile string
}

// newRootCmd represents the base command when called without any
// subcommands.
func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "hhrq",
		Short: "Query the hits and alignments in hhr reports",
		Long: `Query the hits and alignments in hhr reports.

Settings are read, from lowest to highest priority, from their defaults, the
file given with --config, HHRQ_* environment variables (also read from a .env
file in the working directory) and command line flags.`,
		Version:           "0.1.0",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "path to a YAML settings file")
	flags.String("format", "hhsuite3-text",
		"report format, one of hhsuite2-text, hhsuite3-text")
	flags.String("log-level", "warn", "one of debug, info, warn, error")
	flags.Bool("trust-coordinates", false,
		"don't check alignment coordinates against the hit table")

	rootCmd.AddCommand(
		newHitsCmd(a),
		newAlnCmd(a),
		newLoadCmd(a),
		newQueriesCmd(a),
		newShowCmd(a),
	)
	return rootCmd
}

// setup loads the settings and starts logging before any command runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.bind(cmd.Flags())
	dotenvErr := config.LoadEnv()

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.LogLevel); err != nil {
		return err
	}
	if dotenvErr != nil {
		logger.Debug("No .env found, using local environment")
	}
	logger.Debug("Settings loaded", zap.Any("config", cfg))
	return nil
}

// bind makes the flags of the command being run the highest priority source
// of the settings with the same names. Flags are bound here, and not when the
// commands are built, since several commands share a setting.
func (a *app) bind(flags *pflag.FlagSet) {
	for _, key := range a.v.AllKeys() {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			panic("BUG: " + err.Error())
		}
	}
}

func (a *app) options() []searchio.Option {
	return []searchio.Option{
		searchio.TrustCoordinates(a.cfg.TrustCoordinates),
		searchio.WithLogger(logger.L()),
	}
}
