// Package cli implements the risus command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/config"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/observability"
)

// viperKeyAnnotation marks a flag with the configuration key it overrides.
const viperKeyAnnotation = "risus/viper-key"

// ErrInvalidArgument is returned for a malformed pool size or target.
var ErrInvalidArgument = errors.New("invalid argument")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "risus",
	Short: "Exact success odds for RISUS dice pools",
	Long: `risus computes the exact probability that a pool of six-sided dice
rolls at least a target number of successes, by enumerating every failing
sequence of faces.

Rulesets decide which faces succeed and which faces are free (rolled again
without spending a die). "evens" and "evens-up" are built in; more can be
loaded from YAML files (ruleset.dir) or Lua scripts (ruleset.script_dir).

Examples:
  risus probability 3 2                 # odds of 2 successes on 3 dice
  risus failures --ruleset evens 3 2    # every failing roll
  risus table --max-target 8            # the full odds table
  risus serve --port 8080               # HTTP API`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfgFile, "config", "", "path to configuration file")
	fs.String("ruleset", "", "active ruleset ID")
	fs.String("log-level", "", "minimum log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or console")
	bindFlag(fs, "ruleset", "ruleset.id")
	bindFlag(fs, "log-level", "logging.level")
	bindFlag(fs, "log-format", "logging.format")
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries what setup builds to the running command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *ruleset.Registry
	policy   ruleset.Policy
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

func bindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, viperKeyAnnotation, []string{key})
}

// setup loads configuration (defaults, file, RISUS_ environment, then
// flags), builds the logger and the ruleset registry.
func setup(cmd *cobra.Command, _ []string) error {
	v := config.NewViper()
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKeyAnnotation]; len(keys) == 1 && bindErr == nil {
			bindErr = v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return fmt.Errorf("binding flags: %w", bindErr)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	registry, err := buildRegistry(cfg.Ruleset, logger)
	if err != nil {
		return err
	}
	policy, err := registry.Get(cfg.Ruleset.ID)
	if err != nil {
		return err
	}

	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		policy:   policy,
	}))
	return nil
}

func loadConfig(v *viper.Viper) (config.Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return config.LoadFromViper(v)
}

func teardown(cmd *cobra.Command, _ []string) error {
	if a := appFrom(cmd); a != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// poolAndTarget parses the two positional arguments every odds command takes.
func poolAndTarget(args []string) (int, int, error) {
	pool, err := strconv.Atoi(args[0])
	if err != nil || pool < 1 {
		return 0, 0, fmt.Errorf("%w: pool size %q must be a positive integer", ErrInvalidArgument, args[0])
	}
	target, err := strconv.Atoi(args[1])
	if err != nil || target < 1 {
		return 0, 0, fmt.Errorf("%w: target %q must be a positive integer", ErrInvalidArgument, args[1])
	}
	return pool, target, nil
}
