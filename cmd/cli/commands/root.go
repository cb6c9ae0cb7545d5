package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/amirasaad/fxconverter/infra/initializer"
	"github.com/amirasaad/fxconverter/pkg/app"
	"github.com/amirasaad/fxconverter/pkg/config"
	"github.com/spf13/cobra"
)

// Flags are the persistent flags shared by every command.
type Flags struct {
	EnvFile     string
	Offline     bool
	NoColor     bool
	Verbose     bool
	HTTPTimeout time.Duration
}

// AppBuilder builds the application for a command run. stderr receives logs.
type AppBuilder func(ctx context.Context, flags Flags, stderr io.Writer) (*app.App, error)

// Execute runs the CLI against the real environment. Interrupts cancel the
// conversion in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := NewRootCmd(BuildApp)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// NewRootCmd builds the command tree. build is called once per invocation,
// before the subcommand runs.
func NewRootCmd(build AppBuilder) *cobra.Command {
	var (
		flags  Flags
		appCtx *app.App
	)
	env := &cliEnv{}

	root := &cobra.Command{
		Use:           "fxconvert",
		Short:         "Convert amounts between currencies using live or offline rates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			appCtx = a
			env.app = a
			env.out = newPrinter(cmd.OutOrStdout(), !flags.NoColor)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appCtx == nil {
				return nil
			}
			return appCtx.Close()
		},
	}

	root.PersistentFlags().StringVar(&flags.EnvFile, "env-file", ".env", "environment file, searched upward from the working directory")
	root.PersistentFlags().BoolVar(&flags.Offline, "offline", false, "skip the live source and use the fallback table")
	root.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "log at debug level to stderr")
	root.PersistentFlags().DurationVar(&flags.HTTPTimeout, "http-timeout", 0, "timeout for the live rate request (0 keeps the configured value)")

	root.AddCommand(
		convertCmd(env),
		swapCmd(env),
		currenciesCmd(env),
		interactiveCmd(env),
	)
	return root
}

// BuildApp loads configuration and wires the live source the same way the
// server does. Logs go to stderr at error level unless verbose.
func BuildApp(ctx context.Context, flags Flags, stderr io.Writer) (*app.App, error) {
	logCfg := &config.Log{Level: int(slog.LevelError), Format: "text", TimeFormat: time.Kitchen}
	if flags.Verbose {
		logCfg.Level = int(slog.LevelDebug)
	}
	logger := initializer.NewLogger(stderr, logCfg)
	slog.SetDefault(logger)

	cfg, err := config.Load(flags.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.HTTPTimeout > 0 {
		cfg.ExchangeRateApi.HTTPTimeout = flags.HTTPTimeout
	}

	deps, err := initializer.BuildDeps(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	if flags.Offline {
		deps.Exchange = nil
	}
	return app.New(deps, cfg), nil
}

// cliEnv is filled in by the root command before a subcommand runs.
type cliEnv struct {
	app *app.App
	out *printer
}
