package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylx/config"
	"stylx/misc"
	"stylx/state"
)

// initializeAppContext loads configuration, debug report and logger into
// program environment. It runs after command line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.NArg() == 0 {
		// help will be shown, nothing to prepare
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)
	configFile := cmd.String("config")

	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	env.Cfg = cfg

	if cmd.Bool("debug") {
		if err := prepareReport(env, configFile); err != nil {
			return ctx, err
		}
	}

	if env.Log, err = cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started",
		zap.Strings("args", os.Args),
		zap.String("ver", misc.GetVersion()),
		zap.String("runtime", runtime.Version()),
		zap.String("hash", misc.GetGitHash()))
	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Info("Using defaults (no configuration file)")
	}
	env.Log.Debug("Compiler settings",
		zap.Bool("development", cfg.Compiler.Development),
		zap.Stringer("delivery", cfg.Compiler.Delivery),
		zap.Stringer("identity", cfg.Compiler.Identity))
	return ctx, nil
}

// prepareReport creates debug report and puts processed configuration into
// it when configuration file was used.
func prepareReport(env *state.LocalEnv, configFile string) (err error) {
	if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
		return fmt.Errorf("unable to prepare debug reporter: %w", err)
	}
	if len(configFile) == 0 {
		return nil
	}
	if data, err := config.Dump(env.Cfg); err == nil {
		env.Rpt.StoreData("config/"+filepath.Base(configFile), data)
	}
	return nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		fields := []zap.Field{zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice())}
		if env.Styles != nil {
			fields = append(fields, zap.String("context", env.Styles.ID()), zap.Int("declarations", env.Styles.Len()))
		}
		env.Log.Debug("Program ended", fields...)
	}
	env.RestoreStdLog()

	// log is synced and may go into the report now, from here on errors are
	// reported to stderr directly
	if er := env.Rpt.Close(); er != nil {
		err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
	}
	if env.Cfg != nil {
		err = multierr.Append(err, removeEmptyPanicLog(env.Cfg.Logging.FileLogger.Destination))
	}
	return err
}

// removeEmptyPanicLog deletes crash output file created next to the log file
// when program did not crash.
func removeEmptyPanicLog(logFile string) error {
	if len(logFile) == 0 {
		return nil
	}
	debug.SetCrashOutput(nil, debug.CrashOptions{})

	fname := filepath.Join(filepath.Dir(logFile), misc.GetAppName()+"-panic.log")
	fi, err := os.Stat(fname)
	if err != nil || fi.Size() != 0 {
		return nil
	}
	if err := os.Remove(fname); err != nil {
		return fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, err)
	}
	return nil
}

// Subcommands return regular errors, cli.Exit() is never used. errWasHandled
// is set when error already went to the log.
var errWasHandled bool

// exitErrHandler is called before application context is destroyed, so the
// error can still be logged.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// reported either by exitErrHandler or on exit
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	if env := state.EnvFromContext(ctx); env.Log != nil {
		env.Log.Warn("Unknown command, nothing to do", zap.String("command", name))
	}
}
