package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"stylx/misc"
	"stylx/process"
	"stylx/state"
)

func main() {
	// compilation checks context between units, so interrupt stops it early
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "atomic CSS compiler for style definitions",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "compile",
				Usage:        "Compiles style definition file(s) into atomic CSS and token maps",
				OnUsageError: usageErrorHandler,
				Action:       process.Compile,
				Flags:        process.CompileFlags(),
				ArgsUsage:    "PATTERN...",
				CustomHelpTemplate: fmt.Sprintf(`%s
PATTERN:
    definition file(s) to compile, glob patterns are supported including "**"
    for recursive matching: "styles/**/*.yaml"

	Every file is a separate compilation unit with "variables", "keyframes"
	and "styles" sections. All units of a single run share compilation
	context, so identical declarations are emitted only once - by the first
	unit using them. Output names are produced from "output" section of
	configuration.
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "render",
				Usage:        "Compiles style definition file(s) and delivers resulting CSS into HTML document",
				OnUsageError: usageErrorHandler,
				Action:       process.Render,
				Flags:        process.RenderFlags(),
				ArgsUsage:    "PATTERN...",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	err := app.Run(ctx, os.Args)
	stop()
	if err != nil {
		// log may be not ready yet (argument parsing) or already closed
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
		}
		os.Exit(1)
	}
}
