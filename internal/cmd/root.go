// Package cmd implements the rxtk command line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/internal/build"
	"go.rxlab.dev/toolbox/internal/log"
	"go.rxlab.dev/toolbox/internal/ui"
)

const waitLoggerCloseTimeout = time.Second * 5

const rootUsageTemplate = `{{.Short}}

Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if .HasAvailableSubCommands}}

Core Commands:{{range .Commands}}{{if eq .Name "record"}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{range .Commands}}{{if eq .Name "export"}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Additional Commands:{{range .Commands}}{{if and .IsAvailableCommand (ne .Name "record") (ne .Name "export") ` +
	`(ne .Name "help")}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}

Flags:
  -h, --help      Show help
      --version   Show version information

Examples:
  # Record a test plan from a chat event script
  $ {{.CommandPath}} record events.yaml -O plan.json

  # Generate a Jest test suite from it
  $ {{.CommandPath}} export plan.json --auto-name
{{if .HasAvailableSubCommands}}
Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`

// ExecuteWithGlobalState runs the root command with an existing GlobalState.
// It adds all child commands to the root command and it sets flags appropriately.
// It is called by main.main(). It only needs to happen once to the rootCmd.
func ExecuteWithGlobalState(gs *state.GlobalState) {
	newRootCommand(gs).execute()
}

// This is to keep all fields needed for the main/root rxtk command
type rootCommand struct {
	globalState *state.GlobalState

	cmd           *cobra.Command
	stopLoggersCh chan struct{}
	loggersWg     sync.WaitGroup
}

func newRootCommand(gs *state.GlobalState) *rootCommand {
	c := &rootCommand{
		globalState:   gs,
		stopLoggersCh: make(chan struct{}),
	}
	// the base command when called without any subcommands.
	rootCmd := &cobra.Command{
		Use:               gs.BinaryName,
		Short:             "rxtk records chat bot test plans and turns them into test suites",
		Long:              "\n" + getBanner(gs.Flags.NoColor || !gs.Stdout.IsTTY),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
		Version:           build.FullVersion(),
	}

	rootCmd.SetVersionTemplate(
		`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "v%s\n" .Version}}`,
	)

	rootCmd.PersistentFlags().AddFlagSet(rootCmdPersistentFlagSet(gs))
	rootCmd.SetArgs(gs.CmdArgs[1:])
	rootCmd.SetOut(gs.Stdout)
	rootCmd.SetErr(gs.Stderr)
	rootCmd.SetIn(gs.Stdin)

	subCommands := []func(*state.GlobalState) *cobra.Command{
		getCmdRecord, getCmdExport, getCmdPlan, getCmdKinds, getCmdTemplate, getCmdVersion,
	}

	defaultUsageTemplate := (&cobra.Command{}).UsageTemplate()
	defaultUsageTemplate = strings.ReplaceAll(defaultUsageTemplate, "FlagUsages", "FlagUsagesWrapped 120")

	for _, sc := range subCommands {
		cmd := sc(gs)
		cmd.SetUsageTemplate(defaultUsageTemplate)
		rootCmd.AddCommand(cmd)
	}

	rootCmd.SetUsageTemplate(rootUsageTemplate)

	c.cmd = rootCmd
	return c
}

func getBanner(noColor bool) string {
	return ui.GetColor(noColor, color.FgCyan).Sprint(ui.Banner())
}

func (c *rootCommand) persistentPreRunE(_ *cobra.Command, _ []string) error {
	err := c.setupLoggers(c.stopLoggersCh)
	if err != nil {
		return err
	}

	c.globalState.Logger.Debugf("rxtk version: v%s", build.FullVersion())

	return nil
}

func (c *rootCommand) execute() {
	ctx, cancel := context.WithCancel(c.globalState.Ctx)
	c.globalState.Ctx = ctx

	var err error
	defer func() {
		cancel()
		if err != nil {
			errText, fields := errext.Format(err)
			c.globalState.Logger.WithFields(fields).Error(errText)
		}
		c.stopLoggers()
		c.globalState.OSExit(exitCodeOf(err))
	}()
	defer func() {
		if r := recover(); r != nil {
			err = errext.WithExitCodeIfNone(
				fmt.Errorf("unexpected rxtk panic: %s\n%s", r, debug.Stack()), exitcodes.GoPanic)
		}
	}()

	err = c.cmd.Execute()
}

// exitCodeOf maps the result of a command to the process exit code. Errors
// without an exit code, like cobra's argument errors, exit with -1.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ecerr errext.HasExitCode
	if errors.As(err, &ecerr) {
		return int(ecerr.ExitCode())
	}
	return -1
}

func (c *rootCommand) stopLoggers() {
	done := make(chan struct{})
	go func() {
		c.loggersWg.Wait()
		close(done)
	}()
	close(c.stopLoggersCh)
	select {
	case <-done:
	case <-time.After(waitLoggerCloseTimeout):
		c.globalState.FallbackLogger.Errorf("The logger didn't stop in %s", waitLoggerCloseTimeout)
	}
}

func rootCmdPersistentFlagSet(gs *state.GlobalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	// We need to use `gs.Flags.<value>` both as the destination and as
	// the value here, since the config values could have already been set by
	// their respective environment variables. However, we then also have to
	// explicitly set the DefValue to the respective default value from
	// `gs.DefaultFlags.<value>`, so that the `rxtk --help` message is
	// not messed up...

	flags.StringVar(&gs.Flags.LogOutput, "log-output", gs.Flags.LogOutput,
		"change the output for rxtk logs, possible values are: "+
			"'stderr', 'stdout', 'none', 'file[=./path.log]'")
	flags.Lookup("log-output").DefValue = gs.DefaultFlags.LogOutput

	flags.StringVar(&gs.Flags.LogFormat, "log-format", gs.Flags.LogFormat, "log output format")
	flags.Lookup("log-format").DefValue = gs.DefaultFlags.LogFormat

	flags.StringVarP(&gs.Flags.ConfigFilePath, "config", "c", gs.Flags.ConfigFilePath, "JSON config file")
	// And we also need to explicitly set the default value for the usage message here, so things
	// like `RXTK_CONFIG="blah" rxtk export -h` don't produce a weird usage message
	flags.Lookup("config").DefValue = gs.DefaultFlags.ConfigFilePath
	must(cobra.MarkFlagFilename(flags, "config"))

	flags.BoolVar(&gs.Flags.NoColor, "no-color", gs.Flags.NoColor, "disable colored output")
	flags.Lookup("no-color").DefValue = strconv.FormatBool(gs.DefaultFlags.NoColor)

	flags.BoolVarP(&gs.Flags.Verbose, "verbose", "v", gs.DefaultFlags.Verbose, "enable verbose logging")

	return flags
}

// newLogFormatter returns the formatter for the --log-format value.
func newLogFormatter(format string, forceColors, noColor bool) (logrus.Formatter, error) {
	switch format {
	case "", "text":
		return &logrus.TextFormatter{ForceColors: forceColors, DisableColors: noColor}, nil
	case "json":
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, errext.WithHint(
			errext.WithExitCodeIfNone(fmt.Errorf("unsupported log format '%s'", format), exitcodes.InvalidConfig),
			"the supported log formats are 'text' and 'json'",
		)
	}
}

// setupLoggers configures the logger from the global flags. The file hook
// keeps running until stop is closed.
func (c *rootCommand) setupLoggers(stop <-chan struct{}) error {
	gs := c.globalState
	if gs.Flags.Verbose {
		gs.Logger.SetLevel(logrus.DebugLevel)
	}

	var (
		hook        log.AsyncHook
		forceColors bool
		err         error
	)
	switch line := gs.Flags.LogOutput; {
	case line == "stderr":
		forceColors = !gs.Flags.NoColor && gs.Stderr.IsTTY
		gs.Logger.SetOutput(gs.Stderr)
	case line == "stdout":
		forceColors = !gs.Flags.NoColor && gs.Stdout.IsTTY
		gs.Logger.SetOutput(gs.Stdout)
	case line == "none":
		gs.Logger.SetOutput(io.Discard)
	case strings.HasPrefix(line, "file"):
		hook, err = log.FileHookFromConfigLine(gs.FS, gs.Getwd, gs.FallbackLogger, line)
		if err != nil {
			return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
		}
	default:
		return errext.WithExitCodeIfNone(fmt.Errorf("unsupported log output '%s'", line), exitcodes.InvalidConfig)
	}

	formatter, err := newLogFormatter(gs.Flags.LogFormat, forceColors, gs.Flags.NoColor)
	if err != nil {
		return err
	}
	gs.Logger.SetFormatter(formatter)

	if hook != nil {
		ctx, cancel := context.WithCancel(context.Background())
		c.loggersWg.Add(2)
		go func() {
			defer c.loggersWg.Done()
			hook.Listen(ctx)
		}()
		go func() {
			defer c.loggersWg.Done()
			<-stop
			cancel()
		}()
		gs.Logger.AddHook(hook)
		gs.Logger.SetOutput(io.Discard)
	}
	return nil
}
