package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/lib/fsext"
	"go.rxlab.dev/toolbox/testkit"
)

// stdoutPath is the output path that prints to the standard output.
const stdoutPath = "-"

// Panic if the given error is not nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}

func exactArgsWithMsg(n int, msg string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("accepts %d arg(s), received %d: %s", n, len(args), msg)
		}
		return nil
	}
}

func printToStdout(gs *state.GlobalState, s string) {
	if _, err := fmt.Fprint(gs.Stdout, s); err != nil {
		gs.Logger.Errorf("could not print '%s' to stdout: %s", s, err.Error())
	}
}

func getExampleText(gs *state.GlobalState, tpl string) string {
	var exampleText bytes.Buffer
	exampleTemplate := template.Must(template.New("").Parse(tpl))

	if err := exampleTemplate.Execute(&exampleText, gs.BinaryName); err != nil {
		gs.Logger.WithError(err).Error("Error during help example generation")
	}

	return exampleText.String()
}

// writeOutput prints data when path is empty or "-" and writes it to path
// otherwise. Existing files are only replaced with overwrite.
func writeOutput(gs *state.GlobalState, path string, data []byte, overwrite bool) error {
	if path == "" || path == stdoutPath {
		printToStdout(gs, string(data))
		return nil
	}

	err := fsext.WriteNewFile(gs.FS, path, data, overwrite)
	if errors.Is(err, os.ErrExist) {
		err = errext.WithHint(err, "use --force to overwrite it")
		return errext.WithExitCodeIfNone(err, exitcodes.OutputExists)
	}
	if err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}
	gs.Logger.WithField("file", path).Debug("Output written")
	return nil
}

// loadPlanFile reads the plan called name from the plan or toolbox document
// stored at path.
func loadPlanFile(gs *state.GlobalState, path, name string) (testkit.Plan, error) {
	data, err := fsext.ReadFile(gs.FS, path)
	if err != nil {
		return testkit.Plan{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
	}

	plan, err := testkit.LoadPlan(data, name)
	if err == nil {
		return plan, nil
	}

	err = fmt.Errorf("couldn't load the test plan from %s: %w", path, err)
	if errors.Is(err, testkit.ErrPlanNotFound) {
		if names, nerr := testkit.PlanNames(data); nerr == nil && len(names) > 0 {
			err = errext.WithHint(err, fmt.Sprintf("available plans: %q", names))
		}
	}
	return testkit.Plan{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
}
