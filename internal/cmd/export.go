package cmd

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/codegen"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
)

type exportCmd struct {
	gs *state.GlobalState

	output   string
	autoName bool
	force    bool
}

func (c *exportCmd) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.AddFlagSet(configFlagSet())
	flags.StringVarP(&c.output, "output", "O", "",
		"write the generated source to this file, '-' for stdout; with --auto-name, the directory to write to")
	flags.BoolVar(&c.autoName, "auto-name", false, "derive the output file name from the plan name")
	flags.BoolVarP(&c.force, "force", "f", false, "overwrite existing files")
	return flags
}

func (c *exportCmd) run(cmd *cobra.Command, args []string) error {
	conf, err := getConsolidatedConfig(c.gs, getConfig(cmd.Flags()))
	if err != nil {
		return err
	}

	plan, err := loadPlanFile(c.gs, args[0], conf.PlanName.String)
	if err != nil {
		return err
	}

	registry, err := newRegistry(c.gs, conf)
	if err != nil {
		return err
	}
	kind, err := registry.Lookup(conf.Kind.String)
	if err != nil {
		err = errext.WithHint(err, "run `"+c.gs.BinaryName+" kinds` to list the available output kinds")
		return errext.WithExitCodeIfNone(err, exitcodes.GenerationFailed)
	}

	source, err := kind.Render(plan)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.GenerationFailed)
	}

	output := c.output
	if c.autoName {
		dir := output
		if dir == stdoutPath {
			dir = ""
		}
		output = filepath.Join(dir, codegen.SuggestedFileName(plan.Name, kind))
	}
	if err := writeOutput(c.gs, output, []byte(source), c.force); err != nil {
		return err
	}

	c.gs.Logger.WithFields(logrus.Fields{
		"plan":  plan.Name,
		"kind":  kind.Name,
		"steps": plan.Len(),
	}).Debug("Test source generated")
	return nil
}

func getCmdExport(gs *state.GlobalState) *cobra.Command {
	c := &exportCmd{gs: gs}

	exampleText := getExampleText(gs, `
  # Print the Jest test suite for a plan
  $ {{.}} export plan.json

  # Write it next to the plan, named after the plan
  $ {{.}} export plan.json --auto-name

  # Pick one plan out of a toolbox document and use a user output kind
  $ {{.}} export toolbox.json --plan "Login flow" --kind pytest -O login_test.py`[1:])

	exportCmd := &cobra.Command{
		Use:   "export <plan.json>",
		Short: "Generate test source code from a test plan",
		Long: `Generate test source code from a test plan.

The plan file holds either a single test plan or a toolbox document with a
"testPlans" array. The source is rendered with the selected output kind; the
built-in "jest" kind produces a Jest suite for the mock Telegram client.`,
		Example: exampleText,
		Args:    exactArgsWithMsg(1, "arg should either be a plan file or a toolbox document"),
		RunE:    c.run,
	}
	exportCmd.Flags().AddFlagSet(c.flagSet())

	return exportCmd
}
