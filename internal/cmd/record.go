package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/lib/fsext"
	"go.rxlab.dev/toolbox/testkit/recorder"
)

type recordCmd struct {
	gs *state.GlobalState

	name   string
	output string
	force  bool
}

func (c *recordCmd) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVar(&c.name, "name", "", "name of the recorded plan, overrides the name in the script")
	flags.StringVarP(&c.output, "output", "O", "", "write the plan to this file instead of stdout")
	flags.BoolVarP(&c.force, "force", "f", false, "overwrite existing files")
	return flags
}

func (c *recordCmd) run(_ *cobra.Command, args []string) error {
	data, err := fsext.ReadFile(c.gs.FS, args[0])
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidScript)
	}

	script, err := recorder.ParseScript(data)
	if err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidScript)
	}
	if c.name != "" {
		script.Name = c.name
	}

	session := recorder.NewSession(c.gs.Logger)
	plan, err := script.Replay(session)
	if err != nil {
		err = fmt.Errorf("couldn't replay %s: %w", args[0], err)
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidScript)
	}

	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	if err := writeOutput(c.gs, c.output, append(planJSON, '\n'), c.force); err != nil {
		return err
	}

	c.gs.Logger.WithFields(logrus.Fields{
		"plan":   plan.Name,
		"events": len(script.Events),
		"steps":  plan.Len(),
	}).Debug("Test plan recorded")
	return nil
}

func getCmdRecord(gs *state.GlobalState) *cobra.Command {
	c := &recordCmd{gs: gs}

	exampleText := getExampleText(gs, `
  # Record a plan from a chat event script and print it
  $ {{.}} record events.yaml

  # Save it under another name
  $ {{.}} record events.yaml --name "Login flow" -O login.json`[1:])

	recordCmd := &cobra.Command{
		Use:   "record <events.yaml>",
		Short: "Record a test plan from a chat event script",
		Long: `Record a test plan from a chat event script.

The script lists the events of a chat session in order: texts sent, buttons
clicked, message counts and the expectations picked for a message. Every
event goes through a recording session, exactly like a live chat would, and
the resulting test plan is written as JSON.`,
		Example: exampleText,
		Args:    exactArgsWithMsg(1, "arg should be a YAML event script"),
		RunE:    c.run,
	}
	recordCmd.Flags().AddFlagSet(c.flagSet())

	return recordCmd
}
