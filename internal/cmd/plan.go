package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/internal/ui"
	"go.rxlab.dev/toolbox/lib/fsext"
	"go.rxlab.dev/toolbox/testkit"
)

func getCmdPlan(gs *state.GlobalState) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Create and inspect test plans",
		Long: `Create and inspect test plans.

Plan files are the JSON documents written by the record command.`,
	}

	planCmd.AddCommand(
		getCmdPlanNew(gs),
		getCmdPlanShow(gs),
		getCmdPlanRemove(gs),
		getCmdPlanFind(gs),
	)
	return planCmd
}

func marshalPlan(plan testkit.Plan) ([]byte, error) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func parseStepID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		err = fmt.Errorf("invalid step id '%s': %w", s, err)
		return id, errext.WithHint(err, "step ids are listed by `plan show --ids`")
	}
	return id, nil
}

func getCmdPlanNew(gs *state.GlobalState) *cobra.Command {
	var (
		output string
		force  bool
	)

	newCmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty test plan",
		Example: getExampleText(gs, `
  $ {{.}} plan new "Login flow" -O login.json`[1:]),
		Args: exactArgsWithMsg(1, "arg should be the plan name"),
		RunE: func(_ *cobra.Command, args []string) error {
			plan := testkit.NewPlan(args[0])
			data, err := marshalPlan(plan)
			if err != nil {
				return err
			}
			if err := writeOutput(gs, output, data, force); err != nil {
				return err
			}
			gs.Logger.WithField("id", plan.ID).Debug("Test plan created")
			return nil
		},
	}
	newCmd.Flags().StringVarP(&output, "output", "O", "", "write the plan to this file instead of stdout")
	newCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing files")
	return newCmd
}

func getCmdPlanShow(gs *state.GlobalState) *cobra.Command {
	var (
		planName string
		showIDs  bool
	)

	showCmd := &cobra.Command{
		Use:   "show <plan.json>",
		Short: "Print the steps of a test plan as a tree",
		Args:  exactArgsWithMsg(1, "arg should either be a plan file or a toolbox document"),
		RunE: func(_ *cobra.Command, args []string) error {
			plan, err := loadPlanFile(gs, args[0], planName)
			if err != nil {
				return err
			}
			printToStdout(gs, ui.PlanTree(plan, ui.TreeOptions{
				NoColor: gs.Flags.NoColor || !gs.Stdout.IsTTY,
				ShowIDs: showIDs,
			}))
			return nil
		},
	}
	showCmd.Flags().StringVar(&planName, "plan", "", "name of the test plan to show when the file holds several")
	showCmd.Flags().BoolVar(&showIDs, "ids", false, "print the id of every step")
	return showCmd
}

func getCmdPlanRemove(gs *state.GlobalState) *cobra.Command {
	rmCmd := &cobra.Command{
		Use:   "rm <plan.json> <step id>",
		Short: "Remove a top-level step from a test plan",
		Long: `Remove a top-level step from a test plan.

Only steps at the root of the plan can be removed; removing a group removes
its children with it. The plan file is rewritten in place.`,
		Args: exactArgsWithMsg(2, "args should be a plan file and a step id"),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseStepID(args[1])
			if err != nil {
				return err
			}
			data, err := fsext.ReadFile(gs.FS, args[0])
			if err != nil {
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
			}
			if gjson.GetBytes(data, testkit.DocumentPlansKey).Exists() {
				err := fmt.Errorf("%s is a toolbox document, only plan files can be edited", args[0])
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
			}
			plan, err := testkit.LoadPlan(data, "")
			if err != nil {
				err = fmt.Errorf("couldn't load the test plan from %s: %w", args[0], err)
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
			}

			updated, ok := plan.DeleteStep(id)
			if !ok {
				err := fmt.Errorf("plan '%s' has no top-level step with id %s", plan.Name, id)
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
			}

			data, err = marshalPlan(updated)
			if err != nil {
				return err
			}
			if err := writeOutput(gs, args[0], data, true); err != nil {
				return err
			}
			gs.Logger.WithFields(logrus.Fields{
				"id":    id,
				"steps": updated.Len(),
			}).Info("Step removed")
			return nil
		},
	}
	return rmCmd
}

func getCmdPlanFind(gs *state.GlobalState) *cobra.Command {
	var planName string

	findCmd := &cobra.Command{
		Use:   "find <plan.json> <step id>",
		Short: "Print a step of a test plan, searching nested groups too",
		Args:  exactArgsWithMsg(2, "args should be a plan file and a step id"),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseStepID(args[1])
			if err != nil {
				return err
			}
			plan, err := loadPlanFile(gs, args[0], planName)
			if err != nil {
				return err
			}

			step, ok := testkit.FindStep(id, plan.Steps)
			if !ok {
				err := fmt.Errorf("plan '%s' has no step with id %s", plan.Name, id)
				return errext.WithExitCodeIfNone(err, exitcodes.InvalidPlan)
			}

			data, err := json.MarshalIndent(step, "", "  ")
			if err != nil {
				return err
			}
			printToStdout(gs, fmt.Sprintf("%s: %s\n%s\n", step.Kind(), ui.DescribeStep(step), data))
			return nil
		},
	}
	findCmd.Flags().StringVar(&planName, "plan", "", "name of the test plan to search when the file holds several")
	return findCmd
}
