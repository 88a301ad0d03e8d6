package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/internal/cmd/tests"
	"go.rxlab.dev/toolbox/lib/fsext"
	"go.rxlab.dev/toolbox/testkit"
)

func readPlan(t *testing.T, ts *tests.GlobalTestState, path string) testkit.Plan {
	t.Helper()
	data, err := fsext.ReadFile(ts.FS, path)
	require.NoError(t, err)
	plan, err := testkit.LoadPlan(data, "")
	require.NoError(t, err)
	return plan
}

func TestPlanNewCmd(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	ts.CmdArgs = []string{"rxtk", "plan", "new", "Login flow", "-O", "plans/login.json"}

	newRootCommand(ts.GlobalState).execute()

	plan := readPlan(t, ts, "plans/login.json")
	assert.Equal(t, "Login flow", plan.Name)
	assert.Empty(t, plan.Steps)

	ts.CmdArgs = []string{"rxtk", "plan", "new", "Other", "-O", "plans/login.json"}
	ts.ExpectedExitCode = int(exitcodes.OutputExists)
	newRootCommand(ts.GlobalState).execute()

	assert.Equal(t, plan.ID, readPlan(t, ts, "plans/login.json").ID)
}

func TestPlanShowCmd(t *testing.T) {
	t.Parallel()

	plan := simplePlan()
	ts := tests.NewGlobalTestState(t)
	writeJSON(t, ts, "plan.json", plan)

	ts.CmdArgs = []string{"rxtk", "plan", "show", "plan.json"}
	newRootCommand(ts.GlobalState).execute()

	expected := "Simple test (3 root steps, 5 total)\n" +
		"├─ textInput \"Hello world\"\n" +
		"├─ buttonClick \"Plus\" on message 1\n" +
		"└─ group Unnamed Group on message 1\n" +
		"   ├─ expectMessageText message 1 contains Hello\n" +
		"   └─ expectMessageCount =1\n"
	assert.Equal(t, expected, ts.Stdout.String())

	ts.Stdout.Reset()
	ts.CmdArgs = []string{"rxtk", "plan", "show", "plan.json", "--ids"}
	newRootCommand(ts.GlobalState).execute()

	out := ts.Stdout.String()
	testkit.Walk(plan.Steps, func(step testkit.Step, _ int) bool {
		assert.Contains(t, out, step.StepID().String())
		return true
	})
}

func TestPlanRemoveCmd(t *testing.T) {
	t.Parallel()

	plan := simplePlan()
	group := plan.Steps[2].(testkit.Group) //nolint:forcetypeassert

	t.Run("root step", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, "plan.json", plan)
		ts.CmdArgs = []string{"rxtk", "plan", "rm", "plan.json", plan.Steps[1].StepID().String()}

		newRootCommand(ts.GlobalState).execute()

		updated := readPlan(t, ts, "plan.json")
		require.Len(t, updated.Steps, 2)
		assert.Equal(t, testkit.KindTextInput, updated.Steps[0].Kind())
		assert.Equal(t, testkit.KindGroup, updated.Steps[1].Kind())
		assert.Equal(t, plan.ID, updated.ID)

		entry := ts.LoggerHook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, "Step removed", entry.Message)
	})

	t.Run("group removes its children", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, "plan.json", plan)
		ts.CmdArgs = []string{"rxtk", "plan", "rm", "plan.json", group.ID.String()}

		newRootCommand(ts.GlobalState).execute()

		assert.Equal(t, 2, readPlan(t, ts, "plan.json").Len())
	})

	t.Run("nested step", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, "plan.json", plan)
		ts.CmdArgs = []string{"rxtk", "plan", "rm", "plan.json", group.Children[0].StepID().String()}
		ts.ExpectedExitCode = int(exitcodes.InvalidPlan)

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stderr.String(), "has no top-level step with id")
		assert.Equal(t, 5, readPlan(t, ts, "plan.json").Len())
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, "plan.json", plan)
		ts.CmdArgs = []string{"rxtk", "plan", "rm", "plan.json", "not-an-id"}
		ts.ExpectedExitCode = -1

		newRootCommand(ts.GlobalState).execute()

		entry := ts.LoggerHook.LastEntry()
		require.NotNil(t, entry)
		assert.Contains(t, entry.Message, "invalid step id 'not-an-id'")
		assert.Equal(t, "step ids are listed by `plan show --ids`", entry.Data["hint"])
	})

	t.Run("document", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeDocument(t, ts, "toolbox.json")
		ts.CmdArgs = []string{"rxtk", "plan", "rm", "toolbox.json", plan.Steps[0].StepID().String()}
		ts.ExpectedExitCode = int(exitcodes.InvalidPlan)

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stderr.String(), "toolbox.json is a toolbox document")
	})
}

func TestPlanFindCmd(t *testing.T) {
	t.Parallel()

	plan := simplePlan()
	nested := plan.Steps[2].(testkit.Group).Children[0] //nolint:forcetypeassert

	ts := tests.NewGlobalTestState(t)
	writeJSON(t, ts, "plan.json", plan)
	ts.CmdArgs = []string{"rxtk", "plan", "find", "plan.json", nested.StepID().String()}

	newRootCommand(ts.GlobalState).execute()

	out := ts.Stdout.String()
	assert.Contains(t, out, "expectMessageText: message 1 contains Hello\n")
	assert.Contains(t, out, `"type": "expectMessageText"`)
	assert.Contains(t, out, nested.StepID().String())

	ts.Stdout.Reset()
	ts.CmdArgs = []string{"rxtk", "plan", "find", "plan.json", plan.ID.String()}
	ts.ExpectedExitCode = int(exitcodes.InvalidPlan)
	newRootCommand(ts.GlobalState).execute()

	assert.Empty(t, ts.Stdout.String())
	assert.Contains(t, ts.Stderr.String(), "has no step with id "+plan.ID.String())
}
