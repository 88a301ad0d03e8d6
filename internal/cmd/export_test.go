package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/internal/cmd/tests"
	"go.rxlab.dev/toolbox/lib/fsext"
	"go.rxlab.dev/toolbox/testkit"
)

func simplePlan() testkit.Plan {
	return testkit.NewPlan("Simple test").
		AddStep(testkit.NewTextInput("Hello world")).
		AddStep(testkit.NewButtonClick("Plus", 1)).
		AddStep(testkit.NewGroup("", 1,
			testkit.NewExpectMessageText(1, testkit.Contains("Hello")),
			testkit.NewExpectMessageCount(testkit.CountIs(1)),
		))
}

func writeJSON(t *testing.T, ts *tests.GlobalTestState, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, ts.FS.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, fsext.WriteFile(ts.FS, path, data, 0o644))
}

const namesTemplate = `{{range .Steps}}{{.Type}}
{{end}}`

func installNamesKind(t *testing.T, ts *tests.GlobalTestState) {
	t.Helper()
	dir := filepath.Join(ts.UserOSConfigDir, "rxtk", "templates", "names")
	require.NoError(t, ts.FS.MkdirAll(dir, 0o755))
	require.NoError(t, fsext.WriteFile(ts.FS, filepath.Join(dir, "template.tmpl"), []byte(namesTemplate), 0o644))
	require.NoError(t, fsext.WriteFile(ts.FS, filepath.Join(dir, "metadata.yaml"), []byte("extension: txt\n"), 0o644))
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	writeJSON(t, ts, "plan.json", simplePlan())
	ts.CmdArgs = []string{"rxtk", "export", "plan.json"}

	newRootCommand(ts.GlobalState).execute()

	out := ts.Stdout.String()
	assert.Contains(t, out, `describe("Simple test", () => {`)
	assert.Contains(t, out, `content: "Hello world",`)
	assert.Contains(t, out, `expect(message4?.text).toContain("Hello");`)
	assert.Contains(t, out, `expect(messages5.data.messages.length).toBe(1);`)
	assert.Empty(t, ts.LoggerHook.AllEntries())
}

func TestExportCmd_AutoName(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	writeJSON(t, ts, "plan.json", simplePlan())

	ts.CmdArgs = []string{"rxtk", "export", "plan.json", "--auto-name"}
	newRootCommand(ts.GlobalState).execute()

	data, err := fsext.ReadFile(ts.FS, "simple_test.test.ts")
	require.NoError(t, err)
	assert.Contains(t, string(data), `describe("Simple test"`)
	assert.Empty(t, ts.Stdout.String())

	ts.CmdArgs = []string{"rxtk", "export", "plan.json", "--auto-name", "-O", "generated"}
	newRootCommand(ts.GlobalState).execute()

	exists, err := fsext.Exists(ts.FS, filepath.Join("generated", "simple_test.test.ts"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExportCmd_FileExists(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	writeJSON(t, ts, "plan.json", simplePlan())
	require.NoError(t, fsext.WriteFile(ts.FS, "out.test.ts", []byte("untouched"), 0o644))

	ts.CmdArgs = []string{"rxtk", "export", "plan.json", "-O", "out.test.ts"}
	ts.ExpectedExitCode = int(exitcodes.OutputExists)
	newRootCommand(ts.GlobalState).execute()

	data, err := fsext.ReadFile(ts.FS, "out.test.ts")
	require.NoError(t, err)
	assert.Equal(t, "untouched", string(data))

	entry := ts.LoggerHook.LastEntry()
	require.NotNil(t, entry)
	assert.Contains(t, entry.Message, "file already exists")
	assert.Equal(t, "use --force to overwrite it", entry.Data["hint"])

	ts.CmdArgs = []string{"rxtk", "export", "plan.json", "-O", "out.test.ts", "--force"}
	ts.ExpectedExitCode = 0
	newRootCommand(ts.GlobalState).execute()

	data, err = fsext.ReadFile(ts.FS, "out.test.ts")
	require.NoError(t, err)
	assert.Contains(t, string(data), `describe("Simple test"`)
}

func TestExportCmd_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		args     []string
		exitCode exitcodes.ExitCode
		message  string
		hint     string
	}{
		{
			name:     "unknown kind",
			args:     []string{"--kind", "mocha"},
			exitCode: exitcodes.GenerationFailed,
			message:  `output kind "mocha": unknown output kind`,
			hint:     "run `rxtk kinds` to list the available output kinds",
		},
		{
			name:     "missing config file",
			args:     []string{"-c", "/nope/config.json"},
			exitCode: exitcodes.InvalidConfig,
			message:  "couldn't read the config file /nope/config.json",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := tests.NewGlobalTestState(t)
			writeJSON(t, ts, "plan.json", simplePlan())
			ts.CmdArgs = append([]string{"rxtk", "export", "plan.json"}, tc.args...)
			ts.ExpectedExitCode = int(tc.exitCode)

			newRootCommand(ts.GlobalState).execute()

			entry := ts.LoggerHook.LastEntry()
			require.NotNil(t, entry)
			assert.Contains(t, entry.Message, tc.message)
			assert.Equal(t, int(tc.exitCode), entry.Data["exitCode"])
			if tc.hint != "" {
				assert.Equal(t, tc.hint, entry.Data["hint"])
			}
			assert.Empty(t, ts.Stdout.String())
		})
	}
}

func TestExportCmd_InvalidPlanFile(t *testing.T) {
	t.Parallel()

	ts := tests.NewGlobalTestState(t)
	require.NoError(t, fsext.WriteFile(ts.FS, "plan.json", []byte(`{"name": `), 0o644))
	ts.CmdArgs = []string{"rxtk", "export", "plan.json"}
	ts.ExpectedExitCode = int(exitcodes.InvalidPlan)

	newRootCommand(ts.GlobalState).execute()

	assert.Contains(t, ts.Stderr.String(), "couldn't load the test plan from plan.json")
}

func writeDocument(t *testing.T, ts *tests.GlobalTestState, path string) {
	t.Helper()
	writeJSON(t, ts, path, map[string]interface{}{
		testkit.DocumentPlansKey: []testkit.Plan{
			testkit.NewPlan("First"),
			testkit.NewPlan("Second").AddStep(testkit.NewTextInput("hi")),
		},
	})
}

func TestExportCmd_Document(t *testing.T) {
	t.Parallel()

	t.Run("named plan", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeDocument(t, ts, "toolbox.json")
		ts.CmdArgs = []string{"rxtk", "export", "toolbox.json", "--plan", "Second"}

		newRootCommand(ts.GlobalState).execute()

		out := ts.Stdout.String()
		assert.Contains(t, out, `describe("Second", () => {`)
		assert.Contains(t, out, `content: "hi",`)
	})

	t.Run("plan name from the environment", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeDocument(t, ts, "toolbox.json")
		ts.Env["RXTK_PLAN_NAME"] = "Second"
		ts.CmdArgs = []string{"rxtk", "export", "toolbox.json"}

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stdout.String(), `describe("Second", () => {`)
	})

	t.Run("first plan by default", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeDocument(t, ts, "toolbox.json")
		ts.CmdArgs = []string{"rxtk", "export", "toolbox.json"}

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stdout.String(), `describe("First", () => {`)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeDocument(t, ts, "toolbox.json")
		ts.CmdArgs = []string{"rxtk", "export", "toolbox.json", "--plan", "Missing"}
		ts.ExpectedExitCode = int(exitcodes.InvalidPlan)

		newRootCommand(ts.GlobalState).execute()

		entry := ts.LoggerHook.LastEntry()
		require.NotNil(t, entry)
		assert.Contains(t, entry.Message, `test plan not found: "Missing"`)
		assert.Equal(t, `available plans: ["First" "Second"]`, entry.Data["hint"])
	})
}

func TestExportCmd_UserKind(t *testing.T) {
	t.Parallel()

	t.Run("flag", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		installNamesKind(t, ts)
		writeJSON(t, ts, "plan.json", simplePlan())
		ts.CmdArgs = []string{"rxtk", "export", "plan.json", "--kind", "names", "--auto-name"}

		newRootCommand(ts.GlobalState).execute()

		data, err := fsext.ReadFile(ts.FS, "simple_test.txt")
		require.NoError(t, err)
		assert.Equal(t, "textInput\nbuttonClick\ngroup\n", string(data))
	})

	t.Run("environment", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		installNamesKind(t, ts)
		writeJSON(t, ts, "plan.json", simplePlan())
		ts.Env["RXTK_KIND"] = "names"
		ts.CmdArgs = []string{"rxtk", "export", "plan.json"}

		newRootCommand(ts.GlobalState).execute()

		assert.Equal(t, "textInput\nbuttonClick\ngroup\n", ts.Stdout.String())
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		installNamesKind(t, ts)
		writeJSON(t, ts, "plan.json", simplePlan())
		writeJSON(t, ts, ts.Flags.ConfigFilePath, map[string]string{"kind": "names"})
		ts.CmdArgs = []string{"rxtk", "export", "plan.json"}

		newRootCommand(ts.GlobalState).execute()

		assert.Equal(t, "textInput\nbuttonClick\ngroup\n", ts.Stdout.String())
	})

	t.Run("flag overrides environment", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		installNamesKind(t, ts)
		writeJSON(t, ts, "plan.json", simplePlan())
		ts.Env["RXTK_KIND"] = "names"
		ts.CmdArgs = []string{"rxtk", "export", "plan.json", "--kind", "jest"}

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stdout.String(), `describe("Simple test"`)
	})
	t.Run("user template named after a built-in kind", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		dir := filepath.Join(ts.UserOSConfigDir, "rxtk", "templates", "jest")
		require.NoError(t, ts.FS.MkdirAll(dir, 0o755))
		require.NoError(t, fsext.WriteFile(ts.FS, filepath.Join(dir, "template.tmpl"), []byte("shadowed"), 0o644))
		writeJSON(t, ts, "plan.json", simplePlan())
		ts.CmdArgs = []string{"rxtk", "export", "plan.json", "--kind", "jest"}

		newRootCommand(ts.GlobalState).execute()

		assert.Contains(t, ts.Stdout.String(), `buttonText: "Plus",`)
		assert.NotContains(t, ts.Stdout.String(), "shadowed")
		assert.True(t, tests.LogContains(ts.LoggerHook.AllEntries(), logrus.WarnLevel, "Ignoring user template 'jest'"))
	})
}
