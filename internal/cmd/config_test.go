package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"go.rxlab.dev/toolbox/internal/cmd/tests"
)

func TestConfigApply(t *testing.T) {
	t.Parallel()

	base := Config{
		Kind:         null.NewString("jest", false),
		TemplatesDir: null.StringFrom("/templates"),
	}
	conf := base.Apply(Config{Kind: null.StringFrom("pytest"), PlanName: null.NewString("ignored", false)})

	assert.Equal(t, null.StringFrom("pytest"), conf.Kind)
	assert.Equal(t, null.StringFrom("/templates"), conf.TemplatesDir)
	assert.False(t, conf.PlanName.Valid)
}

func TestReadEnvConfig(t *testing.T) {
	t.Parallel()

	conf, err := readEnvConfig(map[string]string{
		"RXTK_KIND":      "pytest",
		"RXTK_PLAN_NAME": "Login flow",
		"UNRELATED":      "x",
	})
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("pytest"), conf.Kind)
	assert.Equal(t, null.StringFrom("Login flow"), conf.PlanName)
	assert.False(t, conf.TemplatesDir.Valid)
}

func TestGetConsolidatedConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		conf, err := getConsolidatedConfig(ts.GlobalState, Config{})
		require.NoError(t, err)
		assert.Equal(t, "jest", conf.Kind.String)
		assert.Equal(t, "/home/test/.config/rxtk/templates", conf.TemplatesDir.String)
		assert.Equal(t, "", conf.PlanName.String)
	})

	t.Run("layers", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, ts.Flags.ConfigFilePath, map[string]string{
			"kind":         "fromFile",
			"templatesDir": "/file/templates",
			"planName":     "From file",
		})
		ts.Env["RXTK_KIND"] = "fromEnv"
		ts.Env["RXTK_PLAN_NAME"] = "From env"

		conf, err := getConsolidatedConfig(ts.GlobalState, Config{Kind: null.StringFrom("fromFlag")})
		require.NoError(t, err)
		assert.Equal(t, "fromFlag", conf.Kind.String)
		assert.Equal(t, "/file/templates", conf.TemplatesDir.String)
		assert.Equal(t, "From env", conf.PlanName.String)
	})

	t.Run("broken file", func(t *testing.T) {
		t.Parallel()

		ts := tests.NewGlobalTestState(t)
		writeJSON(t, ts, ts.Flags.ConfigFilePath, []string{"not", "an", "object"})

		_, err := getConsolidatedConfig(ts.GlobalState, Config{})
		require.ErrorContains(t, err, "couldn't parse the config file")
	})
}
