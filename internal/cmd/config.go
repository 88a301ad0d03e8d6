package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/codegen"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/lib/fsext"
)

// Config holds the settings shared by the code generation commands.
type Config struct {
	Kind         null.String `json:"kind" envconfig:"RXTK_KIND"`
	TemplatesDir null.String `json:"templatesDir" envconfig:"RXTK_TEMPLATES_DIR"`
	PlanName     null.String `json:"planName" envconfig:"RXTK_PLAN_NAME"`
}

// Apply returns c with every valid field of cfg copied over it.
func (c Config) Apply(cfg Config) Config {
	if cfg.Kind.Valid {
		c.Kind = cfg.Kind
	}
	if cfg.TemplatesDir.Valid {
		c.TemplatesDir = cfg.TemplatesDir
	}
	if cfg.PlanName.Valid {
		c.PlanName = cfg.PlanName
	}
	return c
}

func defaultConfig(gs *state.GlobalState) Config {
	return Config{
		Kind:         null.NewString(codegen.JestKind, false),
		TemplatesDir: null.NewString(filepath.Join(gs.UserOSConfigDir, "rxtk", "templates"), false),
	}
}

func configFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.String("kind", codegen.JestKind, "output kind to generate, see `rxtk kinds`")
	flags.String("plan", "", "name of the test plan to use when the file holds several")
	flags.String("templates-dir", "", "directory holding user output kinds")
	flags.Lookup("templates-dir").DefValue = "<config dir>/rxtk/templates"
	return flags
}

// getConfig reads the config values set on the command line. Flags that
// the command doesn't define are left unset.
func getConfig(flags *pflag.FlagSet) Config {
	var conf Config
	if flags.Lookup("kind") != nil {
		conf.Kind = getNullString(flags, "kind")
	}
	if flags.Lookup("templates-dir") != nil {
		conf.TemplatesDir = getNullString(flags, "templates-dir")
	}
	if flags.Lookup("plan") != nil {
		conf.PlanName = getNullString(flags, "plan")
	}
	return conf
}

// readDiskConfig reads the JSON config file. A missing file is an empty
// config unless it was explicitly requested.
func readDiskConfig(gs *state.GlobalState) (Config, error) {
	var conf Config
	data, err := fsext.ReadFile(gs.FS, gs.Flags.ConfigFilePath)
	if errors.Is(err, fs.ErrNotExist) && gs.Flags.ConfigFilePath == gs.DefaultFlags.ConfigFilePath {
		return conf, nil
	}
	if err != nil {
		return conf, fmt.Errorf("couldn't read the config file %s: %w", gs.Flags.ConfigFilePath, err)
	}
	if err := json.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("couldn't parse the config file %s: %w", gs.Flags.ConfigFilePath, err)
	}
	return conf, nil
}

func readEnvConfig(env map[string]string) (Config, error) {
	var conf Config
	err := envconfig.Process("", &conf, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	return conf, err
}

// getConsolidatedConfig layers the defaults, the config file, the
// environment and cliConf, in that order of increasing priority.
func getConsolidatedConfig(gs *state.GlobalState, cliConf Config) (Config, error) {
	fileConf, err := readDiskConfig(gs)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	envConf, err := readEnvConfig(gs.Env)
	if err != nil {
		return Config{}, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	conf := defaultConfig(gs).Apply(fileConf).Apply(envConf).Apply(cliConf)
	gs.Logger.WithFields(logrus.Fields{
		"kind":         conf.Kind.String,
		"templatesDir": conf.TemplatesDir.String,
	}).Debug("Consolidated config")
	return conf, nil
}

// newRegistry returns the built-in output kinds plus the user kinds found
// in the configured templates directory.
func newRegistry(gs *state.GlobalState, conf Config) (*codegen.Registry, error) {
	registry := codegen.NewRegistry()
	tm := codegen.NewTemplateManager(gs.FS, conf.TemplatesDir.String, gs.Logger)
	if err := tm.RegisterAll(registry); err != nil {
		err = fmt.Errorf("couldn't load the user output kinds from %s: %w", tm.Dir(), err)
		return nil, errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}
	return registry, nil
}
