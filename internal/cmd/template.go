package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/codegen"
	"go.rxlab.dev/toolbox/errext"
	"go.rxlab.dev/toolbox/errext/exitcodes"
	"go.rxlab.dev/toolbox/lib/fsext"
)

func getCmdTemplate(gs *state.GlobalState) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Manage user output kinds",
		Long: `Manage user output kinds.

A user output kind is a Go text/template rendered with the steps of a test
plan. Installed kinds can be used with the export command.`,
	}

	templateCmd.AddCommand(getCmdTemplateAdd(gs))
	return templateCmd
}

func getCmdTemplateAdd(gs *state.GlobalState) *cobra.Command {
	var meta codegen.Metadata

	exampleText := getExampleText(gs, `
  # Install a template generating pytest suites
  $ {{.}} template add pytest ./pytest.py.tmpl --extension py

  # Then use it
  $ {{.}} export plan.json --kind pytest`[1:])

	addCmd := &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Install a template as a new output kind",
		Long: `Install a template as a new output kind.

The template is checked and copied to <templates dir>/<name>/template.tmpl,
together with a metadata.yaml file holding the extension and description.
The name must not contain path separators and cannot shadow a built-in kind.`,
		Example: exampleText,
		Args:    exactArgsWithMsg(2, "args should be the kind name and the template file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, templatePath := args[0], args[1]

			exists, err := fsext.Exists(gs.FS, templatePath)
			if err != nil {
				return fmt.Errorf("error checking template file: %w", err)
			}
			if !exists {
				return fmt.Errorf("template file %s does not exist", templatePath)
			}

			conf, err := getConsolidatedConfig(gs, getConfig(cmd.Flags()))
			if err != nil {
				return err
			}

			tm := codegen.NewTemplateManager(gs.FS, conf.TemplatesDir.String, gs.Logger)
			if err := tm.Install(name, templatePath, meta); err != nil {
				err = fmt.Errorf("error installing template: %w", err)
				return errext.WithExitCodeIfNone(err, exitcodes.GenerationFailed)
			}

			printToStdout(gs, fmt.Sprintf("Output kind '%s' installed in %s.\n", name, tm.Dir()))
			printToStdout(gs, fmt.Sprintf("You can now use it with: %s export --kind %s <plan.json>\n", gs.BinaryName, name))
			return nil
		},
	}
	addCmd.Flags().StringVar(&meta.Extension, "extension", "", "file extension of the generated source")
	addCmd.Flags().StringVar(&meta.Description, "description", "", "short description shown by the kinds command")
	addCmd.Flags().String("templates-dir", "", "directory to install the output kind in")
	return addCmd
}
