package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.rxlab.dev/toolbox/cmd/state"
	"go.rxlab.dev/toolbox/codegen"
)

type kindInfo struct {
	Name        string `json:"name"`
	Extension   string `json:"extension"`
	Description string `json:"description,omitempty"`
	BuiltIn     bool   `json:"builtIn"`
}

func getCmdKinds(gs *state.GlobalState) *cobra.Command {
	var isJSON bool

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the output kinds plans can be exported to",
		Long: `List the output kinds plans can be exported to.

Besides the built-in kinds, every template installed with the template add
command is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := getConsolidatedConfig(gs, getConfig(cmd.Flags()))
			if err != nil {
				return err
			}
			registry, err := newRegistry(gs, conf)
			if err != nil {
				return err
			}

			builtIn := make(map[string]bool)
			for _, k := range codegen.DefaultKinds() {
				builtIn[k.Name] = true
			}
			kinds := registry.Kinds()
			infos := make([]kindInfo, 0, len(kinds))
			for _, k := range kinds {
				infos = append(infos, kindInfo{
					Name:        k.Name,
					Extension:   k.Extension,
					Description: k.Description,
					BuiltIn:     builtIn[k.Name],
				})
			}

			if isJSON {
				data, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return fmt.Errorf("error marshaling output kinds to JSON: %w", err)
				}
				printToStdout(gs, string(data)+"\n")
				return nil
			}

			var b strings.Builder
			b.WriteString("Available output kinds:\n")
			for _, info := range infos {
				fmt.Fprintf(&b, "  %s (.%s)", info.Name, info.Extension)
				if info.Description != "" {
					fmt.Fprintf(&b, " - %s", info.Description)
				}
				if !info.BuiltIn {
					b.WriteString(" [user]")
				}
				b.WriteString("\n")
			}
			printToStdout(gs, b.String())
			return nil
		},
	}
	kindsCmd.Flags().String("templates-dir", "", "directory holding user output kinds")
	kindsCmd.Flags().BoolVar(&isJSON, "json", false, "print the output kinds as JSON")
	return kindsCmd
}
