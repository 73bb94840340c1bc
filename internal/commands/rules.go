package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ipincome-dev/ipincome/internal/config"
)

func newRulesCommand() *cobra.Command {
	var rulesPath string
	var writePath string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show or export the effective classification ruleset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := loadRuleset(rulesPath)
			if err != nil {
				return err
			}

			if writePath != "" {
				if err := config.Save(writePath, rs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote ruleset %s to %s\n", rs.Version, writePath)
				return nil
			}

			data, err := yaml.Marshal(rs)
			if err != nil {
				return fmt.Errorf("marshaling ruleset: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesPath, "rules", "", "path to rules.yaml (default: built-in ruleset)")
	cmd.Flags().StringVar(&writePath, "write", "", "write the ruleset to this file instead of printing it")

	return cmd
}

// loadRuleset resolves the ruleset for a command run: an explicit file, or
// the built-in defaults. The result is validated either way.
func loadRuleset(path string) (*config.Ruleset, error) {
	if path == "" {
		return config.DefaultRuleset(), nil
	}
	rs, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}
